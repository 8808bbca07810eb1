package memory

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(p *models.Project) error {
	p.ID = r.s.st.nextID()
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *projectRepo) GetByID(id uint) (*models.Project, error) {
	p, ok := r.s.st.projects[id]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := p
	return &cp, nil
}

func (r *projectRepo) GetAll() ([]models.Project, error) {
	var out []models.Project
	for _, p := range r.s.st.projects {
		if !p.DeletedAt.Valid && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *projectRepo) Update(p *models.Project) error {
	if _, ok := r.s.st.projects[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *projectRepo) Retire(id uint) error {
	p, ok := r.s.st.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	p.Status = string(models.ProjectRetired)
	r.s.st.projects[id] = p
	return nil
}

type phaseRepo struct{ s *Store }

func (r *phaseRepo) Create(p *models.Phase) error {
	p.ID = r.s.st.nextID()
	r.s.st.phases[p.ID] = *p
	return nil
}

func (r *phaseRepo) GetByID(id uint) (*models.Phase, error) {
	p, ok := r.s.st.phases[id]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := p
	return &cp, nil
}

func (r *phaseRepo) GetByProjectID(projectID uint) ([]models.Phase, error) {
	var out []models.Phase
	for _, p := range r.s.st.phases {
		if p.ProjectID == projectID && !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *phaseRepo) Update(p *models.Phase) error {
	if _, ok := r.s.st.phases[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.phases[p.ID] = *p
	return nil
}

func (r *phaseRepo) Delete(id uint) error {
	p, ok := r.s.st.phases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.DeletedAt = tombstone()
	r.s.st.phases[id] = p
	return nil
}

func (r *phaseRepo) GetDependencies(phaseID uint) ([]models.PhaseDependency, error) {
	var out []models.PhaseDependency
	for _, d := range r.s.st.deps {
		if d.PhaseID == phaseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *phaseRepo) AddDependency(dep *models.PhaseDependency) error {
	dep.ID = r.s.st.nextID()
	r.s.st.deps = append(r.s.st.deps, *dep)
	return nil
}

type workItemRepo struct{ s *Store }

func (r *workItemRepo) Create(w *models.WorkItem) error {
	w.ID = r.s.st.nextID()
	r.s.st.workItems[w.ID] = *w
	return nil
}

func (r *workItemRepo) GetByID(id uint) (*models.WorkItem, error) {
	w, ok := r.s.st.workItems[id]
	if !ok || w.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := w
	return &cp, nil
}

func (r *workItemRepo) GetByPhaseID(phaseID uint) ([]models.WorkItem, error) {
	var out []models.WorkItem
	for _, w := range r.s.st.workItems {
		if w.PhaseID == phaseID && !w.DeletedAt.Valid {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *workItemRepo) Update(w *models.WorkItem) error {
	if _, ok := r.s.st.workItems[w.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.workItems[w.ID] = *w
	return nil
}

func (r *workItemRepo) Delete(id uint) error {
	w, ok := r.s.st.workItems[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.DeletedAt = tombstone()
	r.s.st.workItems[id] = w
	return nil
}

type equipmentRepo struct{ s *Store }

func (r *equipmentRepo) Create(e *models.Equipment) error {
	e.ID = r.s.st.nextID()
	r.s.st.equipment[e.ID] = *e
	return nil
}

func (r *equipmentRepo) GetByID(id uint) (*models.Equipment, error) {
	e, ok := r.s.st.equipment[id]
	if !ok || e.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := e
	return &cp, nil
}

func (r *equipmentRepo) GetByProjectID(projectID uint) ([]models.Equipment, error) {
	var out []models.Equipment
	for _, e := range r.s.st.equipment {
		if e.ProjectID == projectID && !e.DeletedAt.Valid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *equipmentRepo) Update(e *models.Equipment) error {
	if _, ok := r.s.st.equipment[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.equipment[e.ID] = *e
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(c *models.IndirectCostCategory) error {
	c.ID = r.s.st.nextID()
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) GetByID(id uint) (*models.IndirectCostCategory, error) {
	c, ok := r.s.st.categories[id]
	if !ok || c.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := c
	return &cp, nil
}

func (r *categoryRepo) GetByProjectID(projectID uint) ([]models.IndirectCostCategory, error) {
	var out []models.IndirectCostCategory
	for _, c := range r.s.st.categories {
		if c.ProjectID == projectID && !c.DeletedAt.Valid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *categoryRepo) Update(c *models.IndirectCostCategory) error {
	if _, ok := r.s.st.categories[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) Delete(id uint) error {
	c, ok := r.s.st.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.DeletedAt = tombstone()
	r.s.st.categories[id] = c
	return nil
}

type entryRepo struct{ s *Store }

func (r *entryRepo) Create(e *models.LabourEntry) error {
	e.ID = r.s.st.nextID()
	r.s.st.entries[e.ID] = *e
	return nil
}

func (r *entryRepo) GetByID(id uint) (*models.LabourEntry, error) {
	e, ok := r.s.st.entries[id]
	if !ok || e.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := e
	return &cp, nil
}

func (r *entryRepo) GetByBatchID(batchID uint) ([]models.LabourEntry, error) {
	var out []models.LabourEntry
	for _, e := range r.s.st.entries {
		if e.BatchID == batchID && !e.DeletedAt.Valid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *entryRepo) GetPostedByPhaseID(phaseID uint) ([]models.LabourEntry, error) {
	var out []models.LabourEntry
	for _, e := range r.s.st.entries {
		if e.PhaseID != nil && *e.PhaseID == phaseID && !e.DeletedAt.Valid && posted(e.Status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *entryRepo) GetPostedByCategoryID(categoryID uint) ([]models.LabourEntry, error) {
	var out []models.LabourEntry
	for _, e := range r.s.st.entries {
		if e.CategoryID != nil && *e.CategoryID == categoryID && !e.DeletedAt.Valid && posted(e.Status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *entryRepo) GetPostedByProjectID(projectID uint) ([]models.LabourEntry, error) {
	var out []models.LabourEntry
	for _, e := range r.s.st.entries {
		if e.ProjectID == projectID && !e.DeletedAt.Valid && posted(e.Status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *entryRepo) Update(e *models.LabourEntry) error {
	if _, ok := r.s.st.entries[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.entries[e.ID] = *e
	return nil
}

func (r *entryRepo) Delete(id uint) error {
	e, ok := r.s.st.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.DeletedAt = tombstone()
	r.s.st.entries[id] = e
	return nil
}

type batchRepo struct{ s *Store }

func (r *batchRepo) Create(b *models.LabourBatch) error {
	b.ID = r.s.st.nextID()
	r.s.st.batches[b.ID] = *b
	return nil
}

func (r *batchRepo) GetByID(id uint) (*models.LabourBatch, error) {
	b, ok := r.s.st.batches[id]
	if !ok || b.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := b
	return &cp, nil
}

func (r *batchRepo) GetByProjectID(projectID uint) ([]models.LabourBatch, error) {
	var out []models.LabourBatch
	for _, b := range r.s.st.batches {
		if b.ProjectID == projectID && !b.DeletedAt.Valid {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *batchRepo) Update(b *models.LabourBatch) error {
	if _, ok := r.s.st.batches[b.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.batches[b.ID] = *b
	return nil
}

func (r *batchRepo) Delete(id uint) error {
	b, ok := r.s.st.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.DeletedAt = tombstone()
	r.s.st.batches[id] = b
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(o *models.PurchaseOrder) error {
	o.ID = r.s.st.nextID()
	r.s.st.orders[o.ID] = *o
	return nil
}

func (r *orderRepo) GetByID(id uint) (*models.PurchaseOrder, error) {
	o, ok := r.s.st.orders[id]
	if !ok || o.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := o
	return &cp, nil
}

func (r *orderRepo) GetByProjectID(projectID uint) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, o := range r.s.st.orders {
		if o.ProjectID == projectID && !o.DeletedAt.Valid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) GetCommittedByProjectID(projectID uint) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, o := range r.s.st.orders {
		if o.ProjectID == projectID && !o.DeletedAt.Valid && o.Financial == string(models.FinancialCommitted) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) GetCommittedByPhaseID(phaseID uint) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, o := range r.s.st.orders {
		if o.PhaseID != nil && *o.PhaseID == phaseID && !o.DeletedAt.Valid && o.Financial == string(models.FinancialCommitted) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) Update(o *models.PurchaseOrder) error {
	if _, ok := r.s.st.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.orders[o.ID] = *o
	return nil
}

func (r *orderRepo) Delete(id uint) error {
	o, ok := r.s.st.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.DeletedAt = tombstone()
	r.s.st.orders[id] = o
	return nil
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Create(m *models.MaterialRequest) error {
	m.ID = r.s.st.nextID()
	r.s.st.requests[m.ID] = *m
	return nil
}

func (r *requestRepo) GetByID(id uint) (*models.MaterialRequest, error) {
	m, ok := r.s.st.requests[id]
	if !ok || m.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m
	return &cp, nil
}

func (r *requestRepo) GetByProjectID(projectID uint) ([]models.MaterialRequest, error) {
	var out []models.MaterialRequest
	for _, m := range r.s.st.requests {
		if m.ProjectID == projectID && !m.DeletedAt.Valid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *requestRepo) GetPending() ([]models.MaterialRequest, error) {
	var out []models.MaterialRequest
	for _, m := range r.s.st.requests {
		if m.Status == string(models.RequestPending) && !m.DeletedAt.Valid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *requestRepo) Update(m *models.MaterialRequest) error {
	if _, ok := r.s.st.requests[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.requests[m.ID] = *m
	return nil
}

func (r *requestRepo) Delete(id uint) error {
	m, ok := r.s.st.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.DeletedAt = tombstone()
	r.s.st.requests[id] = m
	return nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(a *models.AuditLog) error {
	a.ID = r.s.st.nextID()
	r.s.st.audits = append(r.s.st.audits, *a)
	return nil
}

func (r *auditRepo) GetByProjectID(projectID uint, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, a := range r.s.st.audits {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *auditRepo) GetByEntity(entityType string, entityID uint) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, a := range r.s.st.audits {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(u *models.User) error {
	u.ID = r.s.st.nextID()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(id uint) (*models.User, error) {
	u, ok := r.s.st.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := u
	return &cp, nil
}

func (r *userRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range r.s.st.users {
		if u.Username == username && !u.DeletedAt.Valid {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepo) GetAll() ([]models.User, error) {
	var out []models.User
	for _, u := range r.s.st.users {
		if !u.DeletedAt.Valid {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) Update(u *models.User) error {
	if _, ok := r.s.st.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) Delete(id uint) error {
	u, ok := r.s.st.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.DeletedAt = tombstone()
	r.s.st.users[id] = u
	return nil
}
