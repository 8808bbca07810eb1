// Package memory provides an in-memory repository.Store with
// snapshot/rollback transaction semantics. It backs the engine and service
// tests so they exercise the real mutation pipeline without a database.
package memory

import (
	"sync"
	"time"

	"construction_manager/internal/models"
	"construction_manager/internal/repository"

	"gorm.io/gorm"
)

type state struct {
	seq        uint
	projects   map[uint]models.Project
	phases     map[uint]models.Phase
	deps       []models.PhaseDependency
	workItems  map[uint]models.WorkItem
	equipment  map[uint]models.Equipment
	categories map[uint]models.IndirectCostCategory
	entries    map[uint]models.LabourEntry
	batches    map[uint]models.LabourBatch
	orders     map[uint]models.PurchaseOrder
	requests   map[uint]models.MaterialRequest
	audits     []models.AuditLog
	users      map[uint]models.User
}

func newState() *state {
	return &state{
		projects:   map[uint]models.Project{},
		phases:     map[uint]models.Phase{},
		workItems:  map[uint]models.WorkItem{},
		equipment:  map[uint]models.Equipment{},
		categories: map[uint]models.IndirectCostCategory{},
		entries:    map[uint]models.LabourEntry{},
		batches:    map[uint]models.LabourBatch{},
		orders:     map[uint]models.PurchaseOrder{},
		requests:   map[uint]models.MaterialRequest{},
		users:      map[uint]models.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.phases {
		c.phases[k] = v
	}
	c.deps = append(c.deps, s.deps...)
	for k, v := range s.workItems {
		c.workItems[k] = v
	}
	for k, v := range s.equipment {
		c.equipment[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	c.audits = append(c.audits, s.audits...)
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) nextID() uint {
	s.seq++
	return s.seq
}

// Store is the in-memory implementation of repository.Store.
type Store struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// Transaction snapshots the state, runs the callback against the live state,
// and restores the snapshot if the callback errors. Nested calls join the
// outer transaction, matching gorm's flat default.
func (s *Store) Transaction(fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	tx := &Store{st: s.st, inTx: true}
	if err := fn(tx); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Projects() repository.ProjectRepository                   { return &projectRepo{s} }
func (s *Store) Phases() repository.PhaseRepository                       { return &phaseRepo{s} }
func (s *Store) WorkItems() repository.WorkItemRepository                 { return &workItemRepo{s} }
func (s *Store) Equipment() repository.EquipmentRepository                { return &equipmentRepo{s} }
func (s *Store) IndirectCategories() repository.IndirectCategoryRepository { return &categoryRepo{s} }
func (s *Store) LabourEntries() repository.LabourEntryRepository          { return &entryRepo{s} }
func (s *Store) LabourBatches() repository.LabourBatchRepository          { return &batchRepo{s} }
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository       { return &orderRepo{s} }
func (s *Store) MaterialRequests() repository.MaterialRequestRepository   { return &requestRepo{s} }
func (s *Store) AuditLogs() repository.AuditLogRepository                 { return &auditRepo{s} }
func (s *Store) Users() repository.UserRepository                         { return &userRepo{s} }

func tombstone() gorm.DeletedAt {
	return gorm.DeletedAt{Time: time.Now(), Valid: true}
}

func posted(status string) bool {
	return status == string(models.LabourApproved) || status == string(models.LabourPaid)
}
