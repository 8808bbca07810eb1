package services

import (
	"log"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/repository"
)

// CostSummary is the project-level capital view, cached in redis and
// refreshed by the background worker after every financial mutation.
type CostSummary struct {
	ProjectID      uint    `json:"project_id"`
	Budget         float64 `json:"budget"`
	CommittedCost  float64 `json:"committed_cost"`
	ActualMaterial float64 `json:"actual_materials_cost"`
	ActualLabour   float64 `json:"actual_labour_cost"`
	ActualIndirect float64 `json:"actual_indirect_cost"`
	ActualTotal    float64 `json:"actual_total"`
	CapitalBalance float64 `json:"capital_balance"`
	OverBudget     bool    `json:"over_budget"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// SummaryCache is the read-through cache for cost summaries. Satisfied by
// *redis.Client.
type SummaryCache interface {
	GetCostSummary(projectID uint, dest interface{}) error
	SetCostSummary(projectID uint, summary interface{}, ttl time.Duration) error
}

type ProjectService interface {
	CreateProject(project *models.Project) error
	GetProject(id uint) (*models.Project, error)
	GetProjects() ([]models.Project, error)
	UpdateProject(project *models.Project) error
	RetireProject(id uint) error

	CreatePhase(phase *models.Phase) error
	GetPhase(id uint) (*models.Phase, error)
	GetPhasesByProject(projectID uint) ([]models.Phase, error)
	AddPhaseDependency(phaseID, dependsOnID uint) error
	ActivatePhase(id uint) (*models.Phase, error)
	CompletePhase(id uint) (*models.Phase, error)

	CreateWorkItem(item *models.WorkItem) error
	GetWorkItemsByPhase(phaseID uint) ([]models.WorkItem, error)

	CreateIndirectCategory(category *models.IndirectCostCategory) error
	GetIndirectCategories(projectID uint) ([]models.IndirectCostCategory, error)

	CreateEquipment(equipment *models.Equipment) error
	GetEquipmentByProject(projectID uint) ([]models.Equipment, error)

	GetCostSummary(projectID uint) (*CostSummary, error)
	RecalculateProject(projectID uint) error
	RecalculatePhase(phaseID uint) error
	GetAuditTrail(projectID uint, limit int) ([]models.AuditLog, error)
}

type projectService struct {
	store    repository.Store
	recalc   *ledger.Recalculator
	cache    SummaryCache
	cacheTTL time.Duration
}

func NewProjectService(store repository.Store, cache SummaryCache, cacheTTL time.Duration) ProjectService {
	return &projectService{
		store:    store,
		recalc:   ledger.NewRecalculator(store),
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *projectService) CreateProject(project *models.Project) error {
	if project.Name == "" {
		return &ledger.ValidationError{Msg: "project name is required"}
	}
	if project.Budget <= 0 {
		return &ledger.ValidationError{Msg: "project budget must be positive"}
	}
	project.IsActive = true
	if project.Status == "" {
		project.Status = string(models.ProjectPlanning)
	}
	return s.store.Projects().Create(project)
}

func (s *projectService) GetProject(id uint) (*models.Project, error) {
	project, err := s.store.Projects().GetByID(id)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: id}
	}
	return project, nil
}

func (s *projectService) GetProjects() ([]models.Project, error) {
	return s.store.Projects().GetAll()
}

func (s *projectService) UpdateProject(project *models.Project) error {
	if project.Budget <= 0 {
		return &ledger.ValidationError{Msg: "project budget must be positive"}
	}
	return s.store.Projects().Update(project)
}

func (s *projectService) RetireProject(id uint) error {
	if _, err := s.GetProject(id); err != nil {
		return err
	}
	return s.store.Projects().Retire(id)
}

func (s *projectService) CreatePhase(phase *models.Phase) error {
	if phase.Name == "" {
		return &ledger.ValidationError{Msg: "phase name is required"}
	}
	if _, err := s.GetProject(phase.ProjectID); err != nil {
		return err
	}
	if phase.Status == "" {
		phase.Status = string(models.PhasePending)
	}
	return s.store.Phases().Create(phase)
}

func (s *projectService) GetPhase(id uint) (*models.Phase, error) {
	phase, err := s.store.Phases().GetByID(id)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "phase", ID: id}
	}
	return phase, nil
}

func (s *projectService) GetPhasesByProject(projectID uint) ([]models.Phase, error) {
	return s.store.Phases().GetByProjectID(projectID)
}

func (s *projectService) AddPhaseDependency(phaseID, dependsOnID uint) error {
	if phaseID == dependsOnID {
		return &ledger.ValidationError{Msg: "a phase cannot depend on itself"}
	}
	if _, err := s.GetPhase(phaseID); err != nil {
		return err
	}
	if _, err := s.GetPhase(dependsOnID); err != nil {
		return err
	}
	return s.store.Phases().AddDependency(&models.PhaseDependency{
		PhaseID:     phaseID,
		DependsOnID: dependsOnID,
	})
}

// ActivatePhase moves a pending phase to active, refused while any
// prerequisite phase is incomplete.
func (s *projectService) ActivatePhase(id uint) (*models.Phase, error) {
	phase, err := s.GetPhase(id)
	if err != nil {
		return nil, err
	}
	if phase.Status != string(models.PhasePending) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "phase", From: phase.Status, Action: "activate"}
	}

	deps, err := s.store.Phases().GetDependencies(id)
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		prereq, err := s.GetPhase(dep.DependsOnID)
		if err != nil {
			return nil, err
		}
		if prereq.Status != string(models.PhaseCompleted) {
			return nil, &ledger.InvalidStateTransitionError{Entity: "phase", From: phase.Status, Action: "activate before prerequisite phase " + prereq.Name + " completes"}
		}
	}

	now := time.Now()
	phase.Status = string(models.PhaseActive)
	phase.CanStartAfter = &now
	if err := s.store.Phases().Update(phase); err != nil {
		return nil, err
	}
	return phase, nil
}

func (s *projectService) CompletePhase(id uint) (*models.Phase, error) {
	phase, err := s.GetPhase(id)
	if err != nil {
		return nil, err
	}
	if phase.Status != string(models.PhaseActive) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "phase", From: phase.Status, Action: "complete"}
	}
	phase.Status = string(models.PhaseCompleted)
	if err := s.store.Phases().Update(phase); err != nil {
		return nil, err
	}
	return phase, nil
}

func (s *projectService) CreateWorkItem(item *models.WorkItem) error {
	if item.Name == "" {
		return &ledger.ValidationError{Msg: "work item name is required"}
	}
	if _, err := s.GetPhase(item.PhaseID); err != nil {
		return err
	}
	if item.Status == "" {
		item.Status = string(models.WorkItemNotStarted)
	}
	return s.store.WorkItems().Create(item)
}

func (s *projectService) GetWorkItemsByPhase(phaseID uint) ([]models.WorkItem, error) {
	return s.store.WorkItems().GetByPhaseID(phaseID)
}

func (s *projectService) CreateIndirectCategory(category *models.IndirectCostCategory) error {
	if category.Name == "" {
		return &ledger.ValidationError{Msg: "category name is required"}
	}
	if _, err := s.GetProject(category.ProjectID); err != nil {
		return err
	}
	return s.store.IndirectCategories().Create(category)
}

func (s *projectService) GetIndirectCategories(projectID uint) ([]models.IndirectCostCategory, error) {
	return s.store.IndirectCategories().GetByProjectID(projectID)
}

func (s *projectService) CreateEquipment(equipment *models.Equipment) error {
	if equipment.Name == "" {
		return &ledger.ValidationError{Msg: "equipment name is required"}
	}
	if _, err := s.GetProject(equipment.ProjectID); err != nil {
		return err
	}
	equipment.IsActive = true
	return s.store.Equipment().Create(equipment)
}

func (s *projectService) GetEquipmentByProject(projectID uint) ([]models.Equipment, error) {
	return s.store.Equipment().GetByProjectID(projectID)
}

// GetCostSummary serves the cached summary when fresh, otherwise rebuilds it
// from the project row and repopulates the cache.
func (s *projectService) GetCostSummary(projectID uint) (*CostSummary, error) {
	if s.cache != nil {
		var cached CostSummary
		if err := s.cache.GetCostSummary(projectID, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := BuildCostSummary(s.store, projectID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCostSummary(projectID, summary, s.cacheTTL); err != nil {
			log.Printf("cost summary cache write failed for project %d: %v", projectID, err)
		}
	}
	return summary, nil
}

// BuildCostSummary derives the capital view from the project row. Shared with
// the background worker's refresh task.
func BuildCostSummary(store repository.Store, projectID uint) (*CostSummary, error) {
	project, err := store.Projects().GetByID(projectID)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: projectID}
	}
	return &CostSummary{
		ProjectID:      project.ID,
		Budget:         project.Budget,
		CommittedCost:  project.CommittedCost,
		ActualMaterial: project.ActualMaterialsCost,
		ActualLabour:   project.ActualLabourCost,
		ActualIndirect: project.ActualIndirectCost,
		ActualTotal:    project.ActualSpending(),
		CapitalBalance: project.CapitalBalance(),
		OverBudget:     project.CommittedCost+project.ActualSpending() > project.Budget,
		GeneratedAt:    time.Now(),
	}, nil
}

// RecalculateProject is the on-demand repair path: every category, phase and
// work item under the project is rebuilt from source records, then the
// project aggregates themselves.
func (s *projectService) RecalculateProject(projectID uint) error {
	if _, err := s.GetProject(projectID); err != nil {
		return err
	}

	categories, err := s.store.IndirectCategories().GetByProjectID(projectID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if err := s.recalc.RecalculateCategory(c.ID); err != nil {
			return err
		}
	}

	phases, err := s.store.Phases().GetByProjectID(projectID)
	if err != nil {
		return err
	}
	for _, p := range phases {
		if err := s.recalc.RecalculatePhase(p.ID); err != nil {
			return err
		}
		items, err := s.store.WorkItems().GetByPhaseID(p.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.recalc.RecalculateWorkItem(item.ID); err != nil {
				return err
			}
		}
	}

	return s.recalc.RecalculateProject(projectID)
}

func (s *projectService) RecalculatePhase(phaseID uint) error {
	if _, err := s.GetPhase(phaseID); err != nil {
		return err
	}
	return s.recalc.RecalculatePhase(phaseID)
}

func (s *projectService) GetAuditTrail(projectID uint, limit int) ([]models.AuditLog, error) {
	return s.store.AuditLogs().GetByProjectID(projectID, limit)
}
