package services

import (
	"testing"

	"construction_manager/internal/models"
	"construction_manager/internal/redis"
	"construction_manager/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

// queueRecorder captures enqueued background tasks instead of touching redis.
type queueRecorder struct {
	tasks []*redis.Task
}

func (q *queueRecorder) EnqueueTask(task *redis.Task) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *queueRecorder) typesSeen() map[string]int {
	seen := map[string]int{}
	for _, task := range q.tasks {
		seen[task.Type]++
	}
	return seen
}

type fixture struct {
	store    *memory.Store
	queue    *queueRecorder
	project  *models.Project
	phase    *models.Phase
	category *models.IndirectCostCategory
	owner    *models.User
	worker   *models.User
}

func newFixture(t *testing.T, budget, phaseAllocation, categoryAllocation float64) *fixture {
	t.Helper()
	store := memory.NewStore()

	project := &models.Project{Name: "Warehouse", Budget: budget, IsActive: true, CreatedBy: 1}
	require.NoError(t, store.Projects().Create(project))

	phase := &models.Phase{ProjectID: project.ID, Name: "Foundation", BudgetAllocation: phaseAllocation, Status: string(models.PhasePending)}
	require.NoError(t, store.Phases().Create(phase))

	category := &models.IndirectCostCategory{ProjectID: project.ID, Name: "Site Management", BudgetAllocation: categoryAllocation}
	require.NoError(t, store.IndirectCategories().Create(category))

	owner := &models.User{Username: "owner", Email: "owner@example.com", Role: string(models.RoleOwner), IsActive: true}
	require.NoError(t, store.Users().Create(owner))
	worker := &models.User{Username: "worker", Email: "worker@example.com", Role: string(models.RoleWorker), IsActive: true}
	require.NoError(t, store.Users().Create(worker))

	return &fixture{
		store:    store,
		queue:    &queueRecorder{},
		project:  project,
		phase:    phase,
		category: category,
		owner:    owner,
		worker:   worker,
	}
}

func (f *fixture) reloadProject(t *testing.T) *models.Project {
	t.Helper()
	project, err := f.store.Projects().GetByID(f.project.ID)
	require.NoError(t, err)
	return project
}

func (f *fixture) reloadPhase(t *testing.T) *models.Phase {
	t.Helper()
	phase, err := f.store.Phases().GetByID(f.phase.ID)
	require.NoError(t, err)
	return phase
}

func (f *fixture) reloadCategory(t *testing.T) *models.IndirectCostCategory {
	t.Helper()
	category, err := f.store.IndirectCategories().GetByID(f.category.ID)
	require.NoError(t, err)
	return category
}

func uintPtr(v uint) *uint        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
