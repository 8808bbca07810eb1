package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cacheStub round-trips summaries through JSON the way the redis cache does.
type cacheStub struct {
	stored map[uint][]byte
	sets   int
	hits   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{stored: map[uint][]byte{}}
}

func (c *cacheStub) GetCostSummary(projectID uint, dest interface{}) error {
	data, ok := c.stored[projectID]
	if !ok {
		return errors.New("cost summary not found")
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *cacheStub) SetCostSummary(projectID uint, summary interface{}, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	c.stored[projectID] = data
	c.sets++
	return nil
}

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	var valErr *ledger.ValidationError
	require.ErrorAs(t, svc.CreateProject(&models.Project{Budget: 100}), &valErr)
	require.ErrorAs(t, svc.CreateProject(&models.Project{Name: "Bridge"}), &valErr)

	project := &models.Project{Name: "Bridge", Budget: 50000, CreatedBy: 1}
	require.NoError(t, svc.CreateProject(project))
	assert.Equal(t, string(models.ProjectPlanning), project.Status)
	assert.True(t, project.IsActive)
}

func TestActivatePhaseGatedByDependencies(t *testing.T) {
	f := newFixture(t, 100000, 50000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	structure := &models.Phase{ProjectID: f.project.ID, Name: "Structure", Status: string(models.PhasePending)}
	require.NoError(t, svc.CreatePhase(structure))
	require.NoError(t, svc.AddPhaseDependency(structure.ID, f.phase.ID))

	// Foundation is still pending, so Structure cannot start.
	_, err := svc.ActivatePhase(structure.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)

	_, err = svc.ActivatePhase(f.phase.ID)
	require.NoError(t, err)
	_, err = svc.ActivatePhase(structure.ID)
	require.ErrorAs(t, err, &stateErr)

	_, err = svc.CompletePhase(f.phase.ID)
	require.NoError(t, err)

	activated, err := svc.ActivatePhase(structure.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.PhaseActive), activated.Status)
	assert.NotNil(t, activated.CanStartAfter)
}

func TestAddPhaseDependencyRejectsSelf(t *testing.T) {
	f := newFixture(t, 100000, 50000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	var valErr *ledger.ValidationError
	require.ErrorAs(t, svc.AddPhaseDependency(f.phase.ID, f.phase.ID), &valErr)
}

func TestCompletePhaseRequiresActive(t *testing.T) {
	f := newFixture(t, 100000, 50000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	_, err := svc.CompletePhase(f.phase.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
}

func TestGetCostSummaryReadThrough(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	cache := newCacheStub()
	svc := NewProjectService(f.store, cache, time.Minute)

	project := f.reloadProject(t)
	project.CommittedCost = 2000
	project.ActualLabourCost = 3000
	require.NoError(t, f.store.Projects().Update(project))

	summary, err := svc.GetCostSummary(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, summary.CommittedCost)
	assert.Equal(t, 3000.0, summary.ActualLabour)
	assert.Equal(t, 5000.0, summary.CapitalBalance)
	assert.False(t, summary.OverBudget)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache, not rebuilt.
	again, err := svc.GetCostSummary(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, summary.GeneratedAt.Unix(), again.GeneratedAt.Unix())
}

func TestCostSummaryFlagsOverBudget(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	project := f.reloadProject(t)
	project.CommittedCost = 6000
	project.ActualMaterialsCost = 5000
	require.NoError(t, f.store.Projects().Update(project))

	summary, err := svc.GetCostSummary(f.project.ID)
	require.NoError(t, err)
	assert.True(t, summary.OverBudget)
	assert.Equal(t, -1000.0, summary.CapitalBalance)
}

func TestRecalculateProjectRepairsDrift(t *testing.T) {
	f := newFixture(t, 100000, 50000, 10000)
	svc := NewProjectService(f.store, nil, 0)

	// A posted entry and a committed order are the ground truth.
	require.NoError(t, f.store.LabourEntries().Create(&models.LabourEntry{
		ProjectID: f.project.ID, PhaseID: uintPtr(f.phase.ID), Scope: models.LabourDirect,
		WorkerName: "Amir", WorkDate: time.Now(), RegularHours: 8, HourlyRate: 100,
		RegularCost: 800, Status: string(models.LabourApproved),
	}))
	require.NoError(t, f.store.PurchaseOrders().Create(&models.PurchaseOrder{
		OrderNumber: "PO-1-1", ProjectID: f.project.ID, PhaseID: uintPtr(f.phase.ID),
		SupplierName: "ACME", ItemName: "Cement", Quantity: 10, UnitCost: 100, TotalCost: 1000,
		Status: string(models.OrderAccepted), Financial: string(models.FinancialCommitted),
	}))

	// Corrupt every aggregate.
	project := f.reloadProject(t)
	project.ActualLabourCost = 1
	project.CommittedCost = 2
	require.NoError(t, f.store.Projects().Update(project))
	phase := f.reloadPhase(t)
	phase.ActualSpending = 3
	require.NoError(t, f.store.Phases().Update(phase))

	require.NoError(t, svc.RecalculateProject(f.project.ID))

	project = f.reloadProject(t)
	assert.Equal(t, 800.0, project.ActualLabourCost)
	assert.Equal(t, 1000.0, project.CommittedCost)
	assert.Equal(t, 1800.0, f.reloadPhase(t).ActualSpending)
}

func TestRetireProjectHidesIt(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	require.NoError(t, svc.RetireProject(f.project.ID))

	projects, err := svc.GetProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestGetAuditTrailLimit(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := NewProjectService(f.store, nil, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.store.AuditLogs().Create(&models.AuditLog{
			Action: "create", EntityType: "purchase_order", EntityID: uint(i + 1), ProjectID: f.project.ID,
		}))
	}

	entries, err := svc.GetAuditTrail(f.project.ID, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
