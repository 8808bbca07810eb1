package ledger

import (
	"testing"

	"construction_manager/internal/models"
	"construction_manager/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, store *memory.Store, budget float64) *models.Project {
	t.Helper()
	project := &models.Project{Name: "Warehouse", Budget: budget, CreatedBy: 1}
	require.NoError(t, store.Projects().Create(project))
	return project
}

func seedPhase(t *testing.T, store *memory.Store, projectID uint, allocation float64) *models.Phase {
	t.Helper()
	phase := &models.Phase{ProjectID: projectID, Name: "Foundation", BudgetAllocation: allocation}
	require.NoError(t, store.Phases().Create(phase))
	return phase
}

func TestValidatePhaseSpend(t *testing.T) {
	store := memory.NewStore()
	project := seedProject(t, store, 100000)
	phase := seedPhase(t, store, project.ID, 5000)
	phase.ActualSpending = 3000
	require.NoError(t, store.Phases().Update(phase))

	v := NewValidator(store)

	res, err := v.ValidatePhaseSpend(phase.ID, 2000)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, 2000.0, res.Available)

	res, err = v.ValidatePhaseSpend(phase.ID, 2000.01)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, "Available: 2000.00, Required: 2000.01", res.Message)
}

func TestValidatePhaseSpendNegativeDeltaAlwaysFits(t *testing.T) {
	store := memory.NewStore()
	project := seedProject(t, store, 100000)
	phase := seedPhase(t, store, project.ID, 1000)
	phase.ActualSpending = 1000
	require.NoError(t, store.Phases().Update(phase))

	res, err := NewValidator(store).ValidatePhaseSpend(phase.ID, -250)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidatePhaseSpendUnknownPhase(t *testing.T) {
	store := memory.NewStore()
	_, err := NewValidator(store).ValidatePhaseSpend(42, 100)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, uint(42), nfErr.ID)
}

func TestValidateCategorySpend(t *testing.T) {
	store := memory.NewStore()
	project := seedProject(t, store, 100000)
	category := &models.IndirectCostCategory{ProjectID: project.ID, Name: "Security", BudgetAllocation: 800}
	require.NoError(t, store.IndirectCategories().Create(category))

	v := NewValidator(store)

	res, err := v.ValidateCategorySpend(category.ID, 800)
	require.NoError(t, err)
	assert.True(t, res.IsValid)

	res, err = v.ValidateCategorySpend(category.ID, 801)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
}

func TestValidateProjectCapitalCountsCommittedAndActual(t *testing.T) {
	store := memory.NewStore()
	project := seedProject(t, store, 10000)
	project.CommittedCost = 4000
	project.ActualLabourCost = 3000
	project.ActualMaterialsCost = 1000
	require.NoError(t, store.Projects().Update(project))

	v := NewValidator(store)

	res, err := v.ValidateProjectCapital(project.ID, 2000)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, 2000.0, res.Available)

	res, err = v.ValidateProjectCapital(project.ID, 2500)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
}

func TestValidatorNeverMutates(t *testing.T) {
	store := memory.NewStore()
	project := seedProject(t, store, 10000)
	phase := seedPhase(t, store, project.ID, 5000)

	v := NewValidator(store)
	_, err := v.ValidatePhaseSpend(phase.ID, 99999)
	require.NoError(t, err)
	_, err = v.ValidateProjectCapital(project.ID, 99999)
	require.NoError(t, err)

	got, err := store.Phases().GetByID(phase.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.ActualSpending)

	gotProject, err := store.Projects().GetByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, gotProject.CommittedCost)
}

func TestCapitalError(t *testing.T) {
	res := result(100, 250)
	err := CapitalError("phase", res)

	var capErr *InsufficientCapitalError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 100.0, capErr.Available)
	assert.Equal(t, 250.0, capErr.Required)
	assert.Contains(t, capErr.Error(), "insufficient capital for phase")
}
