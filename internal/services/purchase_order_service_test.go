package services

import (
	"testing"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(f *fixture) PurchaseOrderService {
	users := NewUserService(f.store.Users())
	return NewPurchaseOrderService(f.store, users, f.queue, NewNotificationService(f.queue))
}

func createOrder(t *testing.T, svc PurchaseOrderService, f *fixture, phaseID *uint) *models.PurchaseOrder {
	t.Helper()
	order, err := svc.CreateOrder(&CreateOrderInput{
		ProjectID:    f.project.ID,
		PhaseID:      phaseID,
		SupplierName: "ACME",
		ItemName:     "Cement",
		Quantity:     10,
		UnitCost:     100,
		CreatedBy:    f.worker.ID,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderStartsEstimated(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)

	order := createOrder(t, svc, f, nil)
	assert.Equal(t, string(models.OrderSent), order.Status)
	assert.Equal(t, string(models.FinancialEstimated), order.Financial)
	assert.Equal(t, 1000.0, order.TotalCost)
	assert.NotEmpty(t, order.OrderNumber)

	// An estimated order reserves nothing.
	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)

	seen := f.queue.typesSeen()
	assert.Equal(t, 1, seen[redis.TaskNotify])
}

func TestAcceptCommitsCapital(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, uintPtr(f.phase.ID))

	accepted, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderAccepted), accepted.Status)
	assert.Equal(t, string(models.FinancialCommitted), accepted.Financial)

	assert.Equal(t, 1000.0, f.reloadProject(t).CommittedCost)
	assert.Equal(t, 1000.0, f.reloadPhase(t).ActualSpending)
}

func TestAcceptRefusedWhenCapitalExhausted(t *testing.T) {
	f := newFixture(t, 500, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Accept(order.ID, f.owner.ID)
	var capErr *ledger.InsufficientCapitalError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 500.0, capErr.Available)
	assert.Equal(t, 1000.0, capErr.Required)

	got, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderSent), got.Status)
	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)
}

func TestApproveModificationAppliesOnlyTheDifference(t *testing.T) {
	// Budget 2200 leaves exactly 200 after the 1000 commitment, enough for the
	// supplier raising the unit cost from 100 to 120.
	f := newFixture(t, 2200, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, uintPtr(f.phase.ID))

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)

	_, err = svc.Modify(order.ID, &ModifyOrderInput{ProposedUnitCost: floatPtr(120)}, f.worker.ID)
	require.NoError(t, err)

	approved, err := svc.ApproveModification(order.ID, f.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderAccepted), approved.Status)
	assert.Equal(t, 120.0, approved.UnitCost)
	assert.Equal(t, 1200.0, approved.TotalCost)
	assert.Nil(t, approved.ProposedUnitCost)

	assert.Equal(t, 1200.0, f.reloadProject(t).CommittedCost)
	assert.Equal(t, 1200.0, f.reloadPhase(t).ActualSpending)
}

func TestApproveModificationDifferenceExceedingBalanceRefused(t *testing.T) {
	// 2100 budget leaves only 100 headroom; the +200 difference cannot fit.
	f := newFixture(t, 2100, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.Modify(order.ID, &ModifyOrderInput{ProposedUnitCost: floatPtr(120)}, f.worker.ID)
	require.NoError(t, err)

	_, err = svc.ApproveModification(order.ID, f.owner.ID, false)
	var capErr *ledger.InsufficientCapitalError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 200.0, capErr.Required)

	assert.Equal(t, 1000.0, f.reloadProject(t).CommittedCost)
}

func TestApproveModificationAutoCommit(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Modify(order.ID, &ModifyOrderInput{ProposedQuantity: floatPtr(12)}, f.worker.ID)
	require.NoError(t, err)

	approved, err := svc.ApproveModification(order.ID, f.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderAccepted), approved.Status)
	assert.Equal(t, string(models.FinancialCommitted), approved.Financial)
	assert.Equal(t, 1200.0, approved.TotalCost)
	assert.Equal(t, 1200.0, f.reloadProject(t).CommittedCost)
}

func TestApproveModificationWithoutAutoCommitResends(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Modify(order.ID, &ModifyOrderInput{ProposedQuantity: floatPtr(12)}, f.worker.ID)
	require.NoError(t, err)

	approved, err := svc.ApproveModification(order.ID, f.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderSent), approved.Status)
	assert.Equal(t, string(models.FinancialEstimated), approved.Financial)
	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)
}

func TestApproveModificationRequiresApprover(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Modify(order.ID, &ModifyOrderInput{ProposedUnitCost: floatPtr(120)}, f.worker.ID)
	require.NoError(t, err)

	_, err = svc.ApproveModification(order.ID, f.worker.ID, false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.RejectModification(order.ID, f.worker.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRejectModificationRestoresStanding(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.Modify(order.ID, &ModifyOrderInput{ProposedUnitCost: floatPtr(120)}, f.worker.ID)
	require.NoError(t, err)

	rejected, err := svc.RejectModification(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderAccepted), rejected.Status)
	assert.Nil(t, rejected.ProposedUnitCost)
	assert.Equal(t, 100.0, rejected.UnitCost)
	assert.Equal(t, 1000.0, f.reloadProject(t).CommittedCost)
}

func TestRetrySupplierCapped(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	for attempt := 1; attempt <= models.MaxSupplierRetries; attempt++ {
		_, err := svc.Reject(order.ID, f.owner.ID)
		require.NoError(t, err)
		retried, err := svc.RetrySupplier(order.ID, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt, retried.RetryCount)
		assert.Equal(t, string(models.RetrySent), retried.Status)
	}

	_, err := svc.Reject(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.RetrySupplier(order.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrMaxRetries)
}

func TestMarkDeliveredRealizesCommittedCapital(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, uintPtr(f.phase.ID))

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.MarkReadyForDelivery(order.ID, f.owner.ID)
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.Delivered), delivered.Status)
	assert.NotNil(t, delivered.DeliveryDate)

	project := f.reloadProject(t)
	assert.Equal(t, 0.0, project.CommittedCost)
	assert.Equal(t, 1000.0, project.ActualMaterialsCost)
	// The phase counted the order at acceptance; delivery does not double it.
	assert.Equal(t, 1000.0, f.reloadPhase(t).ActualSpending)
	// Total capital consumption is unchanged by delivery.
	assert.Equal(t, 9000.0, project.CapitalBalance())
}

func TestCancelReleasesCommittedCapital(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, uintPtr(f.phase.ID))

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderCancelled), cancelled.Status)
	assert.Equal(t, string(models.FinancialEstimated), cancelled.Financial)

	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)
}

func TestCancelEstimatedOrderReversesNothing(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	cancelled, err := svc.Cancel(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderCancelled), cancelled.Status)
	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)
}

func TestDeleteCommittedOrderRefused(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)

	err = svc.DeleteOrder(order.ID, f.owner.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)

	// Cancelling first releases the capital, then deletion is allowed.
	_, err = svc.Cancel(order.ID, f.owner.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOrder(order.ID, f.owner.ID))
	_, err = svc.GetOrder(order.ID)
	assert.Error(t, err)
}

func TestUpdateOrderOnlyWhileEditable(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	updated, err := svc.UpdateOrder(order.ID, &UpdateOrderInput{Quantity: floatPtr(20), SupplierName: strPtr("BuildCo")}, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.TotalCost)
	assert.Equal(t, "BuildCo", updated.SupplierName)

	_, err = svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)

	_, err = svc.UpdateOrder(order.ID, &UpdateOrderInput{Quantity: floatPtr(5)}, f.worker.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
}

func TestUpdateOrderCannotRepriceCommittedOrder(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, uintPtr(f.phase.ID))

	_, err := svc.Accept(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.Modify(order.ID, &ModifyOrderInput{ProposedUnitCost: floatPtr(120)}, f.worker.ID)
	require.NoError(t, err)

	// order_modified is an editable status, but a committed order's figures
	// only move through the modification approval path.
	_, err = svc.UpdateOrder(order.ID, &UpdateOrderInput{Quantity: floatPtr(20)}, f.worker.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)

	got, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.TotalCost)
	assert.Equal(t, 1000.0, f.reloadProject(t).CommittedCost)

	// Non-financial fields stay editable.
	updated, err := svc.UpdateOrder(order.ID, &UpdateOrderInput{SupplierName: strPtr("BuildCo")}, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "BuildCo", updated.SupplierName)
	assert.Equal(t, 1000.0, updated.TotalCost)

	// Discarding the proposal and cancelling releases exactly what was
	// committed, leaving nothing stranded.
	_, err = svc.RejectModification(order.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(order.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.reloadProject(t).CommittedCost)
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)
}

func TestTransitionsRejectedFromWrongStatus(t *testing.T) {
	f := newFixture(t, 10000, 5000, 1000)
	svc := newOrderService(f)
	order := createOrder(t, svc, f, nil)

	var stateErr *ledger.InvalidStateTransitionError

	_, err := svc.MarkReadyForDelivery(order.ID, f.owner.ID)
	require.ErrorAs(t, err, &stateErr)

	_, err = svc.MarkDelivered(order.ID, f.owner.ID)
	require.ErrorAs(t, err, &stateErr)

	_, err = svc.RetrySupplier(order.ID, f.owner.ID)
	require.ErrorAs(t, err, &stateErr)

	_, err = svc.ApproveModification(order.ID, f.owner.ID, false)
	require.ErrorAs(t, err, &stateErr)
}
