package services

import (
	"errors"
	"fmt"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/redis"
	"construction_manager/internal/repository"
)

// ErrPermissionDenied is returned when the acting user's role cannot perform
// the transition. Authorization itself lives outside the core; this is only
// the capability check.
var ErrPermissionDenied = errors.New("only a PM or owner can approve order modifications")

// ErrMaxRetries is returned when a rejected order has exhausted its supplier
// retries.
var ErrMaxRetries = errors.New("maximum supplier retries reached")

type CreateOrderInput struct {
	ProjectID    uint    `json:"project_id"`
	PhaseID      *uint   `json:"phase_id"`
	WorkItemID   *uint   `json:"work_item_id"`
	SupplierName string  `json:"supplier_name"`
	ItemName     string  `json:"item_name"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	CreatedBy    uint    `json:"created_by"`
}

type UpdateOrderInput struct {
	SupplierName *string  `json:"supplier_name"`
	ItemName     *string  `json:"item_name"`
	Quantity     *float64 `json:"quantity"`
	UnitCost     *float64 `json:"unit_cost"`
}

type ModifyOrderInput struct {
	ProposedUnitCost *float64 `json:"proposed_unit_cost"`
	ProposedQuantity *float64 `json:"proposed_quantity"`
}

type PurchaseOrderService interface {
	CreateOrder(input *CreateOrderInput) (*models.PurchaseOrder, error)
	GetOrder(id uint) (*models.PurchaseOrder, error)
	GetOrdersByProject(projectID uint) ([]models.PurchaseOrder, error)
	UpdateOrder(id uint, input *UpdateOrderInput, userID uint) (*models.PurchaseOrder, error)
	DeleteOrder(id, userID uint) error

	Accept(id, userID uint) (*models.PurchaseOrder, error)
	Reject(id, userID uint) (*models.PurchaseOrder, error)
	Modify(id uint, input *ModifyOrderInput, userID uint) (*models.PurchaseOrder, error)
	ApproveModification(id, userID uint, autoCommit bool) (*models.PurchaseOrder, error)
	RejectModification(id, userID uint) (*models.PurchaseOrder, error)
	RetrySupplier(id, userID uint) (*models.PurchaseOrder, error)
	MarkReadyForDelivery(id, userID uint) (*models.PurchaseOrder, error)
	MarkDelivered(id, userID uint) (*models.PurchaseOrder, error)
	Cancel(id, userID uint) (*models.PurchaseOrder, error)
}

type purchaseOrderService struct {
	store        repository.Store
	users        UserService
	validator    *ledger.Validator
	mutator      *ledger.Mutator
	queue        TaskQueue
	notification NotificationService
}

func NewPurchaseOrderService(store repository.Store, users UserService, queue TaskQueue, notification NotificationService) PurchaseOrderService {
	return &purchaseOrderService{
		store:        store,
		users:        users,
		validator:    ledger.NewValidator(store),
		mutator:      ledger.NewMutator(store),
		queue:        queue,
		notification: notification,
	}
}

func (s *purchaseOrderService) CreateOrder(input *CreateOrderInput) (*models.PurchaseOrder, error) {
	if input.ProjectID == 0 || input.SupplierName == "" || input.ItemName == "" {
		return nil, &ledger.ValidationError{Msg: "project_id, supplier_name and item_name are required"}
	}
	if input.Quantity <= 0 || input.UnitCost <= 0 {
		return nil, &ledger.ValidationError{Msg: "quantity and unit_cost must be positive"}
	}
	if _, err := s.store.Projects().GetByID(input.ProjectID); err != nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: input.ProjectID}
	}

	order := &models.PurchaseOrder{
		OrderNumber:  fmt.Sprintf("PO-%d-%d", input.ProjectID, time.Now().UnixNano()),
		ProjectID:    input.ProjectID,
		PhaseID:      input.PhaseID,
		WorkItemID:   input.WorkItemID,
		SupplierName: input.SupplierName,
		ItemName:     input.ItemName,
		Quantity:     input.Quantity,
		UnitCost:     input.UnitCost,
		TotalCost:    input.Quantity * input.UnitCost,
		Status:       string(models.OrderSent),
		Financial:    string(models.FinancialEstimated),
		IsRetryable:  true,
		CreatedBy:    input.CreatedBy,
	}

	mut := &ledger.Mutation{
		Action:      "create",
		EntityType:  "purchase_order",
		ProjectID:   input.ProjectID,
		PerformedBy: input.CreatedBy,
	}
	mut.Primary = func(tx repository.Store) error {
		if err := tx.PurchaseOrders().Create(order); err != nil {
			return err
		}
		mut.EntityID = order.ID
		mut.After = order
		return nil
	}

	if err := s.mutator.Execute(mut); err != nil {
		return nil, err
	}

	s.notification.Notify(order.ProjectID, fmt.Sprintf("Purchase order %s sent to %s", order.OrderNumber, order.SupplierName))
	return order, nil
}

func (s *purchaseOrderService) GetOrder(id uint) (*models.PurchaseOrder, error) {
	order, err := s.store.PurchaseOrders().GetByID(id)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "purchase order", ID: id}
	}
	return order, nil
}

func (s *purchaseOrderService) GetOrdersByProject(projectID uint) ([]models.PurchaseOrder, error) {
	return s.store.PurchaseOrders().GetByProjectID(projectID)
}

func (s *purchaseOrderService) UpdateOrder(id uint, input *UpdateOrderInput, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !order.Editable() {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "update"}
	}
	// A committed order reaches order_modified via a supplier counter-offer on
	// an accepted order. Its figures move only through the modification
	// approval path, which validates and applies the difference; a plain edit
	// here would leave the committed cost stale.
	if order.Financial == string(models.FinancialCommitted) && (input.Quantity != nil || input.UnitCost != nil) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "committed purchase order", From: order.Status, Action: "reprice"}
	}

	before := *order
	if input.SupplierName != nil {
		order.SupplierName = *input.SupplierName
	}
	if input.ItemName != nil {
		order.ItemName = *input.ItemName
	}
	if input.Quantity != nil {
		order.Quantity = *input.Quantity
	}
	if input.UnitCost != nil {
		order.UnitCost = *input.UnitCost
	}
	if order.Quantity <= 0 || order.UnitCost <= 0 {
		return nil, &ledger.ValidationError{Msg: "quantity and unit_cost must be positive"}
	}
	order.TotalCost = order.Quantity * order.UnitCost

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "update",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder soft-deletes. Committed orders must go through Cancel first so
// the capital reversal runs.
func (s *purchaseOrderService) DeleteOrder(id, userID uint) error {
	order, err := s.GetOrder(id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "delete"}
	}

	return s.mutator.Execute(&ledger.Mutation{
		Action:      "delete",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Delete(order.ID)
		},
	})
}

// Accept commits the order's capital. This is the only transition that
// increments the project's committed cost.
func (s *purchaseOrderService) Accept(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderSent) && order.Status != string(models.RetrySent) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "accept"}
	}

	res, err := s.validator.ValidateProjectCapital(order.ProjectID, order.TotalCost)
	if err != nil {
		return nil, err
	}
	if !res.IsValid {
		return nil, ledger.CapitalError("project capital", res)
	}

	before := *order
	order.Status = string(models.OrderAccepted)
	order.Financial = string(models.FinancialCommitted)

	deltas := []ledger.Delta{ledger.ProjectCommittedDelta(order.ProjectID, order.TotalCost)}
	if order.PhaseID != nil {
		deltas = append(deltas, ledger.PhaseSpendDelta(*order.PhaseID, order.TotalCost))
	}

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "accept",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
		Deltas: deltas,
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCorrections(order)
	s.notification.Notify(order.ProjectID, fmt.Sprintf("Purchase order %s accepted, %.2f committed", order.OrderNumber, order.TotalCost))
	return order, nil
}

func (s *purchaseOrderService) Reject(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderSent) && order.Status != string(models.RetrySent) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "reject"}
	}

	before := *order
	order.Status = string(models.OrderRejected)

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "reject",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
	})
	if err != nil {
		return nil, err
	}

	s.notification.Notify(order.ProjectID, fmt.Sprintf("Purchase order %s rejected by supplier", order.OrderNumber))
	return order, nil
}

// Modify records a supplier counter-offer. The order's own figures stay
// untouched until a PM or owner approves.
func (s *purchaseOrderService) Modify(id uint, input *ModifyOrderInput, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case string(models.OrderSent), string(models.RetrySent), string(models.OrderAccepted):
	default:
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "modify"}
	}
	if input.ProposedUnitCost == nil && input.ProposedQuantity == nil {
		return nil, &ledger.ValidationError{Msg: "a proposed unit cost or quantity is required"}
	}
	if input.ProposedUnitCost != nil && *input.ProposedUnitCost <= 0 {
		return nil, &ledger.ValidationError{Msg: "proposed unit cost must be positive"}
	}
	if input.ProposedQuantity != nil && *input.ProposedQuantity <= 0 {
		return nil, &ledger.ValidationError{Msg: "proposed quantity must be positive"}
	}

	before := *order
	order.ProposedUnitCost = input.ProposedUnitCost
	order.ProposedQuantity = input.ProposedQuantity
	order.Status = string(models.OrderModified)

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "modify",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
	})
	if err != nil {
		return nil, err
	}

	s.notification.Notify(order.ProjectID, fmt.Sprintf("Purchase order %s modified by supplier, awaiting approval", order.OrderNumber))
	return order, nil
}

// ApproveModification re-applies the supplier's proposed totals. For an
// already-committed order only the difference moves the committed cost; a
// not-yet-committed order commits its full new total when autoCommit is set.
func (s *purchaseOrderService) ApproveModification(id, userID uint, autoCommit bool) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderModified) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "approve modification"}
	}
	if err := s.requireApprover(userID); err != nil {
		return nil, err
	}

	before := *order
	oldTotal := order.TotalCost
	newTotal := order.ProposedTotal()
	wasCommitted := order.Financial == string(models.FinancialCommitted)

	var deltas []ledger.Delta
	switch {
	case wasCommitted:
		diff := newTotal - oldTotal
		if diff > 0 {
			res, err := s.validator.ValidateProjectCapital(order.ProjectID, diff)
			if err != nil {
				return nil, err
			}
			if !res.IsValid {
				return nil, ledger.CapitalError("project capital", res)
			}
		}
		deltas = append(deltas, ledger.ProjectCommittedDelta(order.ProjectID, diff))
		if order.PhaseID != nil {
			deltas = append(deltas, ledger.PhaseSpendDelta(*order.PhaseID, diff))
		}
		order.Status = string(models.OrderAccepted)
	case autoCommit:
		res, err := s.validator.ValidateProjectCapital(order.ProjectID, newTotal)
		if err != nil {
			return nil, err
		}
		if !res.IsValid {
			return nil, ledger.CapitalError("project capital", res)
		}
		deltas = append(deltas, ledger.ProjectCommittedDelta(order.ProjectID, newTotal))
		if order.PhaseID != nil {
			deltas = append(deltas, ledger.PhaseSpendDelta(*order.PhaseID, newTotal))
		}
		order.Financial = string(models.FinancialCommitted)
		order.Status = string(models.OrderAccepted)
	default:
		order.Status = string(models.OrderSent)
	}

	if order.ProposedUnitCost != nil {
		order.UnitCost = *order.ProposedUnitCost
	}
	if order.ProposedQuantity != nil {
		order.Quantity = *order.ProposedQuantity
	}
	order.TotalCost = newTotal
	order.ProposedUnitCost = nil
	order.ProposedQuantity = nil

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "approve_modification",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
		Deltas: deltas,
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCorrections(order)
	return order, nil
}

// RejectModification discards the supplier's proposal and restores the
// pre-modification standing.
func (s *purchaseOrderService) RejectModification(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderModified) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "reject modification"}
	}
	if err := s.requireApprover(userID); err != nil {
		return nil, err
	}

	before := *order
	order.ProposedUnitCost = nil
	order.ProposedQuantity = nil
	if order.Financial == string(models.FinancialCommitted) {
		order.Status = string(models.OrderAccepted)
	} else {
		order.Status = string(models.OrderSent)
	}

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "reject_modification",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RetrySupplier resends a rejected order, bounded by the retry cap.
func (s *purchaseOrderService) RetrySupplier(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderRejected) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "retry"}
	}
	if !order.IsRetryable || order.RetryCount >= models.MaxSupplierRetries {
		return nil, ErrMaxRetries
	}

	before := *order
	order.RetryCount++
	order.Status = string(models.RetrySent)

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "retry_supplier",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
	})
	if err != nil {
		return nil, err
	}

	s.notification.Notify(order.ProjectID, fmt.Sprintf("Purchase order %s resent to supplier (attempt %d)", order.OrderNumber, order.RetryCount))
	return order, nil
}

func (s *purchaseOrderService) MarkReadyForDelivery(id, userID uint) (*models.PurchaseOrder, error) {
	return s.simpleTransition(id, userID, "ready_for_delivery",
		[]string{string(models.OrderAccepted)}, string(models.ReadyForDelivery), nil)
}

// MarkDelivered realizes the order: committed capital moves to actual
// materials spend. Phase actual is untouched; it already counted the order at
// acceptance.
func (s *purchaseOrderService) MarkDelivered(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.ReadyForDelivery) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "delivered"}
	}

	before := *order
	now := time.Now()
	order.Status = string(models.Delivered)
	order.DeliveryDate = &now

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "delivered",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
		Deltas: []ledger.Delta{
			ledger.ProjectCommittedDelta(order.ProjectID, -order.TotalCost),
			ledger.ProjectMaterialsDelta(order.ProjectID, order.TotalCost),
		},
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCorrections(order)
	return order, nil
}

// Cancel releases committed capital when a committed order is withdrawn.
func (s *purchaseOrderService) Cancel(id, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case string(models.OrderSent), string(models.RetrySent), string(models.OrderAccepted), string(models.ReadyForDelivery):
	default:
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: "cancel"}
	}

	before := *order
	var deltas []ledger.Delta
	if order.Financial == string(models.FinancialCommitted) {
		deltas = append(deltas, ledger.ProjectCommittedDelta(order.ProjectID, -order.TotalCost))
		if order.PhaseID != nil {
			deltas = append(deltas, ledger.PhaseSpendDelta(*order.PhaseID, -order.TotalCost))
		}
		order.Financial = string(models.FinancialEstimated)
	}
	order.Status = string(models.OrderCancelled)

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "cancel",
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
		Deltas: deltas,
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCorrections(order)
	return order, nil
}

func (s *purchaseOrderService) simpleTransition(id, userID uint, action string, from []string, to string, deltas []ledger.Delta) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if order.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &ledger.InvalidStateTransitionError{Entity: "purchase order", From: order.Status, Action: action}
	}

	before := *order
	order.Status = to

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      action,
		EntityType:  "purchase_order",
		EntityID:    order.ID,
		ProjectID:   order.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       order,
		Primary: func(tx repository.Store) error {
			return tx.PurchaseOrders().Update(order)
		},
		Deltas: deltas,
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *purchaseOrderService) requireApprover(userID uint) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return &ledger.NotFoundError{Entity: "user", ID: userID}
	}
	if !user.CanApproveOrders() {
		return ErrPermissionDenied
	}
	return nil
}

func (s *purchaseOrderService) scheduleCorrections(order *models.PurchaseOrder) {
	if order.PhaseID != nil {
		enqueue(s.queue, &redis.Task{Type: redis.TaskRecalculatePhase, TargetID: *order.PhaseID, ProjectID: order.ProjectID})
	}
	enqueue(s.queue, &redis.Task{Type: redis.TaskRecalculateProject, TargetID: order.ProjectID, ProjectID: order.ProjectID})
	enqueue(s.queue, &redis.Task{Type: redis.TaskRefreshCostSummary, TargetID: order.ProjectID, ProjectID: order.ProjectID})
}
