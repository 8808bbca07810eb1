package services

import (
	"fmt"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/repository"
)

type CreateRequestInput struct {
	ProjectID         uint    `json:"project_id"`
	PhaseID           *uint   `json:"phase_id"`
	WorkItemID        *uint   `json:"work_item_id"`
	ItemName          string  `json:"item_name"`
	Quantity          float64 `json:"quantity"`
	EstimatedUnitCost float64 `json:"estimated_unit_cost"`
	SupplierName      string  `json:"supplier_name"`
	RequestedBy       uint    `json:"requested_by"`
}

type MaterialRequestService interface {
	CreateRequest(input *CreateRequestInput) (*models.MaterialRequest, error)
	GetRequest(id uint) (*models.MaterialRequest, error)
	GetRequestsByProject(projectID uint) ([]models.MaterialRequest, error)
	ApproveRequest(id, userID uint) (*models.MaterialRequest, error)
	RejectRequest(id, userID uint, reason string) (*models.MaterialRequest, error)
	DeleteRequest(id, userID uint) error
}

// materialRequestService runs the site-side request workflow. Requests never
// touch the ledger themselves; approval spawns a purchase order which carries
// the money from there.
type materialRequestService struct {
	store  repository.Store
	orders PurchaseOrderService
	users  UserService
}

func NewMaterialRequestService(store repository.Store, orders PurchaseOrderService, users UserService) MaterialRequestService {
	return &materialRequestService{store: store, orders: orders, users: users}
}

func (s *materialRequestService) CreateRequest(input *CreateRequestInput) (*models.MaterialRequest, error) {
	if input.ProjectID == 0 || input.ItemName == "" {
		return nil, &ledger.ValidationError{Msg: "project_id and item_name are required"}
	}
	if input.Quantity <= 0 {
		return nil, &ledger.ValidationError{Msg: "quantity must be positive"}
	}
	if _, err := s.store.Projects().GetByID(input.ProjectID); err != nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: input.ProjectID}
	}

	request := &models.MaterialRequest{
		ProjectID:         input.ProjectID,
		PhaseID:           input.PhaseID,
		WorkItemID:        input.WorkItemID,
		ItemName:          input.ItemName,
		Quantity:          input.Quantity,
		EstimatedUnitCost: input.EstimatedUnitCost,
		SupplierName:      input.SupplierName,
		Status:            string(models.RequestPending),
		RequestedBy:       input.RequestedBy,
	}
	if err := s.store.MaterialRequests().Create(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *materialRequestService) GetRequest(id uint) (*models.MaterialRequest, error) {
	request, err := s.store.MaterialRequests().GetByID(id)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "material request", ID: id}
	}
	return request, nil
}

func (s *materialRequestService) GetRequestsByProject(projectID uint) ([]models.MaterialRequest, error) {
	return s.store.MaterialRequests().GetByProjectID(projectID)
}

// ApproveRequest spawns the purchase order and links it back to the request.
func (s *materialRequestService) ApproveRequest(id, userID uint) (*models.MaterialRequest, error) {
	request, err := s.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if request.Status != string(models.RequestPending) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "material request", From: request.Status, Action: "approve"}
	}
	if request.EstimatedUnitCost <= 0 {
		return nil, &ledger.ValidationError{Msg: "estimated unit cost must be set before approval"}
	}

	supplier := request.SupplierName
	if supplier == "" {
		supplier = "unassigned"
	}
	order, err := s.orders.CreateOrder(&CreateOrderInput{
		ProjectID:    request.ProjectID,
		PhaseID:      request.PhaseID,
		WorkItemID:   request.WorkItemID,
		SupplierName: supplier,
		ItemName:     fmt.Sprintf("%s (request #%d)", request.ItemName, request.ID),
		Quantity:     request.Quantity,
		UnitCost:     request.EstimatedUnitCost,
		CreatedBy:    userID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request.Status = string(models.RequestApproved)
	request.ReviewedBy = &userID
	request.ReviewedAt = &now
	request.PurchaseOrderID = &order.ID
	if err := s.store.MaterialRequests().Update(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *materialRequestService) RejectRequest(id, userID uint, reason string) (*models.MaterialRequest, error) {
	request, err := s.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if request.Status != string(models.RequestPending) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "material request", From: request.Status, Action: "reject"}
	}

	now := time.Now()
	request.Status = string(models.RequestRejected)
	request.ReviewedBy = &userID
	request.ReviewedAt = &now
	request.RejectionReason = reason
	if err := s.store.MaterialRequests().Update(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *materialRequestService) DeleteRequest(id, userID uint) error {
	request, err := s.GetRequest(id)
	if err != nil {
		return err
	}
	if request.Status != string(models.RequestPending) {
		return &ledger.InvalidStateTransitionError{Entity: "material request", From: request.Status, Action: "delete"}
	}
	return s.store.MaterialRequests().Delete(id)
}
