package models

import (
	"time"

	"gorm.io/gorm"
)

type PurchaseOrderStatus string

const (
	OrderSent        PurchaseOrderStatus = "order_sent"
	OrderAccepted    PurchaseOrderStatus = "order_accepted"
	OrderRejected    PurchaseOrderStatus = "order_rejected"
	OrderModified    PurchaseOrderStatus = "order_modified"
	RetrySent        PurchaseOrderStatus = "retry_sent"
	ReadyForDelivery PurchaseOrderStatus = "ready_for_delivery"
	Delivered        PurchaseOrderStatus = "delivered"
	OrderCancelled   PurchaseOrderStatus = "cancelled"
)

type FinancialStatus string

const (
	FinancialEstimated FinancialStatus = "estimated"
	FinancialCommitted FinancialStatus = "committed"
)

// MaxSupplierRetries caps how many times a rejected order can be resent.
const MaxSupplierRetries = 3

type PurchaseOrder struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	OrderNumber  string         `json:"order_number" gorm:"unique;not null"`
	ProjectID    uint           `json:"project_id" gorm:"not null;index"`
	PhaseID      *uint          `json:"phase_id" gorm:"index"`
	WorkItemID   *uint          `json:"work_item_id"`
	SupplierName string         `json:"supplier_name" gorm:"not null"`
	ItemName     string         `json:"item_name" gorm:"not null"`
	Quantity     float64        `json:"quantity" gorm:"not null"`
	UnitCost     float64        `json:"unit_cost" gorm:"not null"`
	TotalCost    float64        `json:"total_cost" gorm:"not null"`
	Status       string         `json:"status" gorm:"default:'order_sent'"`
	Financial    string         `json:"financial_status" gorm:"column:financial_status;default:'estimated'"`
	RetryCount   int            `json:"retry_count" gorm:"default:0"`
	IsRetryable  bool           `json:"is_retryable" gorm:"default:true"`
	DeliveryDate *time.Time     `json:"delivery_date"`

	// Supplier-proposed modification, pending PM/OWNER review. Cleared on
	// approval (values copied over) or rejection (discarded).
	ProposedUnitCost *float64 `json:"proposed_unit_cost"`
	ProposedQuantity *float64 `json:"proposed_quantity"`

	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Editable reports whether order fields may be changed in the current status.
func (o *PurchaseOrder) Editable() bool {
	return o.Status == string(OrderSent) || o.Status == string(OrderModified)
}

// Deletable reports whether the order may be soft-deleted in the current
// status. Committed orders must be cancelled first so capital is released.
func (o *PurchaseOrder) Deletable() bool {
	switch o.Status {
	case string(OrderSent), string(OrderRejected), string(OrderCancelled):
		return true
	}
	return false
}

func (o *PurchaseOrder) ProposedTotal() float64 {
	unit := o.UnitCost
	qty := o.Quantity
	if o.ProposedUnitCost != nil {
		unit = *o.ProposedUnitCost
	}
	if o.ProposedQuantity != nil {
		qty = *o.ProposedQuantity
	}
	return unit * qty
}
