package models

import (
	"time"

	"gorm.io/gorm"
)

type MaterialRequestStatus string

const (
	RequestPending  MaterialRequestStatus = "pending"
	RequestApproved MaterialRequestStatus = "approved"
	RequestRejected MaterialRequestStatus = "rejected"
)

// MaterialRequest is a site-side ask for materials. Approval spawns a
// purchase order; the request itself never touches the ledger.
type MaterialRequest struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	ProjectID         uint           `json:"project_id" gorm:"not null;index"`
	PhaseID           *uint          `json:"phase_id"`
	WorkItemID        *uint          `json:"work_item_id"`
	ItemName          string         `json:"item_name" gorm:"not null"`
	Quantity          float64        `json:"quantity" gorm:"not null"`
	EstimatedUnitCost float64        `json:"estimated_unit_cost"`
	SupplierName      string         `json:"supplier_name"`
	Status            string         `json:"status" gorm:"default:'pending'"`
	RequestedBy       uint           `json:"requested_by" gorm:"not null"`
	ReviewedBy        *uint          `json:"reviewed_by"`
	ReviewedAt        *time.Time     `json:"reviewed_at"`
	RejectionReason   string         `json:"rejection_reason"`
	PurchaseOrderID   *uint          `json:"purchase_order_id"` // set once approved
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
