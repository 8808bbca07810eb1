package models

import "time"

// AuditLog captures one committed financial mutation: before/after snapshots
// of the primary record and the numeric deltas applied to each ledger entity.
// Audit rows are append-only and never soft-deleted.
type AuditLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Action      string    `json:"action" gorm:"not null"` // create, update, delete, approve, accept, ...
	EntityType  string    `json:"entity_type" gorm:"not null;index"`
	EntityID    uint      `json:"entity_id" gorm:"not null"`
	ProjectID   uint      `json:"project_id" gorm:"not null;index"`
	PerformedBy uint      `json:"performed_by"`
	BeforeState string    `json:"before_state" gorm:"type:json"`
	AfterState  string    `json:"after_state" gorm:"type:json"`
	Deltas      string    `json:"deltas" gorm:"type:json"`
	CreatedAt   time.Time `json:"created_at"`
}
