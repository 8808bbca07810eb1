package models

import (
	"time"

	"gorm.io/gorm"
)

type WorkItem struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	PhaseID        uint           `json:"phase_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null"`
	Description    string         `json:"description"`
	EstimatedHours float64        `json:"estimated_hours" gorm:"default:0"`
	EstimatedCost  float64        `json:"estimated_cost" gorm:"default:0"`
	ActualHours    float64        `json:"actual_hours" gorm:"default:0"`
	ActualCost     float64        `json:"actual_cost" gorm:"default:0"`
	Status         string         `json:"status" gorm:"default:'not_started'"` // not_started, in_progress, completed
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type WorkItemStatus string

const (
	WorkItemNotStarted WorkItemStatus = "not_started"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemCompleted  WorkItemStatus = "completed"
)

// CompletionRatio compares accumulated hours against the estimate.
func (w *WorkItem) CompletionRatio() float64 {
	if w.EstimatedHours <= 0 {
		return 0
	}
	return w.ActualHours / w.EstimatedHours
}

// DeriveStatus maps the completion ratio onto a status. Called from the
// background worker, never inside the financial transaction.
func (w *WorkItem) DeriveStatus() WorkItemStatus {
	ratio := w.CompletionRatio()
	switch {
	case ratio >= 1.0:
		return WorkItemCompleted
	case ratio > 0:
		return WorkItemInProgress
	default:
		return WorkItemNotStarted
	}
}
