package models

import (
	"time"

	"gorm.io/gorm"
)

type Phase struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	ProjectID        uint           `json:"project_id" gorm:"not null;index"`
	Name             string         `json:"name" gorm:"not null"`
	Sequence         int            `json:"sequence" gorm:"default:0"`
	BudgetAllocation float64        `json:"budget_allocation" gorm:"default:0"`
	ActualSpending   float64        `json:"actual_spending" gorm:"default:0"`
	Status           string         `json:"status" gorm:"default:'pending'"` // pending, active, completed
	CanStartAfter    *time.Time     `json:"can_start_after"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Dependencies []PhaseDependency `json:"dependencies,omitempty" gorm:"foreignKey:PhaseID"`
}

// PhaseDependency marks that a phase cannot activate until the phase it
// depends on is completed.
type PhaseDependency struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	PhaseID     uint `json:"phase_id" gorm:"not null;index"`
	DependsOnID uint `json:"depends_on_id" gorm:"not null"`
}

type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseActive    PhaseStatus = "active"
	PhaseCompleted PhaseStatus = "completed"
)

// Remaining is the phase allocation not yet consumed by realized spend.
func (p *Phase) Remaining() float64 {
	return p.BudgetAllocation - p.ActualSpending
}
