package models

import (
	"time"

	"gorm.io/gorm"
)

// IndirectCostCategory is a project-level overhead bucket (site management,
// security, utilities). Indirect labour posts here instead of to a phase.
type IndirectCostCategory struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	ProjectID        uint           `json:"project_id" gorm:"not null;index"`
	Name             string         `json:"name" gorm:"not null"`
	BudgetAllocation float64        `json:"budget_allocation" gorm:"default:0"`
	ActualSpending   float64        `json:"actual_spending" gorm:"default:0"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Remaining is the category allocation not yet consumed.
func (c *IndirectCostCategory) Remaining() float64 {
	return c.BudgetAllocation - c.ActualSpending
}
