package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name" gorm:"not null"`
	ClientName          string         `json:"client_name"`
	Location            string         `json:"location"`
	Budget              float64        `json:"budget" gorm:"not null"`
	CommittedCost       float64        `json:"committed_cost" gorm:"default:0"`
	ActualMaterialsCost float64        `json:"actual_materials_cost" gorm:"default:0"`
	ActualLabourCost    float64        `json:"actual_labour_cost" gorm:"default:0"`
	ActualIndirectCost  float64        `json:"actual_indirect_cost" gorm:"default:0"`
	Status              string         `json:"status" gorm:"default:'planning'"` // planning, active, completed, retired
	IsActive            bool           `json:"is_active" gorm:"default:true"`
	StartDate           *time.Time     `json:"start_date"`
	EndDate             *time.Time     `json:"end_date"`
	CreatedBy           uint           `json:"created_by" gorm:"not null"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectRetired   ProjectStatus = "retired"
)

// ActualSpending is the total realized cost across all categories.
func (p *Project) ActualSpending() float64 {
	return p.ActualMaterialsCost + p.ActualLabourCost + p.ActualIndirectCost
}

// CapitalBalance is what is left to commit: budget minus obligations and realized spend.
func (p *Project) CapitalBalance() float64 {
	return p.Budget - p.CommittedCost - p.ActualSpending()
}
