package models

import (
	"time"

	"gorm.io/gorm"
)

// LabourScope discriminates where an entry's cost posts: a phase (direct
// labour) or a project-level indirect category. Exactly one of PhaseID or
// CategoryID is set, according to the scope tag.
type LabourScope string

const (
	LabourDirect   LabourScope = "direct"
	LabourIndirect LabourScope = "indirect"
)

type LabourEntryStatus string

const (
	LabourDraft     LabourEntryStatus = "draft"
	LabourSubmitted LabourEntryStatus = "submitted"
	LabourApproved  LabourEntryStatus = "approved"
	LabourPaid      LabourEntryStatus = "paid"
)

const (
	// RegularHoursPerDay is the cutoff after which hours bill at the
	// overtime rate.
	RegularHoursPerDay = 8.0
	// OvertimeMultiplier applied to the hourly rate past the cutoff.
	OvertimeMultiplier = 1.5
)

type LabourEntry struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	BatchID       uint           `json:"batch_id" gorm:"not null;index"`
	ProjectID     uint           `json:"project_id" gorm:"not null;index"`
	Scope         LabourScope    `json:"scope" gorm:"not null"`
	PhaseID       *uint          `json:"phase_id" gorm:"index"`    // set when scope = direct
	CategoryID    *uint          `json:"category_id" gorm:"index"` // set when scope = indirect
	WorkItemID    *uint          `json:"work_item_id"`
	EquipmentID   *uint          `json:"equipment_id"`
	WorkerName    string         `json:"worker_name" gorm:"not null"`
	WorkDate      time.Time      `json:"work_date" gorm:"not null"`
	RegularHours  float64        `json:"regular_hours" gorm:"default:0"`
	OvertimeHours float64        `json:"overtime_hours" gorm:"default:0"`
	HourlyRate    float64        `json:"hourly_rate" gorm:"not null"`
	RegularCost   float64        `json:"regular_cost" gorm:"default:0"`
	OvertimeCost  float64        `json:"overtime_cost" gorm:"default:0"`
	Status        string         `json:"status" gorm:"default:'draft'"`
	CreatedBy     uint           `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (e *LabourEntry) TotalHours() float64 {
	return e.RegularHours + e.OvertimeHours
}

func (e *LabourEntry) TotalCost() float64 {
	return e.RegularCost + e.OvertimeCost
}

// Editable reports whether the entry may still be changed or deleted.
// Approved and paid entries are locked.
func (e *LabourEntry) Editable() bool {
	return e.Status == string(LabourDraft) || e.Status == string(LabourSubmitted)
}

type LabourBatchStatus string

const (
	BatchDraft    LabourBatchStatus = "draft"
	BatchApproved LabourBatchStatus = "approved"
)

// LabourBatch groups entries created together with shared defaults. Draft
// batches never post to the ledger; approval is what commits their cost.
type LabourBatch struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ProjectID      uint           `json:"project_id" gorm:"not null;index"`
	DefaultPhaseID *uint          `json:"default_phase_id"`
	IsIndirect     bool           `json:"is_indirect" gorm:"default:false"`
	Description    string         `json:"description"`
	TotalEntries   int            `json:"total_entries" gorm:"default:0"`
	TotalCost      float64        `json:"total_cost" gorm:"default:0"`
	Status         string         `json:"status" gorm:"default:'draft'"`
	CreatedBy      uint           `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
