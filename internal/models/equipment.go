package models

import (
	"time"

	"gorm.io/gorm"
)

type Equipment struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ProjectID     uint           `json:"project_id" gorm:"not null;index"`
	Name          string         `json:"name" gorm:"not null"`
	SerialNumber  string         `json:"serial_number"`
	OperatorHours float64        `json:"operator_hours" gorm:"default:0"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
