package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PhoneNumber  string         `json:"phone_number"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"default:'worker'"` // owner, pm, supervisor, worker
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	RoleOwner      UserRole = "owner"
	RolePM         UserRole = "pm"
	RoleSupervisor UserRole = "supervisor"
	RoleWorker     UserRole = "worker"
)

// CanApproveOrders reports whether the role may approve supplier
// modifications and commit capital.
func (u *User) CanApproveOrders() bool {
	return u.Role == string(RoleOwner) || u.Role == string(RolePM)
}

func ValidRole(role string) bool {
	switch UserRole(role) {
	case RoleOwner, RolePM, RoleSupervisor, RoleWorker:
		return true
	}
	return false
}
