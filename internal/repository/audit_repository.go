package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(entry *models.AuditLog) error
	GetByProjectID(projectID uint, limit int) ([]models.AuditLog, error)
	GetByEntity(entityType string, entityID uint) ([]models.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditLogRepository) GetByProjectID(projectID uint, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	q := r.db.Where("project_id = ?", projectID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *auditLogRepository) GetByEntity(entityType string, entityID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").Find(&entries).Error
	return entries, err
}
