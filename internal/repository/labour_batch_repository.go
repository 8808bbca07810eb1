package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type LabourBatchRepository interface {
	Create(batch *models.LabourBatch) error
	GetByID(id uint) (*models.LabourBatch, error)
	GetByProjectID(projectID uint) ([]models.LabourBatch, error)
	Update(batch *models.LabourBatch) error
	Delete(id uint) error
}

type labourBatchRepository struct {
	db *gorm.DB
}

func NewLabourBatchRepository(db *gorm.DB) LabourBatchRepository {
	return &labourBatchRepository{db: db}
}

func (r *labourBatchRepository) Create(batch *models.LabourBatch) error {
	return r.db.Create(batch).Error
}

func (r *labourBatchRepository) GetByID(id uint) (*models.LabourBatch, error) {
	var batch models.LabourBatch
	err := r.db.First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *labourBatchRepository) GetByProjectID(projectID uint) ([]models.LabourBatch, error) {
	var batches []models.LabourBatch
	err := r.db.Where("project_id = ?", projectID).Order("created_at desc").Find(&batches).Error
	return batches, err
}

func (r *labourBatchRepository) Update(batch *models.LabourBatch) error {
	return r.db.Save(batch).Error
}

func (r *labourBatchRepository) Delete(id uint) error {
	return r.db.Delete(&models.LabourBatch{}, id).Error
}
