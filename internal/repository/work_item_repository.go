package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type WorkItemRepository interface {
	Create(item *models.WorkItem) error
	GetByID(id uint) (*models.WorkItem, error)
	GetByPhaseID(phaseID uint) ([]models.WorkItem, error)
	Update(item *models.WorkItem) error
	Delete(id uint) error
}

type workItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &workItemRepository{db: db}
}

func (r *workItemRepository) Create(item *models.WorkItem) error {
	return r.db.Create(item).Error
}

func (r *workItemRepository) GetByID(id uint) (*models.WorkItem, error) {
	var item models.WorkItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *workItemRepository) GetByPhaseID(phaseID uint) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.db.Where("phase_id = ?", phaseID).Find(&items).Error
	return items, err
}

func (r *workItemRepository) Update(item *models.WorkItem) error {
	return r.db.Save(item).Error
}

func (r *workItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.WorkItem{}, id).Error
}
