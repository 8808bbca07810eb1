package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type IndirectCategoryRepository interface {
	Create(category *models.IndirectCostCategory) error
	GetByID(id uint) (*models.IndirectCostCategory, error)
	GetByProjectID(projectID uint) ([]models.IndirectCostCategory, error)
	Update(category *models.IndirectCostCategory) error
	Delete(id uint) error
}

type indirectCategoryRepository struct {
	db *gorm.DB
}

func NewIndirectCategoryRepository(db *gorm.DB) IndirectCategoryRepository {
	return &indirectCategoryRepository{db: db}
}

func (r *indirectCategoryRepository) Create(category *models.IndirectCostCategory) error {
	return r.db.Create(category).Error
}

func (r *indirectCategoryRepository) GetByID(id uint) (*models.IndirectCostCategory, error) {
	var category models.IndirectCostCategory
	err := r.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *indirectCategoryRepository) GetByProjectID(projectID uint) ([]models.IndirectCostCategory, error) {
	var categories []models.IndirectCostCategory
	err := r.db.Where("project_id = ?", projectID).Find(&categories).Error
	return categories, err
}

func (r *indirectCategoryRepository) Update(category *models.IndirectCostCategory) error {
	return r.db.Save(category).Error
}

func (r *indirectCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.IndirectCostCategory{}, id).Error
}
