package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type EquipmentRepository interface {
	Create(equipment *models.Equipment) error
	GetByID(id uint) (*models.Equipment, error)
	GetByProjectID(projectID uint) ([]models.Equipment, error)
	Update(equipment *models.Equipment) error
}

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(equipment *models.Equipment) error {
	return r.db.Create(equipment).Error
}

func (r *equipmentRepository) GetByID(id uint) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.db.First(&equipment, id).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepository) GetByProjectID(projectID uint) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := r.db.Where("project_id = ?", projectID).Find(&equipment).Error
	return equipment, err
}

func (r *equipmentRepository) Update(equipment *models.Equipment) error {
	return r.db.Save(equipment).Error
}
