package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type MaterialRequestRepository interface {
	Create(request *models.MaterialRequest) error
	GetByID(id uint) (*models.MaterialRequest, error)
	GetByProjectID(projectID uint) ([]models.MaterialRequest, error)
	GetPending() ([]models.MaterialRequest, error)
	Update(request *models.MaterialRequest) error
	Delete(id uint) error
}

type materialRequestRepository struct {
	db *gorm.DB
}

func NewMaterialRequestRepository(db *gorm.DB) MaterialRequestRepository {
	return &materialRequestRepository{db: db}
}

func (r *materialRequestRepository) Create(request *models.MaterialRequest) error {
	return r.db.Create(request).Error
}

func (r *materialRequestRepository) GetByID(id uint) (*models.MaterialRequest, error) {
	var request models.MaterialRequest
	err := r.db.First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *materialRequestRepository) GetByProjectID(projectID uint) ([]models.MaterialRequest, error) {
	var requests []models.MaterialRequest
	err := r.db.Where("project_id = ?", projectID).Order("created_at desc").Find(&requests).Error
	return requests, err
}

func (r *materialRequestRepository) GetPending() ([]models.MaterialRequest, error) {
	var requests []models.MaterialRequest
	err := r.db.Where("status = ?", string(models.RequestPending)).Find(&requests).Error
	return requests, err
}

func (r *materialRequestRepository) Update(request *models.MaterialRequest) error {
	return r.db.Save(request).Error
}

func (r *materialRequestRepository) Delete(id uint) error {
	return r.db.Delete(&models.MaterialRequest{}, id).Error
}
