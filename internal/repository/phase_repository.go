package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type PhaseRepository interface {
	Create(phase *models.Phase) error
	GetByID(id uint) (*models.Phase, error)
	GetByProjectID(projectID uint) ([]models.Phase, error)
	Update(phase *models.Phase) error
	Delete(id uint) error
	GetDependencies(phaseID uint) ([]models.PhaseDependency, error)
	AddDependency(dep *models.PhaseDependency) error
}

type phaseRepository struct {
	db *gorm.DB
}

func NewPhaseRepository(db *gorm.DB) PhaseRepository {
	return &phaseRepository{db: db}
}

func (r *phaseRepository) Create(phase *models.Phase) error {
	return r.db.Create(phase).Error
}

func (r *phaseRepository) GetByID(id uint) (*models.Phase, error) {
	var phase models.Phase
	err := r.db.First(&phase, id).Error
	if err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepository) GetByProjectID(projectID uint) ([]models.Phase, error) {
	var phases []models.Phase
	err := r.db.Where("project_id = ?", projectID).Order("sequence asc").Find(&phases).Error
	return phases, err
}

func (r *phaseRepository) Update(phase *models.Phase) error {
	return r.db.Save(phase).Error
}

func (r *phaseRepository) Delete(id uint) error {
	return r.db.Delete(&models.Phase{}, id).Error
}

func (r *phaseRepository) GetDependencies(phaseID uint) ([]models.PhaseDependency, error) {
	var deps []models.PhaseDependency
	err := r.db.Where("phase_id = ?", phaseID).Find(&deps).Error
	return deps, err
}

func (r *phaseRepository) AddDependency(dep *models.PhaseDependency) error {
	return r.db.Create(dep).Error
}
