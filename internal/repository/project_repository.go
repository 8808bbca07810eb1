package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetAll() ([]models.Project, error)
	Update(project *models.Project) error
	Retire(id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetAll() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("is_active = ?", true).Order("created_at desc").Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Retire marks a project inactive. Projects are never hard-deleted so their
// audit trail and ledger history stay queryable.
func (r *projectRepository) Retire(id uint) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active": false,
		"status":    string(models.ProjectRetired),
	}).Error
}
