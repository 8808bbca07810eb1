package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

// postedStatuses are the entry statuses that contribute to ledger aggregates.
var postedStatuses = []string{
	string(models.LabourApproved),
	string(models.LabourPaid),
}

type LabourEntryRepository interface {
	Create(entry *models.LabourEntry) error
	GetByID(id uint) (*models.LabourEntry, error)
	GetByBatchID(batchID uint) ([]models.LabourEntry, error)
	GetPostedByPhaseID(phaseID uint) ([]models.LabourEntry, error)
	GetPostedByCategoryID(categoryID uint) ([]models.LabourEntry, error)
	GetPostedByProjectID(projectID uint) ([]models.LabourEntry, error)
	Update(entry *models.LabourEntry) error
	Delete(id uint) error
}

type labourEntryRepository struct {
	db *gorm.DB
}

func NewLabourEntryRepository(db *gorm.DB) LabourEntryRepository {
	return &labourEntryRepository{db: db}
}

func (r *labourEntryRepository) Create(entry *models.LabourEntry) error {
	return r.db.Create(entry).Error
}

func (r *labourEntryRepository) GetByID(id uint) (*models.LabourEntry, error) {
	var entry models.LabourEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *labourEntryRepository) GetByBatchID(batchID uint) ([]models.LabourEntry, error) {
	var entries []models.LabourEntry
	err := r.db.Where("batch_id = ?", batchID).Find(&entries).Error
	return entries, err
}

func (r *labourEntryRepository) GetPostedByPhaseID(phaseID uint) ([]models.LabourEntry, error) {
	var entries []models.LabourEntry
	err := r.db.Where("phase_id = ? AND status IN ?", phaseID, postedStatuses).Find(&entries).Error
	return entries, err
}

func (r *labourEntryRepository) GetPostedByCategoryID(categoryID uint) ([]models.LabourEntry, error) {
	var entries []models.LabourEntry
	err := r.db.Where("category_id = ? AND status IN ?", categoryID, postedStatuses).Find(&entries).Error
	return entries, err
}

func (r *labourEntryRepository) GetPostedByProjectID(projectID uint) ([]models.LabourEntry, error) {
	var entries []models.LabourEntry
	err := r.db.Where("project_id = ? AND status IN ?", projectID, postedStatuses).Find(&entries).Error
	return entries, err
}

func (r *labourEntryRepository) Update(entry *models.LabourEntry) error {
	return r.db.Save(entry).Error
}

func (r *labourEntryRepository) Delete(id uint) error {
	return r.db.Delete(&models.LabourEntry{}, id).Error
}
