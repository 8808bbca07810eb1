package repository

import (
	"construction_manager/internal/models"

	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(order *models.PurchaseOrder) error
	GetByID(id uint) (*models.PurchaseOrder, error)
	GetByProjectID(projectID uint) ([]models.PurchaseOrder, error)
	GetCommittedByProjectID(projectID uint) ([]models.PurchaseOrder, error)
	GetCommittedByPhaseID(phaseID uint) ([]models.PurchaseOrder, error)
	Update(order *models.PurchaseOrder) error
	Delete(id uint) error
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(order *models.PurchaseOrder) error {
	return r.db.Create(order).Error
}

func (r *purchaseOrderRepository) GetByID(id uint) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) GetByProjectID(projectID uint) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.db.Where("project_id = ?", projectID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepository) GetCommittedByProjectID(projectID uint) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.db.Where("project_id = ? AND financial_status = ?",
		projectID, string(models.FinancialCommitted)).Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepository) GetCommittedByPhaseID(phaseID uint) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.db.Where("phase_id = ? AND financial_status = ?",
		phaseID, string(models.FinancialCommitted)).Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepository) Update(order *models.PurchaseOrder) error {
	return r.db.Save(order).Error
}

func (r *purchaseOrderRepository) Delete(id uint) error {
	return r.db.Delete(&models.PurchaseOrder{}, id).Error
}
