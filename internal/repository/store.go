package repository

import "gorm.io/gorm"

// Store aggregates every repository and provides the atomic multi-record
// transaction the ledger engine runs inside. Implementations must guarantee
// that a callback error rolls back every write made through the transactional
// Store handed to the callback.
type Store interface {
	Projects() ProjectRepository
	Phases() PhaseRepository
	WorkItems() WorkItemRepository
	Equipment() EquipmentRepository
	IndirectCategories() IndirectCategoryRepository
	LabourEntries() LabourEntryRepository
	LabourBatches() LabourBatchRepository
	PurchaseOrders() PurchaseOrderRepository
	MaterialRequests() MaterialRequestRepository
	AuditLogs() AuditLogRepository
	Users() UserRepository

	Transaction(fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Projects() ProjectRepository                 { return NewProjectRepository(s.db) }
func (s *gormStore) Phases() PhaseRepository                     { return NewPhaseRepository(s.db) }
func (s *gormStore) WorkItems() WorkItemRepository               { return NewWorkItemRepository(s.db) }
func (s *gormStore) Equipment() EquipmentRepository              { return NewEquipmentRepository(s.db) }
func (s *gormStore) IndirectCategories() IndirectCategoryRepository {
	return NewIndirectCategoryRepository(s.db)
}
func (s *gormStore) LabourEntries() LabourEntryRepository       { return NewLabourEntryRepository(s.db) }
func (s *gormStore) LabourBatches() LabourBatchRepository       { return NewLabourBatchRepository(s.db) }
func (s *gormStore) PurchaseOrders() PurchaseOrderRepository    { return NewPurchaseOrderRepository(s.db) }
func (s *gormStore) MaterialRequests() MaterialRequestRepository {
	return NewMaterialRequestRepository(s.db)
}
func (s *gormStore) AuditLogs() AuditLogRepository { return NewAuditLogRepository(s.db) }
func (s *gormStore) Users() UserRepository         { return NewUserRepository(s.db) }

func (s *gormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
