package services

import (
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/redis"
	"construction_manager/internal/repository"
)

type LabourEntryInput struct {
	WorkerName    string    `json:"worker_name"`
	WorkDate      time.Time `json:"work_date"`
	PhaseID       *uint     `json:"phase_id"`    // overrides the batch default
	CategoryID    *uint     `json:"category_id"` // indirect labour only
	WorkItemID    *uint     `json:"work_item_id"`
	EquipmentID   *uint     `json:"equipment_id"`
	TotalHours    float64   `json:"total_hours"`
	OvertimeHours float64   `json:"overtime_hours"`
	HourlyRate    float64   `json:"hourly_rate"`
}

type CreateBatchInput struct {
	ProjectID         uint               `json:"project_id"`
	DefaultPhaseID    *uint              `json:"default_phase_id"`
	DefaultCategoryID *uint              `json:"default_category_id"`
	IsIndirectLabour  bool               `json:"is_indirect_labour"`
	Description       string             `json:"description"`
	AutoApprove       bool               `json:"auto_approve"`
	LabourEntries     []LabourEntryInput `json:"labour_entries"`
	CreatedBy         uint               `json:"created_by"`
}

type UpdateEntryInput struct {
	TotalHours    *float64 `json:"total_hours"`
	OvertimeHours *float64 `json:"overtime_hours"`
	HourlyRate    *float64 `json:"hourly_rate"`
}

type LabourService interface {
	CreateBatch(input *CreateBatchInput) (*models.LabourBatch, error)
	SubmitBatch(batchID, userID uint) (*models.LabourBatch, error)
	ApproveBatch(batchID, userID uint) (*models.LabourBatch, error)
	DeleteBatch(batchID, userID uint) error
	GetBatch(batchID uint) (*models.LabourBatch, error)
	GetBatchesByProject(projectID uint) ([]models.LabourBatch, error)
	GetEntriesByBatch(batchID uint) ([]models.LabourEntry, error)
	UpdateEntry(entryID uint, input *UpdateEntryInput, userID uint) (*models.LabourEntry, error)
	DeleteEntry(entryID, userID uint) error
}

type labourService struct {
	store     repository.Store
	validator *ledger.Validator
	mutator   *ledger.Mutator
	queue     TaskQueue
}

func NewLabourService(store repository.Store, queue TaskQueue) LabourService {
	return &labourService{
		store:     store,
		validator: ledger.NewValidator(store),
		mutator:   ledger.NewMutator(store),
		queue:     queue,
	}
}

// splitHours divides worked hours into regular and overtime. An explicit
// overtime figure wins; otherwise anything past the daily cutoff is overtime.
func splitHours(totalHours, explicitOvertime float64) (regular, overtime float64) {
	if explicitOvertime > 0 {
		return totalHours - explicitOvertime, explicitOvertime
	}
	if totalHours > models.RegularHoursPerDay {
		return models.RegularHoursPerDay, totalHours - models.RegularHoursPerDay
	}
	return totalHours, 0
}

func labourCosts(regular, overtime, rate float64) (regularCost, overtimeCost float64) {
	return regular * rate, overtime * rate * models.OvertimeMultiplier
}

func (s *labourService) CreateBatch(input *CreateBatchInput) (*models.LabourBatch, error) {
	entries, err := s.buildEntries(input)
	if err != nil {
		return nil, err
	}

	// Affordability is checked per target scope with the full proposed cost,
	// whether or not the batch auto-approves: a batch that can never fit is
	// rejected up front.
	phaseTotals, categoryTotals := scopeTotals(entries)
	if err := s.validateScopes(input.ProjectID, phaseTotals, categoryTotals); err != nil {
		return nil, err
	}

	status := models.BatchDraft
	entryStatus := models.LabourDraft
	if input.AutoApprove {
		status = models.BatchApproved
		entryStatus = models.LabourApproved
	}

	batch := &models.LabourBatch{
		ProjectID:      input.ProjectID,
		DefaultPhaseID: input.DefaultPhaseID,
		IsIndirect:     input.IsIndirectLabour,
		Description:    input.Description,
		TotalEntries:   len(entries),
		TotalCost:      batchTotal(entries),
		Status:         string(status),
		CreatedBy:      input.CreatedBy,
	}

	mut := &ledger.Mutation{
		Action:      "create",
		EntityType:  "labour_batch",
		ProjectID:   input.ProjectID,
		PerformedBy: input.CreatedBy,
	}
	mut.Primary = func(tx repository.Store) error {
		if err := tx.LabourBatches().Create(batch); err != nil {
			return err
		}
		for i := range entries {
			entries[i].BatchID = batch.ID
			entries[i].Status = string(entryStatus)
			if err := tx.LabourEntries().Create(&entries[i]); err != nil {
				return err
			}
		}
		mut.EntityID = batch.ID
		mut.After = batch
		return nil
	}
	if input.AutoApprove {
		mut.Deltas = s.ledgerDeltas(input.ProjectID, entries, 1)
	}

	if err := s.mutator.Execute(mut); err != nil {
		return nil, err
	}

	if input.AutoApprove {
		s.scheduleCorrections(input.ProjectID, entries)
	}
	return batch, nil
}

// SubmitBatch marks a draft batch's entries as ready for approval. No money
// moves: submitted entries stay editable and only approval posts them.
func (s *labourService) SubmitBatch(batchID, userID uint) (*models.LabourBatch, error) {
	batch, err := s.store.LabourBatches().GetByID(batchID)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "labour batch", ID: batchID}
	}
	if batch.Status != string(models.BatchDraft) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "labour batch", From: batch.Status, Action: "submit"}
	}

	entries, err := s.store.LabourEntries().GetByBatchID(batchID)
	if err != nil {
		return nil, err
	}

	err = s.mutator.Execute(&ledger.Mutation{
		Action:      "submit",
		EntityType:  "labour_batch",
		EntityID:    batch.ID,
		ProjectID:   batch.ProjectID,
		PerformedBy: userID,
		Before:      batch,
		After:       batch,
		Primary: func(tx repository.Store) error {
			for i := range entries {
				if entries[i].Status != string(models.LabourDraft) {
					continue
				}
				entries[i].Status = string(models.LabourSubmitted)
				if err := tx.LabourEntries().Update(&entries[i]); err != nil {
					return err
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *labourService) ApproveBatch(batchID, userID uint) (*models.LabourBatch, error) {
	batch, err := s.store.LabourBatches().GetByID(batchID)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "labour batch", ID: batchID}
	}
	if batch.Status != string(models.BatchDraft) {
		return nil, &ledger.InvalidStateTransitionError{Entity: "labour batch", From: batch.Status, Action: "approve"}
	}

	entries, err := s.store.LabourEntries().GetByBatchID(batchID)
	if err != nil {
		return nil, err
	}

	phaseTotals, categoryTotals := scopeTotals(entries)
	if err := s.validateScopes(batch.ProjectID, phaseTotals, categoryTotals); err != nil {
		return nil, err
	}

	before := *batch
	batch.Status = string(models.BatchApproved)

	mut := &ledger.Mutation{
		Action:      "approve",
		EntityType:  "labour_batch",
		EntityID:    batch.ID,
		ProjectID:   batch.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       batch,
		Primary: func(tx repository.Store) error {
			if err := tx.LabourBatches().Update(batch); err != nil {
				return err
			}
			for i := range entries {
				entries[i].Status = string(models.LabourApproved)
				if err := tx.LabourEntries().Update(&entries[i]); err != nil {
					return err
				}
			}
			return nil
		},
		Deltas: s.ledgerDeltas(batch.ProjectID, entries, 1),
	}

	if err := s.mutator.Execute(mut); err != nil {
		return nil, err
	}

	s.scheduleCorrections(batch.ProjectID, entries)
	return batch, nil
}

// DeleteBatch cascades a soft delete to the batch's entries. Only draft
// batches qualify; drafts never posted to the ledger, so no reversal runs.
func (s *labourService) DeleteBatch(batchID, userID uint) error {
	batch, err := s.store.LabourBatches().GetByID(batchID)
	if err != nil {
		return &ledger.NotFoundError{Entity: "labour batch", ID: batchID}
	}
	if batch.Status != string(models.BatchDraft) {
		return &ledger.InvalidStateTransitionError{Entity: "labour batch", From: batch.Status, Action: "delete"}
	}

	entries, err := s.store.LabourEntries().GetByBatchID(batchID)
	if err != nil {
		return err
	}

	return s.mutator.Execute(&ledger.Mutation{
		Action:      "delete",
		EntityType:  "labour_batch",
		EntityID:    batch.ID,
		ProjectID:   batch.ProjectID,
		PerformedBy: userID,
		Before:      batch,
		Primary: func(tx repository.Store) error {
			for _, e := range entries {
				if err := tx.LabourEntries().Delete(e.ID); err != nil {
					return err
				}
			}
			return tx.LabourBatches().Delete(batch.ID)
		},
	})
}

func (s *labourService) GetBatch(batchID uint) (*models.LabourBatch, error) {
	batch, err := s.store.LabourBatches().GetByID(batchID)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "labour batch", ID: batchID}
	}
	return batch, nil
}

func (s *labourService) GetBatchesByProject(projectID uint) ([]models.LabourBatch, error) {
	return s.store.LabourBatches().GetByProjectID(projectID)
}

func (s *labourService) GetEntriesByBatch(batchID uint) ([]models.LabourEntry, error) {
	return s.store.LabourEntries().GetByBatchID(batchID)
}

func (s *labourService) UpdateEntry(entryID uint, input *UpdateEntryInput, userID uint) (*models.LabourEntry, error) {
	entry, err := s.store.LabourEntries().GetByID(entryID)
	if err != nil {
		return nil, &ledger.NotFoundError{Entity: "labour entry", ID: entryID}
	}
	if !entry.Editable() {
		return nil, &ledger.InvalidStateTransitionError{Entity: "labour entry", From: entry.Status, Action: "update"}
	}

	before := *entry
	oldCost := entry.TotalCost()

	totalHours := entry.TotalHours()
	overtime := entry.OvertimeHours
	if input.TotalHours != nil {
		totalHours = *input.TotalHours
		overtime = 0
	}
	if input.OvertimeHours != nil {
		overtime = *input.OvertimeHours
	}
	if input.HourlyRate != nil {
		entry.HourlyRate = *input.HourlyRate
	}
	if totalHours <= 0 || entry.HourlyRate <= 0 || overtime < 0 || overtime > totalHours {
		return nil, &ledger.ValidationError{Msg: "hours and hourly rate must be positive"}
	}

	entry.RegularHours, entry.OvertimeHours = splitHours(totalHours, overtime)
	entry.RegularCost, entry.OvertimeCost = labourCosts(entry.RegularHours, entry.OvertimeHours, entry.HourlyRate)

	// Only the difference is validated: the old cost is already counted in
	// the scope's current aggregates once the batch approves.
	diff := entry.TotalCost() - oldCost
	if err := s.validateEntryScope(entry, diff); err != nil {
		return nil, err
	}

	batch, err := s.store.LabourBatches().GetByID(entry.BatchID)
	if err != nil {
		return nil, err
	}
	batch.TotalCost += diff

	mut := &ledger.Mutation{
		Action:      "update",
		EntityType:  "labour_entry",
		EntityID:    entry.ID,
		ProjectID:   entry.ProjectID,
		PerformedBy: userID,
		Before:      before,
		After:       entry,
		Primary: func(tx repository.Store) error {
			if err := tx.LabourEntries().Update(entry); err != nil {
				return err
			}
			return tx.LabourBatches().Update(batch)
		},
		Records: []ledger.DeltaRecord{
			{Entity: "labour_entry", EntityID: entry.ID, Field: "total_cost", Amount: -oldCost},
			{Entity: "labour_entry", EntityID: entry.ID, Field: "total_cost", Amount: entry.TotalCost()},
		},
	}

	if err := s.mutator.Execute(mut); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry soft-deletes a draft or submitted entry. Drafts never posted,
// so there is nothing to reverse. Approved entries are refused outright:
// there is no ledger-reversal path for them, and silently skipping the
// reversal would corrupt the aggregates.
func (s *labourService) DeleteEntry(entryID, userID uint) error {
	entry, err := s.store.LabourEntries().GetByID(entryID)
	if err != nil {
		return &ledger.NotFoundError{Entity: "labour entry", ID: entryID}
	}
	if !entry.Editable() {
		return &ledger.InvalidStateTransitionError{Entity: "labour entry", From: entry.Status, Action: "delete"}
	}

	batch, err := s.store.LabourBatches().GetByID(entry.BatchID)
	if err != nil {
		return err
	}
	batch.TotalCost -= entry.TotalCost()
	batch.TotalEntries--

	return s.mutator.Execute(&ledger.Mutation{
		Action:      "delete",
		EntityType:  "labour_entry",
		EntityID:    entry.ID,
		ProjectID:   entry.ProjectID,
		PerformedBy: userID,
		Before:      entry,
		Primary: func(tx repository.Store) error {
			if err := tx.LabourEntries().Delete(entry.ID); err != nil {
				return err
			}
			return tx.LabourBatches().Update(batch)
		},
	})
}

func (s *labourService) buildEntries(input *CreateBatchInput) ([]models.LabourEntry, error) {
	if input.ProjectID == 0 {
		return nil, &ledger.ValidationError{Msg: "project_id is required"}
	}
	if len(input.LabourEntries) == 0 {
		return nil, &ledger.ValidationError{Msg: "labour_entries must not be empty"}
	}

	entries := make([]models.LabourEntry, 0, len(input.LabourEntries))
	for _, in := range input.LabourEntries {
		if in.WorkerName == "" {
			return nil, &ledger.ValidationError{Msg: "worker_name is required on every entry"}
		}
		if in.TotalHours <= 0 || in.HourlyRate <= 0 || in.OvertimeHours < 0 || in.OvertimeHours > in.TotalHours {
			return nil, &ledger.ValidationError{Msg: "hours and hourly rate must be positive"}
		}

		entry := models.LabourEntry{
			ProjectID:   input.ProjectID,
			WorkerName:  in.WorkerName,
			WorkDate:    in.WorkDate,
			WorkItemID:  in.WorkItemID,
			EquipmentID: in.EquipmentID,
			HourlyRate:  in.HourlyRate,
			CreatedBy:   input.CreatedBy,
		}
		entry.RegularHours, entry.OvertimeHours = splitHours(in.TotalHours, in.OvertimeHours)
		entry.RegularCost, entry.OvertimeCost = labourCosts(entry.RegularHours, entry.OvertimeHours, in.HourlyRate)

		// Scope is a tagged variant: direct labour carries a phase, indirect
		// labour a project-level category, never both.
		if input.IsIndirectLabour {
			categoryID := in.CategoryID
			if categoryID == nil {
				categoryID = input.DefaultCategoryID
			}
			if categoryID == nil {
				return nil, &ledger.ValidationError{Msg: "indirect labour requires a category_id"}
			}
			entry.Scope = models.LabourIndirect
			entry.CategoryID = categoryID
		} else {
			phaseID := in.PhaseID
			if phaseID == nil {
				phaseID = input.DefaultPhaseID
			}
			if phaseID == nil {
				return nil, &ledger.ValidationError{Msg: "direct labour requires a phase_id"}
			}
			entry.Scope = models.LabourDirect
			entry.PhaseID = phaseID
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func scopeTotals(entries []models.LabourEntry) (phaseTotals, categoryTotals map[uint]float64) {
	phaseTotals = map[uint]float64{}
	categoryTotals = map[uint]float64{}
	for _, e := range entries {
		if e.Scope == models.LabourIndirect && e.CategoryID != nil {
			categoryTotals[*e.CategoryID] += e.TotalCost()
		} else if e.PhaseID != nil {
			phaseTotals[*e.PhaseID] += e.TotalCost()
		}
	}
	return phaseTotals, categoryTotals
}

func batchTotal(entries []models.LabourEntry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.TotalCost()
	}
	return total
}

func (s *labourService) validateScopes(projectID uint, phaseTotals, categoryTotals map[uint]float64) error {
	for phaseID, cost := range phaseTotals {
		res, err := s.validator.ValidatePhaseSpend(phaseID, cost)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return ledger.CapitalError("phase", res)
		}
	}
	for categoryID, cost := range categoryTotals {
		res, err := s.validator.ValidateCategorySpend(categoryID, cost)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return ledger.CapitalError("indirect cost category", res)
		}
	}
	return nil
}

func (s *labourService) validateEntryScope(entry *models.LabourEntry, diff float64) error {
	if diff <= 0 {
		return nil
	}
	if entry.Scope == models.LabourIndirect && entry.CategoryID != nil {
		res, err := s.validator.ValidateCategorySpend(*entry.CategoryID, diff)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return ledger.CapitalError("indirect cost category", res)
		}
		return nil
	}
	if entry.PhaseID != nil {
		res, err := s.validator.ValidatePhaseSpend(*entry.PhaseID, diff)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return ledger.CapitalError("phase", res)
		}
	}
	return nil
}

// ledgerDeltas builds the rank-ordered writes that post a batch's entries to
// the ledger. sign is +1 to add.
func (s *labourService) ledgerDeltas(projectID uint, entries []models.LabourEntry, sign float64) []ledger.Delta {
	phaseTotals, categoryTotals := scopeTotals(entries)

	var deltas []ledger.Delta
	for phaseID, cost := range phaseTotals {
		deltas = append(deltas, ledger.PhaseSpendDelta(phaseID, sign*cost))
	}
	for categoryID, cost := range categoryTotals {
		deltas = append(deltas, ledger.CategorySpendDelta(categoryID, sign*cost))
	}

	directTotal, indirectTotal := 0.0, 0.0
	for _, e := range entries {
		if e.Scope == models.LabourIndirect {
			indirectTotal += e.TotalCost()
		} else {
			directTotal += e.TotalCost()
		}
	}
	if directTotal != 0 {
		deltas = append(deltas, ledger.ProjectLabourDelta(projectID, sign*directTotal))
	}
	if indirectTotal != 0 {
		deltas = append(deltas, ledger.ProjectIndirectDelta(projectID, sign*indirectTotal))
	}

	for _, e := range entries {
		if e.WorkItemID != nil {
			deltas = append(deltas, ledger.WorkItemProgressDelta(*e.WorkItemID, sign*e.TotalHours(), sign*e.TotalCost()))
		}
		if e.EquipmentID != nil {
			deltas = append(deltas, ledger.EquipmentHoursDelta(*e.EquipmentID, sign*e.TotalHours()))
		}
	}
	return deltas
}

// scheduleCorrections enqueues the post-commit reconciliation and derived
// field refreshes. Best effort only.
func (s *labourService) scheduleCorrections(projectID uint, entries []models.LabourEntry) {
	phaseTotals, categoryTotals := scopeTotals(entries)
	for phaseID := range phaseTotals {
		enqueue(s.queue, &redis.Task{Type: redis.TaskRecalculatePhase, TargetID: phaseID, ProjectID: projectID})
	}
	for categoryID := range categoryTotals {
		enqueue(s.queue, &redis.Task{Type: redis.TaskRecalculateCategory, TargetID: categoryID, ProjectID: projectID})
	}
	for _, e := range entries {
		if e.WorkItemID != nil {
			enqueue(s.queue, &redis.Task{Type: redis.TaskDeriveWorkItemStatus, TargetID: *e.WorkItemID, ProjectID: projectID})
		}
	}
	enqueue(s.queue, &redis.Task{Type: redis.TaskRecalculateProject, TargetID: projectID, ProjectID: projectID})
	enqueue(s.queue, &redis.Task{Type: redis.TaskRefreshCostSummary, TargetID: projectID, ProjectID: projectID})
}
