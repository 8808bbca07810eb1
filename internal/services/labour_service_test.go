package services

import (
	"testing"
	"time"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHours(t *testing.T) {
	tests := []struct {
		name             string
		total, explicit  float64
		regular, overtime float64
	}{
		{"under the cutoff", 6, 0, 6, 0},
		{"exactly the cutoff", 8, 0, 8, 0},
		{"past the cutoff", 10, 0, 8, 2},
		{"explicit overtime wins", 10, 4, 6, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regular, overtime := splitHours(tt.total, tt.explicit)
			assert.Equal(t, tt.regular, regular)
			assert.Equal(t, tt.overtime, overtime)
		})
	}
}

func TestLabourCosts(t *testing.T) {
	regular, overtime := labourCosts(8, 2, 100)
	assert.Equal(t, 800.0, regular)
	assert.Equal(t, 300.0, overtime) // 2h at 1.5x
}

func TestCreateBatchComputesOvertimeSplit(t *testing.T) {
	f := newFixture(t, 100000, 50000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 10, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.BatchDraft), batch.Status)
	assert.Equal(t, 1100.0, batch.TotalCost) // 8*100 + 2*100*1.5

	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 8.0, entries[0].RegularHours)
	assert.Equal(t, 2.0, entries[0].OvertimeHours)
	assert.Equal(t, 800.0, entries[0].RegularCost)
	assert.Equal(t, 300.0, entries[0].OvertimeCost)
	assert.Equal(t, string(models.LabourDraft), entries[0].Status)

	// Drafts never post to the ledger.
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)
	assert.Equal(t, 0.0, f.reloadProject(t).ActualLabourCost)
}

func TestCreateBatchAutoApprovePostsLedger(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		AutoApprove:    true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 11875},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.BatchApproved), batch.Status)
	assert.Equal(t, 95000.0, batch.TotalCost)

	assert.Equal(t, 95000.0, f.reloadPhase(t).ActualSpending)
	assert.Equal(t, 95000.0, f.reloadProject(t).ActualLabourCost)

	seen := f.queue.typesSeen()
	assert.Equal(t, 1, seen[redis.TaskRecalculatePhase])
	assert.Equal(t, 1, seen[redis.TaskRecalculateProject])
	assert.Equal(t, 1, seen[redis.TaskRefreshCostSummary])
}

func TestCreateBatchRejectedWhenPhaseCannotAfford(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	// Consume 95000 of the phase allocation.
	_, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		AutoApprove:    true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 11875},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)

	// 10000 against the remaining 5000 is refused before anything is written.
	_, err = svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		AutoApprove:    true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Budi", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 1250},
		},
		CreatedBy: f.worker.ID,
	})

	var capErr *ledger.InsufficientCapitalError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 5000.0, capErr.Available)
	assert.Equal(t, 10000.0, capErr.Required)

	assert.Equal(t, 95000.0, f.reloadPhase(t).ActualSpending)
	batches, err := svc.GetBatchesByProject(f.project.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestCreateBatchIndirectPostsToCategory(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	_, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:         f.project.ID,
		DefaultCategoryID: uintPtr(f.category.ID),
		IsIndirectLabour:  true,
		AutoApprove:       true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Dedi", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 800.0, f.reloadCategory(t).ActualSpending)
	project := f.reloadProject(t)
	assert.Equal(t, 800.0, project.ActualIndirectCost)
	assert.Equal(t, 0.0, project.ActualLabourCost)
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)
}

func TestCreateBatchIndirectRequiresCategory(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	_, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:        f.project.ID,
		IsIndirectLabour: true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Dedi", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})

	var valErr *ledger.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSubmitBatchMarksEntriesWithoutPosting(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)

	submitted, err := svc.SubmitBatch(batch.ID, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BatchDraft), submitted.Status)

	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.LabourSubmitted), entries[0].Status)
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)

	// Submitted entries stay editable.
	updated, err := svc.UpdateEntry(entries[0].ID, &UpdateEntryInput{HourlyRate: floatPtr(50)}, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.TotalCost())

	// Approval is what posts the batch.
	_, err = svc.ApproveBatch(batch.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, f.reloadPhase(t).ActualSpending)

	_, err = svc.SubmitBatch(batch.ID, f.worker.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
}

func TestApproveBatchPostsOnce(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.reloadPhase(t).ActualSpending)

	approved, err := svc.ApproveBatch(batch.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BatchApproved), approved.Status)
	assert.Equal(t, 800.0, f.reloadPhase(t).ActualSpending)

	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.LabourApproved), entries[0].Status)

	// A second approval must not double-post.
	_, err = svc.ApproveBatch(batch.ID, f.owner.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 800.0, f.reloadPhase(t).ActualSpending)
}

func TestDeleteBatchDraftCascades(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
			{WorkerName: "Budi", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBatch(batch.ID, f.worker.ID))

	_, err = svc.GetBatch(batch.ID)
	assert.Error(t, err)
	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteBatchApprovedRefused(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		AutoApprove:    true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteBatch(batch.ID, f.owner.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
}

func TestUpdateEntryValidatesDifferenceOnly(t *testing.T) {
	f := newFixture(t, 200000, 850, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)
	entry := entries[0]

	// 800 -> 2000 is a +1200 difference against 850 remaining: refused.
	_, err = svc.UpdateEntry(entry.ID, &UpdateEntryInput{HourlyRate: floatPtr(250)}, f.worker.ID)
	var capErr *ledger.InsufficientCapitalError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1200.0, capErr.Required)

	// Lowering the cost is always allowed.
	updated, err := svc.UpdateEntry(entry.ID, &UpdateEntryInput{HourlyRate: floatPtr(50)}, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.TotalCost())

	got, err := svc.GetBatch(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.TotalCost)
}

func TestUpdateEntryApprovedRefused(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		AutoApprove:    true,
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)

	_, err = svc.UpdateEntry(entries[0].ID, &UpdateEntryInput{HourlyRate: floatPtr(50)}, f.owner.ID)
	var stateErr *ledger.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)

	err = svc.DeleteEntry(entries[0].ID, f.owner.ID)
	require.ErrorAs(t, err, &stateErr)
}

func TestDeleteEntryDraftAdjustsBatch(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
			{WorkerName: "Budi", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 200},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	entries, err := svc.GetEntriesByBatch(batch.ID)
	require.NoError(t, err)

	var target models.LabourEntry
	for _, e := range entries {
		if e.WorkerName == "Budi" {
			target = e
		}
	}
	require.NoError(t, svc.DeleteEntry(target.ID, f.worker.ID))

	got, err := svc.GetBatch(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 800.0, got.TotalCost)
	assert.Equal(t, 1, got.TotalEntries)
}

func TestLabourMutationsLandInAudit(t *testing.T) {
	f := newFixture(t, 200000, 100000, 10000)
	svc := NewLabourService(f.store, f.queue)

	batch, err := svc.CreateBatch(&CreateBatchInput{
		ProjectID:      f.project.ID,
		DefaultPhaseID: uintPtr(f.phase.ID),
		LabourEntries: []LabourEntryInput{
			{WorkerName: "Amir", WorkDate: time.Now(), TotalHours: 8, HourlyRate: 100},
		},
		CreatedBy: f.worker.ID,
	})
	require.NoError(t, err)
	_, err = svc.ApproveBatch(batch.ID, f.owner.ID)
	require.NoError(t, err)

	audits, err := f.store.AuditLogs().GetByProjectID(f.project.ID, 0)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, "create", audits[0].Action)
	assert.Equal(t, batch.ID, audits[0].EntityID)
	assert.Equal(t, "approve", audits[1].Action)
	assert.Equal(t, f.owner.ID, audits[1].PerformedBy)
}
