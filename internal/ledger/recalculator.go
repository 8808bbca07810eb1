package ledger

import (
	"construction_manager/internal/models"
	"construction_manager/internal/repository"
)

// Recalculator rebuilds cached aggregates from source records: posted labour
// entries, committed purchase orders, indirect entries. It corrects drift the
// fixed-order delta pipeline can accumulate under concurrent writes and from
// float arithmetic. Every routine is idempotent: the result depends only on
// the source records, never on the aggregate's previous value.
type Recalculator struct {
	store repository.Store
}

func NewRecalculator(store repository.Store) *Recalculator {
	return &Recalculator{store: store}
}

// RecalculatePhase overwrites a phase's actual spending with the sum of its
// non-deleted posted labour entries and committed purchase orders.
func (r *Recalculator) RecalculatePhase(phaseID uint) error {
	return r.store.Transaction(func(tx repository.Store) error {
		phase, err := tx.Phases().GetByID(phaseID)
		if err != nil {
			return err
		}

		entries, err := tx.LabourEntries().GetPostedByPhaseID(phaseID)
		if err != nil {
			return err
		}
		orders, err := tx.PurchaseOrders().GetCommittedByPhaseID(phaseID)
		if err != nil {
			return err
		}

		total := 0.0
		for _, e := range entries {
			total += e.TotalCost()
		}
		for _, o := range orders {
			total += o.TotalCost
		}

		phase.ActualSpending = total
		return tx.Phases().Update(phase)
	})
}

// RecalculateCategory overwrites an indirect category's actual spending with
// the sum of its non-deleted posted labour entries.
func (r *Recalculator) RecalculateCategory(categoryID uint) error {
	return r.store.Transaction(func(tx repository.Store) error {
		category, err := tx.IndirectCategories().GetByID(categoryID)
		if err != nil {
			return err
		}

		entries, err := tx.LabourEntries().GetPostedByCategoryID(categoryID)
		if err != nil {
			return err
		}

		total := 0.0
		for _, e := range entries {
			total += e.TotalCost()
		}

		category.ActualSpending = total
		return tx.IndirectCategories().Update(category)
	})
}

// RecalculateWorkItem overwrites a work item's accumulated hours and cost
// with the sums of its non-deleted posted labour entries.
func (r *Recalculator) RecalculateWorkItem(workItemID uint) error {
	return r.store.Transaction(func(tx repository.Store) error {
		item, err := tx.WorkItems().GetByID(workItemID)
		if err != nil {
			return err
		}

		entries, err := tx.LabourEntries().GetPostedByPhaseID(item.PhaseID)
		if err != nil {
			return err
		}

		hours, cost := 0.0, 0.0
		for _, e := range entries {
			if e.WorkItemID != nil && *e.WorkItemID == workItemID {
				hours += e.TotalHours()
				cost += e.TotalCost()
			}
		}

		item.ActualHours = hours
		item.ActualCost = cost
		return tx.WorkItems().Update(item)
	})
}

// RecalculateProject overwrites the project-level aggregates: labour and
// indirect spend from posted entries, materials spend from delivered orders,
// committed cost from accepted-but-undelivered orders.
func (r *Recalculator) RecalculateProject(projectID uint) error {
	return r.store.Transaction(func(tx repository.Store) error {
		project, err := tx.Projects().GetByID(projectID)
		if err != nil {
			return err
		}

		entries, err := tx.LabourEntries().GetPostedByProjectID(projectID)
		if err != nil {
			return err
		}
		labour, indirect := 0.0, 0.0
		for _, e := range entries {
			if e.Scope == models.LabourIndirect {
				indirect += e.TotalCost()
			} else {
				labour += e.TotalCost()
			}
		}

		orders, err := tx.PurchaseOrders().GetCommittedByProjectID(projectID)
		if err != nil {
			return err
		}
		committed, materials := 0.0, 0.0
		for _, o := range orders {
			if o.Status == string(models.Delivered) {
				materials += o.TotalCost
			} else {
				committed += o.TotalCost
			}
		}

		project.ActualLabourCost = labour
		project.ActualIndirectCost = indirect
		project.ActualMaterialsCost = materials
		project.CommittedCost = committed
		return tx.Projects().Update(project)
	})
}
