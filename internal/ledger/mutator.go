package ledger

import (
	"encoding/json"
	"sort"

	"construction_manager/internal/models"
	"construction_manager/internal/repository"
)

// Entity ranks fix the traversal order of ledger writes inside one
// transaction. Two concurrent transactions touching overlapping entities
// always acquire row locks in the same order, so they cannot deadlock.
const (
	RankEntry = iota
	RankPhase
	RankProject
	RankWorkItem
	RankEquipment
)

// DeltaRecord is the numeric trace of one ledger write, stored in the audit
// entry alongside the before/after snapshots.
type DeltaRecord struct {
	Entity   string  `json:"entity"`
	EntityID uint    `json:"entity_id"`
	Field    string  `json:"field"`
	Amount   float64 `json:"amount"` // signed: positive adds, negative subtracts
}

// Delta is one rank-ordered ledger write within a mutation.
type Delta struct {
	Rank   int
	Record DeltaRecord
	Apply  func(tx repository.Store) error
}

// Mutation describes one atomic financial change: the primary record write,
// the ledger deltas it implies, and the audit metadata. The Primary callback
// may fill EntityID and After once the record exists.
type Mutation struct {
	Action      string
	EntityType  string
	EntityID    uint
	ProjectID   uint
	PerformedBy uint
	Before      interface{}
	After       interface{}
	Primary     func(tx repository.Store) error
	Deltas      []Delta

	// Records are audit-only cost traces for changes the Primary write
	// already carries, so no ledger write of their own runs.
	Records []DeltaRecord
}

// Mutator executes mutations as a single all-or-nothing unit: primary record
// first, then every delta in ascending rank order, then one audit entry. Any
// failure rolls the whole pipeline back.
type Mutator struct {
	store repository.Store
}

func NewMutator(store repository.Store) *Mutator {
	return &Mutator{store: store}
}

func (m *Mutator) Execute(mut *Mutation) error {
	err := m.store.Transaction(func(tx repository.Store) error {
		if mut.Primary != nil {
			if err := mut.Primary(tx); err != nil {
				return err
			}
		}

		sort.SliceStable(mut.Deltas, func(i, j int) bool {
			return mut.Deltas[i].Rank < mut.Deltas[j].Rank
		})
		for _, d := range mut.Deltas {
			if err := d.Apply(tx); err != nil {
				return err
			}
		}

		return tx.AuditLogs().Create(m.auditEntry(mut))
	})
	if err != nil {
		return &TransactionFailure{Op: mut.Action + " " + mut.EntityType, Err: err}
	}
	return nil
}

func (m *Mutator) auditEntry(mut *Mutation) *models.AuditLog {
	records := make([]DeltaRecord, 0, len(mut.Records)+len(mut.Deltas))
	records = append(records, mut.Records...)
	for _, d := range mut.Deltas {
		records = append(records, d.Record)
	}
	return &models.AuditLog{
		Action:      mut.Action,
		EntityType:  mut.EntityType,
		EntityID:    mut.EntityID,
		ProjectID:   mut.ProjectID,
		PerformedBy: mut.PerformedBy,
		BeforeState: marshal(mut.Before),
		AfterState:  marshal(mut.After),
		Deltas:      marshal(records),
	}
}

func marshal(v interface{}) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// PhaseSpendDelta adds a signed amount to a phase's actual spending.
func PhaseSpendDelta(phaseID uint, amount float64) Delta {
	return Delta{
		Rank:   RankPhase,
		Record: DeltaRecord{Entity: "phase", EntityID: phaseID, Field: "actual_spending", Amount: amount},
		Apply: func(tx repository.Store) error {
			phase, err := tx.Phases().GetByID(phaseID)
			if err != nil {
				return err
			}
			phase.ActualSpending += amount
			return tx.Phases().Update(phase)
		},
	}
}

// CategorySpendDelta adds a signed amount to an indirect category's actual
// spending. Categories mutate at phase rank: both sit directly under the
// project in the hierarchy and never appear in the same mutation.
func CategorySpendDelta(categoryID uint, amount float64) Delta {
	return Delta{
		Rank:   RankPhase,
		Record: DeltaRecord{Entity: "indirect_category", EntityID: categoryID, Field: "actual_spending", Amount: amount},
		Apply: func(tx repository.Store) error {
			category, err := tx.IndirectCategories().GetByID(categoryID)
			if err != nil {
				return err
			}
			category.ActualSpending += amount
			return tx.IndirectCategories().Update(category)
		},
	}
}

func projectDelta(projectID uint, field string, amount float64, apply func(p *models.Project)) Delta {
	return Delta{
		Rank:   RankProject,
		Record: DeltaRecord{Entity: "project", EntityID: projectID, Field: field, Amount: amount},
		Apply: func(tx repository.Store) error {
			project, err := tx.Projects().GetByID(projectID)
			if err != nil {
				return err
			}
			apply(project)
			return tx.Projects().Update(project)
		},
	}
}

// ProjectLabourDelta adds a signed amount to the project's realized labour
// spend.
func ProjectLabourDelta(projectID uint, amount float64) Delta {
	return projectDelta(projectID, "actual_labour_cost", amount, func(p *models.Project) {
		p.ActualLabourCost += amount
	})
}

// ProjectIndirectDelta adds a signed amount to the project's realized
// indirect spend.
func ProjectIndirectDelta(projectID uint, amount float64) Delta {
	return projectDelta(projectID, "actual_indirect_cost", amount, func(p *models.Project) {
		p.ActualIndirectCost += amount
	})
}

// ProjectMaterialsDelta adds a signed amount to the project's realized
// materials spend.
func ProjectMaterialsDelta(projectID uint, amount float64) Delta {
	return projectDelta(projectID, "actual_materials_cost", amount, func(p *models.Project) {
		p.ActualMaterialsCost += amount
	})
}

// ProjectCommittedDelta adds a signed amount to the project's committed cost.
func ProjectCommittedDelta(projectID uint, amount float64) Delta {
	return projectDelta(projectID, "committed_cost", amount, func(p *models.Project) {
		p.CommittedCost += amount
	})
}

// WorkItemProgressDelta accumulates hours and cost onto a work item. Status
// derivation from the new completion ratio is deliberately not done here; the
// background worker picks it up.
func WorkItemProgressDelta(workItemID uint, hours, cost float64) Delta {
	return Delta{
		Rank:   RankWorkItem,
		Record: DeltaRecord{Entity: "work_item", EntityID: workItemID, Field: "actual_cost", Amount: cost},
		Apply: func(tx repository.Store) error {
			item, err := tx.WorkItems().GetByID(workItemID)
			if err != nil {
				return err
			}
			item.ActualHours += hours
			item.ActualCost += cost
			return tx.WorkItems().Update(item)
		},
	}
}

// EquipmentHoursDelta accumulates operator hours onto an equipment record.
func EquipmentHoursDelta(equipmentID uint, hours float64) Delta {
	return Delta{
		Rank:   RankEquipment,
		Record: DeltaRecord{Entity: "equipment", EntityID: equipmentID, Field: "operator_hours", Amount: hours},
		Apply: func(tx repository.Store) error {
			equipment, err := tx.Equipment().GetByID(equipmentID)
			if err != nil {
				return err
			}
			equipment.OperatorHours += hours
			return tx.Equipment().Update(equipment)
		},
	}
}
