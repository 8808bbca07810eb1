package ledger

import (
	"errors"
	"fmt"

	"construction_manager/internal/repository"

	"gorm.io/gorm"
)

// ValidationResult reports whether a proposed cost delta fits the target
// scope. Available/Required are echoed back to the caller on rejection.
type ValidationResult struct {
	IsValid   bool    `json:"is_valid"`
	Available float64 `json:"available"`
	Required  float64 `json:"required"`
	Message   string  `json:"message"`
}

// Validator answers affordability questions without mutating anything. When a
// record's cost is set for the first time the full proposed cost must be
// checked; when editing, only the difference (new minus old), because the old
// amount is already counted in the current aggregates.
type Validator struct {
	store repository.Store
}

func NewValidator(store repository.Store) *Validator {
	return &Validator{store: store}
}

// ValidatePhaseSpend checks a direct-labour or work-item cost delta against a
// phase's remaining allocation.
func (v *Validator) ValidatePhaseSpend(phaseID uint, delta float64) (*ValidationResult, error) {
	phase, err := v.store.Phases().GetByID(phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "phase", ID: phaseID}
		}
		return nil, err
	}
	return result(phase.Remaining(), delta), nil
}

// ValidateCategorySpend checks an indirect cost delta against a project-level
// category's remaining allocation.
func (v *Validator) ValidateCategorySpend(categoryID uint, delta float64) (*ValidationResult, error) {
	category, err := v.store.IndirectCategories().GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "indirect cost category", ID: categoryID}
		}
		return nil, err
	}
	return result(category.Remaining(), delta), nil
}

// ValidateProjectCapital checks a capital commitment against the project's
// remaining balance: budget minus committed minus actual.
func (v *Validator) ValidateProjectCapital(projectID uint, delta float64) (*ValidationResult, error) {
	project, err := v.store.Projects().GetByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "project", ID: projectID}
		}
		return nil, err
	}
	return result(project.CapitalBalance(), delta), nil
}

func result(available, required float64) *ValidationResult {
	r := &ValidationResult{
		IsValid:   required <= available,
		Available: available,
		Required:  required,
	}
	if r.IsValid {
		r.Message = "sufficient funds"
	} else {
		r.Message = fmt.Sprintf("Available: %.2f, Required: %.2f", available, required)
	}
	return r
}

// CapitalError converts a failed validation into the typed error callers
// surface to the client.
func CapitalError(scope string, r *ValidationResult) error {
	return &InsufficientCapitalError{
		Scope:     scope,
		Available: r.Available,
		Required:  r.Required,
	}
}
