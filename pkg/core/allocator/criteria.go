package allocator

import "github.com/pibshift/pibshift/pkg/core/model"

// SlotValidationError represents a problem found in a finished schedule
type SlotValidationError struct {
	Date          string         `json:"date"`
	Identity      model.Identity `json:"identity"`
	CriterionName string         `json:"criterion"`
	Description   string         `json:"description"`

	// Warning marks documented exceptions (such as pair-rule placements over the
	// shift cap) that do not fail the run
	Warning bool `json:"warning"`
}

// Criterion defines an eligibility rule applied to every role pool before slot filling
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsEligible reports whether the identity may still be placed on the given date.
	// Returning false acts as a veto: the identity is removed from every pool that day.
	IsEligible(state *RunState, identity model.Identity, date string) bool

	// ValidateSchedule checks the finished schedule against this criterion.
	// Returns an empty slice when the schedule satisfies it.
	ValidateSchedule(state *RunState) []SlotValidationError
}

// FilterPool returns the identities of pool that every criterion accepts for date
func FilterPool(state *RunState, pool []model.Identity, date string, criteria []Criterion) []model.Identity {
	filtered := make([]model.Identity, 0, len(pool))
	for _, id := range pool {
		if IsEligible(state, id, date, criteria) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// IsEligible runs all criteria for one identity
func IsEligible(state *RunState, id model.Identity, date string, criteria []Criterion) bool {
	for _, criterion := range criteria {
		if !criterion.IsEligible(state, id, date) {
			return false
		}
	}
	return true
}
