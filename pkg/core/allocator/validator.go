package allocator

import (
	"fmt"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// ValidateSchedule validates the final run state against all provided criteria
// plus the core invariants every schedule must hold.
// An empty slice indicates the schedule is valid.
func ValidateSchedule(state *RunState, criteria []Criterion) []SlotValidationError {
	errors := validateCoreInvariants(state)

	for _, criterion := range criteria {
		errors = append(errors, criterion.ValidateSchedule(state)...)
	}

	return errors
}

// validateCoreInvariants checks slot completeness and same-date double booking
func validateCoreInvariants(state *RunState) []SlotValidationError {
	var errors []SlotValidationError

	type dateRole struct {
		date string
		role string
	}
	counts := make(map[dateRole]int)
	for _, slot := range state.Slots {
		counts[dateRole{slot.Date, slot.RoleKey}]++
	}

	for _, day := range state.Days {
		for _, role := range state.Roles {
			got := counts[dateRole{day.Date, role.Key}]
			if got != role.Slots {
				errors = append(errors, SlotValidationError{
					Date:          day.Date,
					Identity:      model.Unassigned,
					CriterionName: "CoreInvariant",
					Description:   fmt.Sprintf("role %s has %d slots but needs %d", role.Key, got, role.Slots),
				})
			}
		}
	}

	for _, conflict := range DetectConflicts(state.Slots) {
		errors = append(errors, SlotValidationError{
			Date:          conflict.Date,
			Identity:      conflict.Identity,
			CriterionName: "CoreInvariant",
			Description:   fmt.Sprintf("%s is booked more than once", conflict.Identity),
		})
	}

	return errors
}
