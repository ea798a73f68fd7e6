package criteria

import (
	"fmt"
	"slices"

	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// ShiftCapCriterion limits how many dates one person serves in a run.
//
// Validity:
//   - Returns false once the identity has been assigned on MaxShifts dates
//   - Serving several roles on one date still counts as a single shift
//
// Validation:
//   - Reports every identity assigned on more than MaxShifts dates
//   - Identities pushed over the cap by a pair rule are reported as warnings
type ShiftCapCriterion struct {
	MaxShifts int
}

// NewShiftCapCriterion creates a new ShiftCapCriterion
func NewShiftCapCriterion(maxShifts int) *ShiftCapCriterion {
	return &ShiftCapCriterion{MaxShifts: maxShifts}
}

func (c *ShiftCapCriterion) Name() string {
	return "ShiftCap"
}

func (c *ShiftCapCriterion) IsEligible(state *allocator.RunState, identity model.Identity, date string) bool {
	return state.ShiftCounts[identity] < c.MaxShifts
}

func (c *ShiftCapCriterion) ValidateSchedule(state *allocator.RunState) []allocator.SlotValidationError {
	var errors []allocator.SlotValidationError

	dates := make(map[model.Identity][]string)
	preassigned := make(map[model.Identity]bool)
	var order []model.Identity
	for _, slot := range state.Slots {
		if slot.Assignee.IsUnassigned() {
			continue
		}
		if _, seen := dates[slot.Assignee]; !seen {
			order = append(order, slot.Assignee)
		}
		if !slices.Contains(dates[slot.Assignee], slot.Date) {
			dates[slot.Assignee] = append(dates[slot.Assignee], slot.Date)
		}
		if slot.Preassigned {
			preassigned[slot.Assignee] = true
		}
	}

	for _, identity := range order {
		served := dates[identity]
		if len(served) <= c.MaxShifts {
			continue
		}
		errors = append(errors, allocator.SlotValidationError{
			Date:          served[len(served)-1],
			Identity:      identity,
			CriterionName: c.Name(),
			Description:   fmt.Sprintf("%s serves %d dates (max %d)", identity, len(served), c.MaxShifts),
			Warning:       preassigned[identity],
		})
	}

	return errors
}
