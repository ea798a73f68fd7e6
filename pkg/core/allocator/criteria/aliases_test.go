package criteria

import (
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// Type aliases for test readability - shared across all criterion tests
type (
	RunState       = allocator.RunState
	AssignmentSlot = model.AssignmentSlot
	Identity       = model.Identity
)

// stateWith builds a run state with the given shift counts and assigned dates
func stateWith(counts map[Identity]int, dates map[Identity][]string, slots []AssignmentSlot) *RunState {
	if counts == nil {
		counts = map[Identity]int{}
	}
	if dates == nil {
		dates = map[Identity][]string{}
	}
	return &RunState{
		ShiftCounts:   counts,
		AssignedDates: dates,
		Slots:         slots,
	}
}
