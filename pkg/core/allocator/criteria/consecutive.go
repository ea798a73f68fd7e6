package criteria

import (
	"fmt"
	"slices"

	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// ConsecutiveDaysCriterion keeps people from serving long runs of back-to-back days.
//
// Validity:
//   - Returns false if adding the date would give the identity a run of more
//     than MaxRun calendar consecutive days
//   - Labels without a parsable day/month are ignored in the run computation
//   - Labels carry no year, so 31/12 followed by 01/01 is not a run
type ConsecutiveDaysCriterion struct {
	MaxRun int
}

// NewConsecutiveDaysCriterion creates a new ConsecutiveDaysCriterion
func NewConsecutiveDaysCriterion(maxRun int) *ConsecutiveDaysCriterion {
	return &ConsecutiveDaysCriterion{MaxRun: maxRun}
}

func (c *ConsecutiveDaysCriterion) Name() string {
	return "ConsecutiveDays"
}

func (c *ConsecutiveDaysCriterion) IsEligible(state *allocator.RunState, identity model.Identity, date string) bool {
	labels := append(slices.Clone(state.AssignedDates[identity]), date)
	return allocator.LongestConsecutiveRun(allocator.ParseLabels(labels)) <= c.MaxRun
}

func (c *ConsecutiveDaysCriterion) ValidateSchedule(state *allocator.RunState) []allocator.SlotValidationError {
	var errors []allocator.SlotValidationError

	worked := make(map[model.Identity][]string)
	var order []model.Identity
	for _, slot := range state.Slots {
		if slot.Assignee.IsUnassigned() {
			continue
		}
		if _, seen := worked[slot.Assignee]; !seen {
			order = append(order, slot.Assignee)
		}
		worked[slot.Assignee] = append(worked[slot.Assignee], slot.Date)
	}

	for _, identity := range order {
		labels := worked[identity]
		run := allocator.LongestConsecutiveRun(allocator.ParseLabels(labels))
		if run <= c.MaxRun {
			continue
		}
		errors = append(errors, allocator.SlotValidationError{
			Date:          labels[len(labels)-1],
			Identity:      identity,
			CriterionName: c.Name(),
			Description:   fmt.Sprintf("%s serves %d consecutive days (max %d)", identity, run, c.MaxRun),
		})
	}

	return errors
}
