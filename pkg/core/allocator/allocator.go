package allocator

import (
	"fmt"
	"slices"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// AllocationConfig contains the configuration for an allocation run
type AllocationConfig struct {
	// Table is the normalized availability spreadsheet
	Table *model.AvailabilityTable

	// Roles to fill on every date, in iteration order
	Roles []model.RoleDefinition

	// Normalizer resolves raw names to identities (nil means no aliases)
	Normalizer *Normalizer

	// Criteria filter every role pool before pair rules and slot filling
	Criteria []Criterion

	// PairRules are resolved per date after filtering
	PairRules []PairRule

	// PoolOrder breaks ties inside a pool (default PoolOrderName)
	PoolOrder PoolOrder
}

// AllocationOutcome represents the result of an allocation run
type AllocationOutcome struct {
	// State is the final run state after allocation
	State *RunState

	// Schedule holds every slot in date, role and slot order
	Schedule *model.Schedule

	// DayPools lists who was eligible for each role per date
	DayPools []DayPoolReport

	// Conflicts are same-date double bookings (empty for a generated schedule)
	Conflicts []model.Conflict

	// PairPlacements is the number of slots filled by pair rules
	PairPlacements int

	// ValidationErrors contains any validation errors found in the final state
	ValidationErrors []SlotValidationError

	// Success is true when validation found no errors (warnings allowed)
	Success bool
}

// ShiftCounts returns how many dates each identity serves
func (o *AllocationOutcome) ShiftCounts() map[model.Identity]int {
	return o.State.ShiftCounts
}

// UnassignedCount returns the number of slots nobody could fill
func (o *AllocationOutcome) UnassignedCount() int {
	count := 0
	for _, slot := range o.Schedule.Slots {
		if slot.Assignee.IsUnassigned() {
			count++
		}
	}
	return count
}

// Restrict returns the outcome as seen through a subset of roles. The run
// itself is not repeated: every configured role was allocated, and slots,
// pools and conflicts of the other roles are hidden. Validation findings and
// shift counts still describe the whole run.
func (o *AllocationOutcome) Restrict(roleKeys []string) *AllocationOutcome {
	visible := func(key string) bool {
		return slices.Contains(roleKeys, key)
	}

	schedule := &model.Schedule{
		RunID: o.Schedule.RunID,
		Dates: slices.Clone(o.Schedule.Dates),
		Slots: []model.AssignmentSlot{},
	}
	pairPlacements := 0
	for _, slot := range o.Schedule.Slots {
		if !visible(slot.RoleKey) {
			continue
		}
		schedule.Slots = append(schedule.Slots, slot)
		if slot.Preassigned {
			pairPlacements++
		}
	}

	reports := make([]DayPoolReport, 0, len(o.DayPools))
	for _, report := range o.DayPools {
		restricted := DayPoolReport{Date: report.Date, Pools: []RolePool{}}
		for _, pool := range report.Pools {
			if visible(pool.Role) {
				restricted.Pools = append(restricted.Pools, pool)
			}
		}
		reports = append(reports, restricted)
	}

	return &AllocationOutcome{
		State:            o.State,
		Schedule:         schedule,
		DayPools:         reports,
		Conflicts:        DetectConflicts(schedule.Slots),
		PairPlacements:   pairPlacements,
		ValidationErrors: o.ValidationErrors,
		Success:          o.Success,
	}
}

// Allocate runs the greedy allocation loop over the table's dates in column order
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	if err := checkConfig(config); err != nil {
		return nil, err
	}

	normalizer := config.Normalizer
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}

	state := newRunState(config.Roles)
	var reports []DayPoolReport
	pairPlacements := 0

	for _, date := range config.Table.DateLabels {
		day := newDayState(date)

		// Build and filter pools
		for _, role := range config.Roles {
			var ids []model.Identity
			for _, raw := range AvailablePeople(config.Table, date, role) {
				ids = append(ids, normalizer.Normalize(raw))
			}
			raw := orderPool(ids, config.PoolOrder)
			day.RawPools[role.Key] = raw
			day.Pools[role.Key] = FilterPool(state, raw, date, config.Criteria)
		}

		pairPlacements += ResolvePairs(day, config.PairRules, config.Roles)
		reports = append(reports, reportPools(day, config.Roles))

		state.Slots = append(state.Slots, fillSlots(day, config.Roles)...)

		// Counters move once per identity per date
		used := make([]model.Identity, 0, len(day.Used))
		for id := range day.Used {
			used = append(used, id)
		}
		slices.Sort(used)
		for _, id := range used {
			state.ShiftCounts[id]++
			state.AssignedDates[id] = append(state.AssignedDates[id], date)
		}

		state.Days = append(state.Days, day)
	}

	return buildOutcome(state, config, reports, pairPlacements), nil
}

func checkConfig(config AllocationConfig) error {
	if config.Table == nil {
		return fmt.Errorf("availability table is required")
	}
	if len(config.Roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}
	seen := make(map[string]bool, len(config.Roles))
	keys := make([]string, 0, len(config.Roles))
	for _, role := range config.Roles {
		if role.Key == "" {
			return fmt.Errorf("role key is required")
		}
		if role.Slots < 1 {
			return fmt.Errorf("role %s: slots must be at least 1, got %d", role.Key, role.Slots)
		}
		if seen[role.Key] {
			return fmt.Errorf("duplicate role key %s", role.Key)
		}
		seen[role.Key] = true
		keys = append(keys, role.Key)
	}
	for _, rule := range config.PairRules {
		if err := rule.Check(keys); err != nil {
			return err
		}
	}
	if config.PoolOrder != "" && config.PoolOrder != PoolOrderName && config.PoolOrder != PoolOrderTable {
		return fmt.Errorf("unknown pool order %q", config.PoolOrder)
	}
	return nil
}

// fillSlots fills every role of the day: preallocations first, then the first
// unused identity of the pool for each remaining slot
func fillSlots(day *DayState, roles []model.RoleDefinition) []model.AssignmentSlot {
	var slots []model.AssignmentSlot

	for _, role := range roles {
		preallocated := day.Preallocated[role.Key]
		for i, p := range preallocated {
			slots = append(slots, model.AssignmentSlot{
				Date:        day.Date,
				RoleKey:     role.Key,
				RoleDisplay: role.SlotLabel(i),
				SlotIndex:   i,
				Assignee:    p.identity,
				Preassigned: true,
				PairRule:    p.rule,
			})
		}

		for i := len(preallocated); i < role.Slots; i++ {
			assignee := model.Unassigned
			for _, candidate := range day.Pools[role.Key] {
				if !day.Used[candidate] {
					assignee = candidate
					break
				}
			}
			if !assignee.IsUnassigned() {
				day.Used[assignee] = true
				day.Pools[role.Key] = removeIdentity(day.Pools[role.Key], assignee)
			}

			slots = append(slots, model.AssignmentSlot{
				Date:        day.Date,
				RoleKey:     role.Key,
				RoleDisplay: role.SlotLabel(i),
				SlotIndex:   i,
				Assignee:    assignee,
			})
		}
	}

	return slots
}

// reportPools snapshots the day's filtered pools before slot filling
func reportPools(day *DayState, roles []model.RoleDefinition) DayPoolReport {
	report := DayPoolReport{Date: day.Date, Pools: make([]RolePool, 0, len(roles))}
	for _, role := range roles {
		report.Pools = append(report.Pools, RolePool{
			Role:       role.Key,
			Identities: slices.Clone(day.Pools[role.Key]),
		})
	}
	return report
}

// buildOutcome creates the final allocation outcome report
func buildOutcome(state *RunState, config AllocationConfig, reports []DayPoolReport, pairPlacements int) *AllocationOutcome {
	schedule := &model.Schedule{
		Dates: slices.Clone(config.Table.DateLabels),
		Slots: state.Slots,
	}

	outcome := &AllocationOutcome{
		State:            state,
		Schedule:         schedule,
		DayPools:         reports,
		Conflicts:        DetectConflicts(schedule.Slots),
		PairPlacements:   pairPlacements,
		ValidationErrors: ValidateSchedule(state, config.Criteria),
	}

	outcome.Success = true
	for _, validationError := range outcome.ValidationErrors {
		if !validationError.Warning {
			outcome.Success = false
			break
		}
	}

	return outcome
}
