package allocator

import (
	"slices"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// PoolOrder selects the total order used to break ties inside a role pool
type PoolOrder string

const (
	// PoolOrderName sorts pools by canonical identity (byte-lexicographic)
	PoolOrderName PoolOrder = "name"

	// PoolOrderTable keeps the order in which identities first appear in the sheet
	PoolOrderTable PoolOrder = "table"
)

// RunState is the state carried forward from one date to the next during a run.
// A new RunState is built for every call to Allocate.
type RunState struct {
	// Roles being filled, in iteration order
	Roles []model.RoleDefinition

	// ShiftCounts is the number of dates each identity has been assigned so far.
	// Incremented once per identity per date, never decremented.
	ShiftCounts map[model.Identity]int

	// AssignedDates lists the date labels each identity worked, in run order
	AssignedDates map[model.Identity][]string

	// Slots produced so far, in schedule order
	Slots []model.AssignmentSlot

	// Days processed so far
	Days []*DayState
}

func newRunState(roles []model.RoleDefinition) *RunState {
	return &RunState{
		Roles:         roles,
		ShiftCounts:   make(map[model.Identity]int),
		AssignedDates: make(map[model.Identity][]string),
		Slots:         []model.AssignmentSlot{},
		Days:          []*DayState{},
	}
}

// DayState is the scratch state for allocating a single date
type DayState struct {
	Date string

	// Pools are the identities eligible for each role after criteria filtering.
	// Entries are removed as people are assigned.
	Pools map[string][]model.Identity

	// RawPools are the identities available for each role before criteria filtering.
	// Only pair rules with BypassFilters consult them.
	RawPools map[string][]model.Identity

	// Used tracks identities already placed on this date
	Used map[model.Identity]bool

	// Preallocated holds pair-rule placements per role, in slot order
	Preallocated map[string][]preallocation
}

type preallocation struct {
	identity model.Identity
	rule     string
}

func newDayState(date string) *DayState {
	return &DayState{
		Date:         date,
		Pools:        make(map[string][]model.Identity),
		RawPools:     make(map[string][]model.Identity),
		Used:         make(map[model.Identity]bool),
		Preallocated: make(map[string][]preallocation),
	}
}

// inAnyPool reports whether the identity is present in any role pool of the day
func (d *DayState) inAnyPool(pools map[string][]model.Identity, id model.Identity) bool {
	for _, pool := range pools {
		if slices.Contains(pool, id) {
			return true
		}
	}
	return false
}

// removeEverywhere drops the identity from every filtered and raw pool of the day
func (d *DayState) removeEverywhere(id model.Identity) {
	for role, pool := range d.Pools {
		d.Pools[role] = removeIdentity(pool, id)
	}
	for role, pool := range d.RawPools {
		d.RawPools[role] = removeIdentity(pool, id)
	}
}

// freeSlots returns the number of slots of role not yet taken by preallocations
func (d *DayState) freeSlots(role model.RoleDefinition) int {
	return max(role.Slots-len(d.Preallocated[role.Key]), 0)
}

func (d *DayState) preallocate(role string, id model.Identity, rule string) {
	d.Preallocated[role] = append(d.Preallocated[role], preallocation{identity: id, rule: rule})
	d.Used[id] = true
}

// RolePool is one role's eligible pool in a day report
type RolePool struct {
	Role       string           `json:"role"`
	Identities []model.Identity `json:"identities"`
}

// DayPoolReport lists who was eligible for each role on a date, before slot filling
type DayPoolReport struct {
	Date  string     `json:"date"`
	Pools []RolePool `json:"pools"`
}

func removeIdentity(pool []model.Identity, id model.Identity) []model.Identity {
	return slices.DeleteFunc(pool, func(candidate model.Identity) bool {
		return candidate == id
	})
}

// orderPool deduplicates identities and applies the pool order
func orderPool(ids []model.Identity, order PoolOrder) []model.Identity {
	seen := make(map[model.Identity]bool, len(ids))
	pool := make([]model.Identity, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		pool = append(pool, id)
	}

	if order != PoolOrderTable {
		slices.Sort(pool)
	}
	return pool
}
