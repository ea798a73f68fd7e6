package allocator

import (
	"fmt"
	"slices"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// PairRuleKind selects how a pair rule is resolved
type PairRuleKind string

const (
	// PairCross places each member in its own preferred role, all or nothing
	PairCross PairRuleKind = "cross"

	// PairExclusion keeps two members off the same date
	PairExclusion PairRuleKind = "exclusion"

	// PairTogether places both members in adjacent slots of one role
	PairTogether PairRuleKind = "together"
)

// PairPlacement is one member of a cross rule with its role preferences
type PairPlacement struct {
	Identity model.Identity `yaml:"identity" json:"identity" validate:"required"`
	// Roles in preference order; the first one whose pool holds the identity is used
	Roles []string `yaml:"roles" json:"roles" validate:"required,min=1"`
}

// PairRule is a named preference about two people serving on the same date
type PairRule struct {
	Name string       `yaml:"name" json:"name" validate:"required"`
	Kind PairRuleKind `yaml:"kind" json:"kind" validate:"required,oneof=cross exclusion together"`

	// Members are the two identities of exclusion and together rules
	Members []model.Identity `yaml:"members,omitempty" json:"members,omitempty"`

	// Role is the role a together rule fills
	Role string `yaml:"role,omitempty" json:"role,omitempty"`

	// Placements are the members of a cross rule
	Placements []PairPlacement `yaml:"placements,omitempty" json:"placements,omitempty" validate:"dive"`

	// BypassFilters resolves the rule against availability before criteria
	// filtering, so the placement may exceed the shift cap
	BypassFilters bool `yaml:"bypassFilters,omitempty" json:"bypassFilters,omitempty"`
}

// Check verifies the rule's shape against the known role keys
func (r PairRule) Check(roleKeys []string) error {
	switch r.Kind {
	case PairCross:
		if len(r.Placements) < 2 {
			return fmt.Errorf("pair rule %q: cross rule needs at least 2 placements", r.Name)
		}
		for _, placement := range r.Placements {
			for _, role := range placement.Roles {
				if !slices.Contains(roleKeys, role) {
					return fmt.Errorf("pair rule %q: unknown role %q", r.Name, role)
				}
			}
		}
	case PairExclusion, PairTogether:
		if len(r.Members) != 2 {
			return fmt.Errorf("pair rule %q: %s rule needs exactly 2 members", r.Name, r.Kind)
		}
		if r.Members[0] == r.Members[1] {
			return fmt.Errorf("pair rule %q: members must be different", r.Name)
		}
		if r.Kind == PairTogether && !slices.Contains(roleKeys, r.Role) {
			return fmt.Errorf("pair rule %q: unknown role %q", r.Name, r.Role)
		}
	default:
		return fmt.Errorf("pair rule %q: unknown kind %q", r.Name, r.Kind)
	}
	return nil
}

// ResolvePairs applies pair rules to one day: exclusions first, then cross and
// together rules in declared order. Placements are recorded as preallocations
// and their identities marked used for the day.
// Returns the number of identities placed.
func ResolvePairs(day *DayState, rules []PairRule, roles []model.RoleDefinition) int {
	for _, rule := range rules {
		if rule.Kind == PairExclusion {
			applyExclusion(day, rule)
		}
	}

	placed := 0
	for _, rule := range rules {
		switch rule.Kind {
		case PairCross:
			placed += applyCross(day, rule, roles)
		case PairTogether:
			placed += applyTogether(day, rule, roles)
		}
	}
	return placed
}

func (d *DayState) poolsFor(rule PairRule) map[string][]model.Identity {
	if rule.BypassFilters {
		return d.RawPools
	}
	return d.Pools
}

func applyExclusion(day *DayState, rule PairRule) {
	first, second := rule.Members[0], rule.Members[1]
	switch {
	case day.inAnyPool(day.Pools, first):
		day.removeEverywhere(second)
	case day.inAnyPool(day.Pools, second):
		// first can still sit in a raw pool when criteria filtered it out;
		// dropping it there keeps bypassFilters rules from placing it
		day.removeEverywhere(first)
	}
}

func applyCross(day *DayState, rule PairRule, roles []model.RoleDefinition) int {
	pools := day.poolsFor(rule)

	type resolved struct {
		identity model.Identity
		role     string
	}
	var plan []resolved
	taken := make(map[string]int)

	for _, placement := range rule.Placements {
		if day.Used[placement.Identity] {
			return 0
		}
		found := false
		for _, roleKey := range placement.Roles {
			role, ok := findRole(roles, roleKey)
			if !ok || !slices.Contains(pools[roleKey], placement.Identity) {
				continue
			}
			if day.freeSlots(role)-taken[roleKey] < 1 {
				continue
			}
			plan = append(plan, resolved{identity: placement.Identity, role: roleKey})
			taken[roleKey]++
			found = true
			break
		}
		if !found {
			return 0
		}
	}

	for _, p := range plan {
		day.preallocate(p.role, p.identity, rule.Name)
	}
	return len(plan)
}

func applyTogether(day *DayState, rule PairRule, roles []model.RoleDefinition) int {
	role, ok := findRole(roles, rule.Role)
	if !ok {
		return 0
	}
	pool := day.poolsFor(rule)[rule.Role]
	first, second := rule.Members[0], rule.Members[1]

	if day.Used[first] || day.Used[second] {
		return 0
	}
	if !slices.Contains(pool, first) || !slices.Contains(pool, second) {
		return 0
	}
	if day.freeSlots(role) < 2 {
		return 0
	}

	day.preallocate(rule.Role, first, rule.Name)
	day.preallocate(rule.Role, second, rule.Name)
	return 2
}

func findRole(roles []model.RoleDefinition, key string) (model.RoleDefinition, bool) {
	for _, role := range roles {
		if role.Key == key {
			return role, true
		}
	}
	return model.RoleDefinition{}, false
}
