package model

// Identity is the canonical key a volunteer resolves to after alias and
// nickname normalization
type Identity string

// Unassigned is the assignee of a slot no eligible volunteer could fill
const Unassigned Identity = "UNASSIGNED"

// IsUnassigned reports whether the identity is the sentinel
func (id Identity) IsUnassigned() bool {
	return id == Unassigned
}

// AvailabilityRecord is one row of the availability spreadsheet
type AvailabilityRecord struct {
	RawName      string
	ActivityArea string
	// Available maps a date label to whether the volunteer marked that date
	Available map[string]bool
}

// AvailabilityTable is a normalized availability spreadsheet
type AvailabilityTable struct {
	// DateLabels in spreadsheet column order
	DateLabels []string
	Records    []AvailabilityRecord
}

// MatchRule decides whether a free-text activity area belongs to a role.
// The area is upper-cased and split on whitespace; a token matches when it
// equals one of Exact or starts with one of Prefixes.
type MatchRule struct {
	Exact    []string `yaml:"exact,omitempty" json:"exact,omitempty"`
	Prefixes []string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
}

// RoleDefinition describes one area of service and how many people it needs per date
type RoleDefinition struct {
	Key string `yaml:"key" json:"key" validate:"required"`
	// Name is the area name shown in grid views (defaults to Key)
	Name   string    `yaml:"name,omitempty" json:"name,omitempty"`
	Slots  int       `yaml:"slots" json:"slots" validate:"min=1"`
	Labels []string  `yaml:"labels,omitempty" json:"labels,omitempty"`
	Match  MatchRule `yaml:"match" json:"match"`
}

// DisplayName returns Name, or Key when no name is set
func (r RoleDefinition) DisplayName() string {
	if r.Name == "" {
		return r.Key
	}
	return r.Name
}

// SlotLabel returns the display label for the slot at index i.
// Indexes past the end of Labels reuse the last label.
func (r RoleDefinition) SlotLabel(i int) string {
	if len(r.Labels) == 0 {
		return r.Key
	}
	if i < len(r.Labels) {
		return r.Labels[i]
	}
	return r.Labels[len(r.Labels)-1]
}

// AssignmentSlot is one filled (or unfilled) position on one date
type AssignmentSlot struct {
	Date        string   `json:"date"`
	RoleKey     string   `json:"role"`
	RoleDisplay string   `json:"role_display"`
	SlotIndex   int      `json:"slot"`
	Assignee    Identity `json:"assignee"`
	// Preassigned is set when a pair rule placed the assignee before generic filling
	Preassigned bool   `json:"preassigned,omitempty"`
	PairRule    string `json:"pair_rule,omitempty"`
}

// Schedule is the ordered output of an allocation run
type Schedule struct {
	RunID string           `json:"run_id,omitempty"`
	Dates []string         `json:"dates"`
	Slots []AssignmentSlot `json:"slots"`
}

// SlotsForDate returns the slots of a single date in schedule order
func (s *Schedule) SlotsForDate(date string) []AssignmentSlot {
	var slots []AssignmentSlot
	for _, slot := range s.Slots {
		if slot.Date == date {
			slots = append(slots, slot)
		}
	}
	return slots
}

// Conflict is a volunteer booked into more than one slot on the same date
type Conflict struct {
	Date     string   `json:"date"`
	Identity Identity `json:"identity"`
}
