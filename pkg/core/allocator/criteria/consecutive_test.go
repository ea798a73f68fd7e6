package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsecutiveDaysCriterion_IsEligible(t *testing.T) {
	criterion := NewConsecutiveDaysCriterion(2)

	tests := []struct {
		name     string
		assigned []string
		date     string
		expected bool
	}{
		{name: "no history", assigned: nil, date: "QUI 01/05", expected: true},
		{name: "second consecutive day", assigned: []string{"QUI 01/05"}, date: "SEX 02/05", expected: true},
		{name: "third consecutive day", assigned: []string{"QUI 01/05", "SEX 02/05"}, date: "SAB 03/05", expected: false},
		{name: "gap breaks the run", assigned: []string{"QUI 01/05", "SEX 02/05"}, date: "DOM 04/05", expected: true},
		{name: "filling a gap joins two runs", assigned: []string{"01/05", "03/05"}, date: "02/05", expected: false},
		{name: "month boundary is a run", assigned: []string{"30/04", "01/05"}, date: "02/05", expected: false},
		{name: "year boundary is not a run", assigned: []string{"30/12", "31/12"}, date: "01/01", expected: true},
		{name: "unparsable label is ignored", assigned: []string{"QUI 01/05", "SEX 02/05"}, date: "Culto especial", expected: true},
		{name: "impossible date is ignored", assigned: []string{"29/02", "01/03"}, date: "31/02", expected: true},
		{name: "single digit labels", assigned: []string{"1/6", "2/6"}, date: "3/6", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := stateWith(nil, map[Identity][]string{"Ana Souza": tt.assigned}, nil)
			assert.Equal(t, tt.expected, criterion.IsEligible(state, "Ana Souza", tt.date))
		})
	}
}

func TestConsecutiveDaysCriterion_ValidateSchedule(t *testing.T) {
	criterion := NewConsecutiveDaysCriterion(2)

	state := stateWith(nil, nil, []AssignmentSlot{
		{Date: "01/05", Assignee: "Ana Souza"},
		{Date: "01/05", Assignee: "Bruno Lima"},
		{Date: "02/05", Assignee: "Ana Souza"},
		{Date: "03/05", Assignee: "Ana Souza"},
		{Date: "03/05", Assignee: "Bruno Lima"},
	})

	errors := criterion.ValidateSchedule(state)
	require.Len(t, errors, 1)
	assert.Equal(t, "ConsecutiveDays", errors[0].CriterionName)
	assert.Equal(t, Identity("Ana Souza"), errors[0].Identity)
	assert.Contains(t, errors[0].Description, "3 consecutive days")
}
