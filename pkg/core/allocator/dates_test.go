package allocator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayMonth(t *testing.T) {
	tests := []struct {
		label     string
		expectOK  bool
		expectDay int
		expectMon time.Month
	}{
		{label: "QUARTA 14/05", expectOK: true, expectDay: 14, expectMon: time.May},
		{label: "1/6", expectOK: true, expectDay: 1, expectMon: time.June},
		{label: "Domingo 07/09/2025", expectOK: true, expectDay: 7, expectMon: time.September},
		{label: "29/02", expectOK: true, expectDay: 29, expectMon: time.February},
		{label: "31/02", expectOK: false},
		{label: "00/05", expectOK: false},
		{label: "14/13", expectOK: false},
		{label: "Culto especial", expectOK: false},
		{label: "123/45", expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			date, ok := ParseDayMonth(tt.label)
			require.Equal(t, tt.expectOK, ok)
			if !tt.expectOK {
				return
			}
			assert.Equal(t, 2000, date.Year())
			assert.Equal(t, tt.expectDay, date.Day())
			assert.Equal(t, tt.expectMon, date.Month())
		})
	}
}

func TestLongestConsecutiveRun(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected int
	}{
		{name: "empty", labels: nil, expected: 0},
		{name: "single", labels: []string{"01/05"}, expected: 1},
		{name: "unsorted run", labels: []string{"03/05", "01/05", "02/05"}, expected: 3},
		{name: "duplicates count once", labels: []string{"01/05", "01/05", "02/05"}, expected: 2},
		{name: "two runs", labels: []string{"01/05", "02/05", "10/05", "11/05", "12/05"}, expected: 3},
		{name: "year boundary", labels: []string{"31/12", "01/01"}, expected: 1},
		{name: "unparsable labels dropped", labels: []string{"01/05", "Especial", "02/05"}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LongestConsecutiveRun(ParseLabels(tt.labels)))
		})
	}
}
