package allocator

import (
	"slices"
	"strings"
	"unicode"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// missingAreaValues are placeholder cells spreadsheet exports leave behind for empty answers
var missingAreaValues = []string{"", "NAN", "NULL", "NONE"}

// activityTokens upper-cases an activity area and splits it into words.
// Commas, semicolons and slashes separate words as well, since multi-choice
// form answers arrive as "Filmagem, Take".
func activityTokens(area string) []string {
	return strings.FieldsFunc(strings.ToUpper(area), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '/'
	})
}

// MatchesRole reports whether the activity area satisfies the role's match rule
func MatchesRole(area string, rule model.MatchRule) bool {
	for _, token := range activityTokens(area) {
		for _, exact := range rule.Exact {
			if token == strings.ToUpper(exact) {
				return true
			}
		}
		for _, prefix := range rule.Prefixes {
			if strings.HasPrefix(token, strings.ToUpper(prefix)) {
				return true
			}
		}
	}
	return false
}

func hasActivityArea(area string) bool {
	return !slices.Contains(missingAreaValues, strings.ToUpper(strings.TrimSpace(area)))
}

// AvailablePeople returns the raw names, in table order, of everyone who marked
// the date and whose activity area matches the role.
// Rows with no name or no activity area are skipped.
func AvailablePeople(table *model.AvailabilityTable, date string, role model.RoleDefinition) []string {
	var names []string
	for _, record := range table.Records {
		if !record.Available[date] {
			continue
		}
		if strings.TrimSpace(record.RawName) == "" || !hasActivityArea(record.ActivityArea) {
			continue
		}
		if MatchesRole(record.ActivityArea, role.Match) {
			names = append(names, record.RawName)
		}
	}
	return names
}
