package export

import (
	"strings"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// gridRoles returns the configured roles, or the roles the schedule uses in
// order of first appearance
func gridRoles(schedule *model.Schedule, opts Options) []model.RoleDefinition {
	if len(opts.Roles) > 0 {
		return opts.Roles
	}
	var roles []model.RoleDefinition
	seen := make(map[string]bool)
	for _, slot := range schedule.Slots {
		if !seen[slot.RoleKey] {
			seen[slot.RoleKey] = true
			roles = append(roles, model.RoleDefinition{Key: slot.RoleKey})
		}
	}
	return roles
}

// Grid lays the schedule out with one row per date and one column per role.
// Cells hold every assignee of the role on that date, one per line.
// The first row is the header.
func Grid(schedule *model.Schedule, opts Options) [][]string {
	roles := gridRoles(schedule, opts)

	header := make([]string, 0, len(roles)+1)
	header = append(header, "Data")
	for _, role := range roles {
		header = append(header, role.DisplayName())
	}
	grid := [][]string{header}

	for _, date := range scheduleDates(schedule) {
		row := make([]string, 0, len(roles)+1)
		row = append(row, date)
		for _, role := range roles {
			var names []string
			for _, slot := range schedule.Slots {
				if slot.Date == date && slot.RoleKey == role.Key {
					names = append(names, opts.displayName(slot.Assignee))
				}
			}
			row = append(row, strings.Join(names, "\n"))
		}
		grid = append(grid, row)
	}

	return grid
}
