package allocator

import "github.com/pibshift/pibshift/pkg/core/model"

// DetectConflicts returns every (date, identity) pair where a real identity
// holds two or more slots on the same date. Each pair is reported once, in
// the order of its first slot.
func DetectConflicts(slots []model.AssignmentSlot) []model.Conflict {
	type key struct {
		date     string
		identity model.Identity
	}

	seen := make(map[key]int)
	var order []key
	for _, slot := range slots {
		if slot.Assignee == "" || slot.Assignee.IsUnassigned() {
			continue
		}
		k := key{slot.Date, slot.Assignee}
		if seen[k] == 0 {
			order = append(order, k)
		}
		seen[k]++
	}

	conflicts := []model.Conflict{}
	for _, k := range order {
		if seen[k] > 1 {
			conflicts = append(conflicts, model.Conflict{Date: k.date, Identity: k.identity})
		}
	}
	return conflicts
}
