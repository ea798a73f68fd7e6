package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// staticSource is a mock availability.Source
type staticSource struct {
	table *model.AvailabilityTable
	err   error
}

func (s *staticSource) Load(ctx context.Context) (*model.AvailabilityTable, error) {
	return s.table, s.err
}

func everyDate(dates ...string) map[string]bool {
	flags := make(map[string]bool, len(dates))
	for _, date := range dates {
		flags[date] = true
	}
	return flags
}

func slotsOf(schedule *model.Schedule, date, role string) []model.AssignmentSlot {
	var slots []model.AssignmentSlot
	for _, slot := range schedule.SlotsForDate(date) {
		if slot.RoleKey == role {
			slots = append(slots, slot)
		}
	}
	return slots
}

func TestGenerateSchedule_ShiftCapScenario(t *testing.T) {
	dates := []string{"05/06", "06/06", "07/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Ana Souza", ActivityArea: "FILMAGEM", Available: everyDate(dates...)},
			{RawName: "Ana Paula Souza", ActivityArea: "TAKE", Available: everyDate(dates...)},
		},
	}}

	cfg := config.Default()
	disabled := false

	result, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{Consecutive: &disabled})
	require.NoError(t, err)
	schedule := result.Schedule()

	assert.NotEmpty(t, schedule.RunID)
	assert.Equal(t, dates, schedule.Dates)

	// Both raw names collapse to one identity, who works once per day
	assert.Equal(t, model.Identity("Ana Souza"), slotsOf(schedule, "05/06", "FILMING")[0].Assignee)
	assert.Equal(t, model.Identity("Ana Souza"), slotsOf(schedule, "06/06", "FILMING")[0].Assignee)
	assert.Equal(t, model.Unassigned, slotsOf(schedule, "05/06", "TAKE")[0].Assignee)

	// Day three: at the cap of 2, so filming goes unassigned
	for _, slot := range slotsOf(schedule, "07/06", "FILMING") {
		assert.Equal(t, model.Unassigned, slot.Assignee)
	}

	assert.Equal(t, 2, result.Outcome.ShiftCounts()["Ana Souza"])
	assert.True(t, result.Outcome.Success)
	assert.Empty(t, result.Outcome.Conflicts)
}

func TestGenerateSchedule_SlotCompleteness(t *testing.T) {
	dates := []string{"QUA 04/06", "DOM 08/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Bruno Lima", ActivityArea: "Projeção", Available: everyDate(dates...)},
		},
	}}

	cfg := config.Default()
	result, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{})
	require.NoError(t, err)

	for _, date := range dates {
		for _, role := range cfg.Roles {
			assert.Len(t, slotsOf(result.Schedule(), date, role.Key), role.Slots, "%s %s", date, role.Key)
		}
	}
	assert.Equal(t, model.Identity("Bruno Lima"), slotsOf(result.Schedule(), "QUA 04/06", "PROJECTION")[0].Assignee)
}

func TestGenerateSchedule_RoleSelection(t *testing.T) {
	dates := []string{"QUA 04/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Ana Souza", ActivityArea: "Filmagem", Available: everyDate(dates...)},
			{RawName: "Bruno Lima", ActivityArea: "Luz", Available: everyDate(dates...)},
		},
	}}

	result, err := GenerateSchedule(context.Background(), source, config.Default(), zap.NewNop(), GenerateOptions{Roles: []string{"LIGHTING", "FILMING"}})
	require.NoError(t, err)

	// Configured order is kept, not the order of the selection
	require.Len(t, result.Roles, 2)
	assert.Equal(t, "FILMING", result.Roles[0].Key)
	assert.Equal(t, "LIGHTING", result.Roles[1].Key)

	for _, slot := range result.Schedule().Slots {
		assert.Contains(t, []string{"FILMING", "LIGHTING"}, slot.RoleKey)
	}
	assert.Len(t, result.Schedule().Slots, 4)
}

func TestGenerateSchedule_UnknownRole(t *testing.T) {
	source := &staticSource{table: &model.AvailabilityTable{DateLabels: []string{"04/06"}}}

	_, err := GenerateSchedule(context.Background(), source, config.Default(), zap.NewNop(), GenerateOptions{Roles: []string{"SOUND"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "SOUND"`)
}

func TestGenerateSchedule_InputShapeError(t *testing.T) {
	source := &staticSource{err: &availability.ShapeError{Column: "ÁREA DE ATUAÇÃO", Err: availability.ErrMissingColumn}}

	result, err := GenerateSchedule(context.Background(), source, config.Default(), zap.NewNop(), GenerateOptions{})
	require.Error(t, err)
	assert.Nil(t, result, "No partial schedule on input errors")
	assert.True(t, errors.Is(err, availability.ErrMissingColumn))
	assert.Contains(t, err.Error(), "ÁREA DE ATUAÇÃO")
}

func TestGenerateSchedule_ExclusionPair(t *testing.T) {
	dates := []string{"QUA 04/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Laysa Rodrigues", ActivityArea: "Filmagem", Available: everyDate(dates...)},
			{RawName: "Gabriel Nevile", ActivityArea: "Filmagem Take", Available: everyDate(dates...)},
		},
	}}

	result, err := GenerateSchedule(context.Background(), source, config.Default(), zap.NewNop(), GenerateOptions{})
	require.NoError(t, err)

	for _, slot := range result.Schedule().Slots {
		assert.NotEqual(t, model.Identity("Gabriel Nevile"), slot.Assignee)
	}
	assert.Equal(t, model.Identity("Laysa"), slotsOf(result.Schedule(), "QUA 04/06", "FILMING")[0].Assignee)
}

func TestBuildCriteria(t *testing.T) {
	cfg := config.Default()
	enabled, disabled := true, false

	tests := []struct {
		name     string
		enabled  bool
		opts     GenerateOptions
		expected []string
	}{
		{name: "configured on", enabled: true, opts: GenerateOptions{}, expected: []string{"ShiftCap", "ConsecutiveDays"}},
		{name: "configured off", enabled: false, opts: GenerateOptions{}, expected: []string{"ShiftCap"}},
		{name: "flag turns it on", enabled: false, opts: GenerateOptions{Consecutive: &enabled}, expected: []string{"ShiftCap", "ConsecutiveDays"}},
		{name: "flag turns it off", enabled: true, opts: GenerateOptions{Consecutive: &disabled}, expected: []string{"ShiftCap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.ConsecutiveDays.Enabled = tt.enabled
			var names []string
			for _, criterion := range buildCriteria(cfg, tt.opts) {
				names = append(names, criterion.Name())
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestBuildCriteria_MaxShiftsOverride(t *testing.T) {
	cfg := config.Default()
	state := &allocator.RunState{ShiftCounts: map[model.Identity]int{"Ana Souza": 2}}

	shiftCap := buildCriteria(cfg, GenerateOptions{})[0]
	assert.False(t, shiftCap.IsEligible(state, "Ana Souza", "04/06"))

	shiftCap = buildCriteria(cfg, GenerateOptions{MaxShifts: 3})[0]
	assert.True(t, shiftCap.IsEligible(state, "Ana Souza", "04/06"))
}

func TestGenerateSchedule_RoleSelectionKeepsActiveRoles(t *testing.T) {
	dates := []string{"01/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Ana Souza", ActivityArea: "Take", Available: everyDate(dates...)},
			{RawName: "Caio Lima", ActivityArea: "Filmagem", Available: everyDate(dates...)},
		},
	}}

	cfg := config.Default()
	cfg.PairRules = append(cfg.PairRules, allocator.PairRule{
		Name:    "ana-caio",
		Kind:    allocator.PairExclusion,
		Members: []model.Identity{"Ana Souza", "Caio Lima"},
	})
	disabled := false

	all, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{Consecutive: &disabled})
	require.NoError(t, err)
	filmingOnly, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{Roles: []string{"FILMING"}, Consecutive: &disabled})
	require.NoError(t, err)

	// Ana is present through TAKE, so the exclusion keeps Caio off the date
	// whether or not TAKE is shown
	assert.Equal(t, model.Unassigned, slotsOf(all.Schedule(), "01/06", "FILMING")[0].Assignee)
	assert.Equal(t, slotsOf(all.Schedule(), "01/06", "FILMING"), slotsOf(filmingOnly.Schedule(), "01/06", "FILMING"))
	assert.Len(t, filmingOnly.Schedule().Slots, 3)
	assert.Empty(t, slotsOf(filmingOnly.Schedule(), "01/06", "TAKE"))
}

func TestGenerateSchedule_RoleSelectionKeepsCrossPair(t *testing.T) {
	dates := []string{"01/06"}
	source := &staticSource{table: &model.AvailabilityTable{
		DateLabels: dates,
		Records: []model.AvailabilityRecord{
			{RawName: "Ana Souza", ActivityArea: "Filmagem", Available: everyDate(dates...)},
			{RawName: "Laysa Rodrigues", ActivityArea: "Filmagem", Available: everyDate(dates...)},
			{RawName: "Gabriel Marques", ActivityArea: "Produção", Available: everyDate(dates...)},
		},
	}}

	cfg := config.Default()
	all, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{})
	require.NoError(t, err)
	filmingOnly, err := GenerateSchedule(context.Background(), source, cfg, zap.NewNop(), GenerateOptions{Roles: []string{"FILMING"}})
	require.NoError(t, err)

	filming := slotsOf(filmingOnly.Schedule(), "01/06", "FILMING")
	assert.Equal(t, slotsOf(all.Schedule(), "01/06", "FILMING"), filming)
	assert.Equal(t, model.Identity("Laysa"), filming[0].Assignee, "Cross placement survives the selection")
	assert.Equal(t, "laysa-gabriel-marques", filming[0].PairRule)
	assert.Equal(t, 1, filmingOnly.Outcome.PairPlacements, "Only the shown placement is counted")
}

func TestCheckConflicts(t *testing.T) {
	schedule := &model.Schedule{Slots: []model.AssignmentSlot{
		{Date: "04/06", RoleKey: "FILMING", Assignee: "Ana Souza"},
		{Date: "04/06", RoleKey: "TAKE", Assignee: "Ana Souza"},
		{Date: "04/06", RoleKey: "LIGHTING", Assignee: model.Unassigned},
		{Date: "04/06", RoleKey: "PROJECTION", Assignee: model.Unassigned},
		{Date: "08/06", RoleKey: "FILMING", Assignee: "Ana Souza"},
	}}

	conflicts := CheckConflicts(schedule, zap.NewNop())

	assert.Equal(t, []model.Conflict{{Date: "04/06", Identity: "Ana Souza"}}, conflicts)
	assert.Len(t, schedule.Slots, 5, "Schedule is not modified")
}
