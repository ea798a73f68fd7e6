package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/metrics"
)

// ErrLoadAvailability wraps every failure to read the availability input
var ErrLoadAvailability = errors.New("failed to load availability")

// GenerateResult is the outcome of a schedule generation run
type GenerateResult struct {
	// Roles selected for the schedule, in column order
	Roles []model.RoleDefinition

	// Table is the availability table the run read
	Table *model.AvailabilityTable

	// Outcome carries the schedule, day pools, shift counts and validation results
	Outcome *allocator.AllocationOutcome
}

// Schedule returns the generated schedule
func (r *GenerateResult) Schedule() *model.Schedule {
	return r.Outcome.Schedule
}

// GenerateSchedule loads availability from source and allocates every date in column order.
// Input shape errors abort the run; pool exhaustion only shows up as UNASSIGNED slots.
func GenerateSchedule(
	ctx context.Context,
	source availability.Source,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateOptions,
) (*GenerateResult, error) {
	logger.Debug("Starting generateSchedule",
		zap.Strings("roles", opts.Roles),
		zap.Int("max_shifts_override", opts.MaxShifts))

	// Step 1: Load availability
	logger.Debug("Loading availability")
	table, err := source.Load(ctx)
	if err != nil {
		recordInputError(err)
		metrics.RunsTotal.WithLabelValues("input_error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrLoadAvailability, err)
	}
	metrics.RecordsTotal.Add(float64(len(table.Records)))
	logger.Debug("Availability loaded",
		zap.Int("records", len(table.Records)),
		zap.Int("dates", len(table.DateLabels)))

	// Step 2: Select roles. Every configured role is still allocated so the
	// selection only decides which roles are shown.
	roles, err := cfg.SelectRoles(opts.Roles)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("config_error").Inc()
		return nil, err
	}

	// Step 3: Allocate
	allocationConfig := allocator.AllocationConfig{
		Table:      table,
		Roles:      cfg.Roles,
		Normalizer: allocator.NewNormalizer(cfg.Aliases),
		Criteria:   buildCriteria(cfg, opts),
		PairRules:  cfg.PairRules,
		PoolOrder:  cfg.PoolOrder,
	}

	logger.Debug("Running allocation",
		zap.Int("roles", len(cfg.Roles)),
		zap.Int("selected_roles", len(roles)),
		zap.Int("criteria", len(allocationConfig.Criteria)),
		zap.Int("pair_rules", len(allocationConfig.PairRules)))

	start := time.Now()
	outcome, err := allocator.Allocate(allocationConfig)
	metrics.AllocationDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("config_error").Inc()
		return nil, fmt.Errorf("failed to allocate schedule: %w", err)
	}
	outcome.Schedule.RunID = uuid.NewString()
	if len(roles) < len(cfg.Roles) {
		outcome = outcome.Restrict(roleKeys(roles))
	}

	recordOutcome(outcome, roles)

	for _, validationError := range outcome.ValidationErrors {
		logger.Warn("Schedule validation finding",
			zap.String("criterion", validationError.CriterionName),
			zap.String("date", validationError.Date),
			zap.String("identity", string(validationError.Identity)),
			zap.String("description", validationError.Description),
			zap.Bool("warning", validationError.Warning))
	}

	logger.Info("Schedule generated",
		zap.String("run_id", outcome.Schedule.RunID),
		zap.Int("dates", len(outcome.Schedule.Dates)),
		zap.Int("slots", len(outcome.Schedule.Slots)),
		zap.Int("unassigned", outcome.UnassignedCount()),
		zap.Int("pair_placements", outcome.PairPlacements),
		zap.Bool("success", outcome.Success))

	return &GenerateResult{
		Roles:   roles,
		Table:   table,
		Outcome: outcome,
	}, nil
}

func recordOutcome(outcome *allocator.AllocationOutcome, roles []model.RoleDefinition) {
	metrics.ResetScheduleGauges()
	metrics.SlotsTotal.Set(float64(len(outcome.Schedule.Slots)))
	metrics.SlotsUnassigned.Set(float64(outcome.UnassignedCount()))
	for _, role := range roles {
		metrics.UnassignedByRole.WithLabelValues(role.Key).Set(0)
	}
	for _, slot := range outcome.Schedule.Slots {
		if slot.Assignee.IsUnassigned() {
			metrics.UnassignedByRole.WithLabelValues(slot.RoleKey).Inc()
		}
	}
	metrics.ConflictsTotal.Set(float64(len(outcome.Conflicts)))
	metrics.PairPlacementsTotal.Add(float64(outcome.PairPlacements))

	for _, validationError := range outcome.ValidationErrors {
		severity := "error"
		if validationError.Warning {
			severity = "warning"
		}
		metrics.ValidationErrorsTotal.WithLabelValues(validationError.CriterionName, severity).Inc()
	}

	result := "success"
	if !outcome.Success {
		result = "invalid"
	}
	metrics.RunsTotal.WithLabelValues(result).Inc()
}

func recordInputError(err error) {
	errorType := "read"
	switch {
	case errors.Is(err, availability.ErrMissingColumn):
		errorType = "missing_column"
	case errors.Is(err, availability.ErrEmptyInput):
		errorType = "empty_input"
	case errors.Is(err, availability.ErrNoDateColumns):
		errorType = "no_date_columns"
	case errors.Is(err, availability.ErrUnsupportedFormat):
		errorType = "unsupported_format"
	}
	metrics.InputErrorsTotal.WithLabelValues(errorType).Inc()
}
