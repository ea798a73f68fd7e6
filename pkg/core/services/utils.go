package services

import (
	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/allocator/criteria"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/export"
)

// GenerateOptions adjusts a single run without touching the configuration
type GenerateOptions struct {
	// Roles restricts the run to these role keys (empty means every role)
	Roles []string

	// MaxShifts overrides maxShiftsPerPerson when above zero
	MaxShifts int

	// Consecutive overrides consecutiveDays.enabled when set
	Consecutive *bool
}

// buildCriteria returns the eligibility rules of a run
func buildCriteria(cfg *config.Config, opts GenerateOptions) []allocator.Criterion {
	maxShifts := cfg.MaxShiftsPerPerson
	if opts.MaxShifts > 0 {
		maxShifts = opts.MaxShifts
	}

	consecutive := cfg.ConsecutiveDays.Enabled
	if opts.Consecutive != nil {
		consecutive = *opts.Consecutive
	}

	result := []allocator.Criterion{criteria.NewShiftCapCriterion(maxShifts)}
	if consecutive {
		result = append(result, criteria.NewConsecutiveDaysCriterion(cfg.ConsecutiveDays.MaxRun))
	}
	return result
}

func roleKeys(roles []model.RoleDefinition) []string {
	keys := make([]string, 0, len(roles))
	for _, role := range roles {
		keys = append(keys, role.Key)
	}
	return keys
}

// ExportOptions builds rendering options from the configuration
func ExportOptions(cfg *config.Config, roles []model.RoleDefinition) export.Options {
	opts := export.DefaultOptions()
	opts.UnassignedLabel = cfg.UnassignedLabel
	opts.Roles = roles
	opts.Calendar.Location = cfg.Location()
	opts.Calendar.Year = cfg.Calendar.Year
	opts.Calendar.DefaultStart = cfg.Calendar.DefaultStart
	opts.Calendar.DefaultEnd = cfg.Calendar.DefaultEnd
	opts.Calendar.EventPrefix = cfg.Calendar.EventPrefix
	if cfg.Share.Subject != "" {
		opts.Title = cfg.Share.Subject
	}
	return opts
}
