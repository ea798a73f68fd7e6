package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
)

// BuildTemplate returns the header row of a blank availability sheet: the
// name and activity columns, then one column per service date between from
// and until (inclusive), labelled "<WEEKDAY> DD/MM"
func BuildTemplate(cfg *config.Config, logger *zap.Logger, from, until time.Time) ([]string, error) {
	if until.Before(from) {
		return nil, fmt.Errorf("until (%s) is before from (%s)", until.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	rule, err := rrule.StrToRRule(cfg.Template.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template rrule: %w", err)
	}
	rule.DTStart(from)

	dates := rule.Between(from, until, true)
	if len(dates) == 0 {
		return nil, fmt.Errorf("no service dates between %s and %s", from.Format("2006-01-02"), until.Format("2006-01-02"))
	}

	header := []string{
		firstOr(cfg.Input.NameColumns, "NOME"),
		firstOr(cfg.Input.ActivityColumns, "ÁREA DE ATUAÇÃO"),
	}
	for _, date := range dates {
		header = append(header, DateLabel(cfg.Template.WeekdayLabels, date))
	}

	logger.Debug("Template built",
		zap.String("rrule", cfg.Template.RRule),
		zap.Int("dates", len(dates)))

	return header, nil
}

// DateLabel formats a service date as the availability sheets label it
func DateLabel(weekdayLabels []string, date time.Time) string {
	label := date.Format("02/01")
	if int(date.Weekday()) < len(weekdayLabels) {
		label = weekdayLabels[date.Weekday()] + " " + label
	}
	return label
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
