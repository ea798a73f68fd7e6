package services

import (
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/metrics"
)

// CheckConflicts reports volunteers booked more than once on the same date.
// It never changes the schedule; hand-edited schedules are the usual input.
func CheckConflicts(schedule *model.Schedule, logger *zap.Logger) []model.Conflict {
	conflicts := allocator.DetectConflicts(schedule.Slots)
	metrics.ConflictsTotal.Set(float64(len(conflicts)))

	for _, conflict := range conflicts {
		logger.Warn("Volunteer booked more than once",
			zap.String("date", conflict.Date),
			zap.String("identity", string(conflict.Identity)))
	}

	logger.Debug("Conflict check complete",
		zap.Int("slots", len(schedule.Slots)),
		zap.Int("conflicts", len(conflicts)))

	return conflicts
}
