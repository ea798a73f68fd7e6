package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/export"
)

// EmailClient defines the email operation needed to share a schedule
type EmailClient interface {
	SendEmail(to, subject, body string) error
}

// FailedEmail represents an email that failed to send
type FailedEmail struct {
	Recipient string
	Error     string
}

// ShareSchedule emails the WhatsApp-formatted schedule to every configured recipient.
// A failed send is collected and the remaining recipients are still tried.
func ShareSchedule(
	ctx context.Context,
	emailClient EmailClient,
	cfg *config.Config,
	logger *zap.Logger,
	schedule *model.Schedule,
	roles []model.RoleDefinition,
) ([]string, []FailedEmail, error) {
	if len(cfg.Share.Recipients) == 0 {
		return nil, nil, fmt.Errorf("no recipients configured (share.recipients)")
	}

	body := export.WhatsApp(schedule, ExportOptions(cfg, roles))
	logger.Debug("Sharing schedule",
		zap.Int("recipients", len(cfg.Share.Recipients)),
		zap.Int("body_length", len(body)))

	var sent []string
	var failed []FailedEmail

	for _, recipient := range cfg.Share.Recipients {
		if err := ctx.Err(); err != nil {
			return sent, failed, err
		}

		if err := emailClient.SendEmail(recipient, cfg.Share.Subject, body); err != nil {
			logger.Warn("Failed to send schedule",
				zap.String("recipient", recipient),
				zap.Error(err))
			failed = append(failed, FailedEmail{Recipient: recipient, Error: err.Error()})
			continue
		}

		logger.Debug("Schedule sent", zap.String("recipient", recipient))
		sent = append(sent, recipient)
	}

	logger.Info("Schedule shared",
		zap.Int("sent", len(sent)),
		zap.Int("failed", len(failed)))

	return sent, failed, nil
}
