package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-share/internal/config"
	"github.com/spec-kit/survey-share/internal/events"
)

// NotificationService emits delivery stubs for share events. Events never
// carry share secrets, so delivery of the link itself stays with the issuer.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventShareLinksIssued, n.handleShareLinksIssued)
	n.dispatcher.Subscribe(events.EventShareTokenConsumed, n.handleShareTokenConsumed)
}

func (n *NotificationService) handleShareLinksIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ShareLinksIssuedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ShareLinksIssued",
		zap.String("survey_id", event.SurveyID),
		zap.Int("recipients", len(payload.Recipients)))

	for _, r := range payload.Recipients {
		if r.RecipientEmail != nil {
			n.sendEmailNotificationStub(ctx, event, r.TokenID, *r.RecipientEmail)
		}
		if r.RecipientMobile != nil {
			n.sendSMSNotificationStub(ctx, event, r.TokenID, *r.RecipientMobile)
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleShareTokenConsumed(ctx context.Context, event events.Event) error {
	n.logger.Info("ShareTokenConsumed", zap.String("survey_id", event.SurveyID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, tokenID, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("token_id", tokenID),
		zap.String("survey_id", event.SurveyID))
}

func (n *NotificationService) sendSMSNotificationStub(_ context.Context, event events.Event, tokenID, to string) {
	if strings.TrimSpace(n.cfg.SMSSender) == "" {
		return
	}
	n.logger.Debug("sendSMSNotificationStub",
		zap.String("sender", n.cfg.SMSSender),
		zap.String("to", to),
		zap.String("token_id", tokenID),
		zap.String("survey_id", event.SurveyID))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("survey_id", event.SurveyID),
		zap.String("event_type", string(event.Type)))
}
