package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/survey-share/internal/config"
	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/events"
)

func TestNotificationService_DeliversStubsPerRecipient(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		SMSSender:  "SURVEY",
		WebhookURL: "https://hooks.example.com/share",
	}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventShareLinksIssued,
		SurveyID: testSurveyID,
		Payload: events.ShareLinksIssuedPayload{
			ShareType: domain.ShareTypePersonalized,
			Recipients: []events.IssuedRecipient{
				{TokenID: "tok-1", RecipientEmail: strPtr("a@x.com")},
				{TokenID: "tok-2", RecipientMobile: strPtr("+1555")},
			},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	require.Equal(t, 1, logs.FilterMessage("sendSMSNotificationStub").Len())
	require.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	email := logs.FilterMessage("sendEmailNotificationStub").All()[0].ContextMap()
	require.Equal(t, "tok-1", email["token_id"])
	require.Equal(t, "a@x.com", email["to"])
}

func TestNotificationService_SkipsUnconfiguredChannels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventShareTokenConsumed,
		SurveyID: testSurveyID,
		Payload:  events.ShareTokenConsumedPayload{TokenID: "tok-1"},
	}))

	require.Equal(t, 1, logs.FilterMessage("ShareTokenConsumed").Len())
	require.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
