package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryDispatcher(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventShareTokenConsumed, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.SurveyID)
		return errors.New("delivery failed")
	})
	d.Subscribe(EventShareTokenConsumed, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.SurveyID)
		return nil
	})
	d.Subscribe(EventShareLinksIssued, func(context.Context, Event) error {
		calls = append(calls, "issued")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "evt-1", Type: EventShareTokenConsumed, SurveyID: "S1"})
	require.NoError(t, err)
	require.Equal(t, []string{"first:S1", "second:S1"}, calls)

	require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	require.Equal(t, "evt-1", logs.All()[0].ContextMap()["event_id"])
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventShareLinksIssued}))
}
