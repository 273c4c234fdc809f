package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/events"
)

func TestConsume(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	links := f.issue(t, testSurveyID,
		domain.Recipient{Email: strPtr("a@x.com")},
		domain.Recipient{Email: strPtr("b@x.com")},
	)
	secret := secretFromLink(t, links[0].URL)

	token, err := f.service.Consume(ctx, testSurveyID, secret)
	require.NoError(t, err)
	require.Equal(t, links[0].TokenID, token.ID)
	require.True(t, token.Used)

	_, err = f.service.Consume(ctx, testSurveyID, secret)
	require.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)

	rows := f.tokens.snapshot()
	require.True(t, rows[0].Used)
	require.False(t, rows[1].Used)

	other, err := f.service.Validate(ctx, testSurveyID, secretFromLink(t, links[1].URL))
	require.NoError(t, err)
	require.Equal(t, links[1].TokenID, other.ID)
}

func TestConsume_UnknownSecret(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	f.issue(t, testSurveyID, domain.Recipient{Email: strPtr("a@x.com")})

	_, err := f.service.Consume(ctx, testSurveyID, "unknown-secret")
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	_, err = f.service.Consume(ctx, testSurveyID, "")
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	for _, row := range f.tokens.snapshot() {
		require.False(t, row.Used)
	}
}

func TestConsume_GlobalAndScoped(t *testing.T) {
	f := newShareFixture(t)
	ctx := context.Background()
	links := f.issue(t, "survey-T", domain.Recipient{Email: strPtr("a@x.com")})
	secret := secretFromLink(t, links[0].URL)

	_, err := f.service.Consume(ctx, testSurveyID, secret)
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	token, err := f.service.Consume(ctx, "", secret)
	require.NoError(t, err)
	require.Equal(t, "survey-T", token.SurveyID)

	_, err = f.service.Consume(ctx, "", secret)
	require.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)
}

func TestConsume_IgnoresExpiry(t *testing.T) {
	f := newShareFixture(t)
	links := f.issue(t, testSurveyID, domain.Recipient{Email: strPtr("a@x.com")})
	f.clock.Advance(domain.ShareTokenTTL + 24*time.Hour)

	token, err := f.service.Consume(context.Background(), testSurveyID, secretFromLink(t, links[0].URL))
	require.NoError(t, err)
	require.True(t, token.Used)
}

func TestConsume_ConcurrentCallersHaveOneWinner(t *testing.T) {
	f := newShareFixture(t)
	links := f.issue(t, testSurveyID, domain.Recipient{Email: strPtr("a@x.com")})
	secret := secretFromLink(t, links[0].URL)

	const callers = 16
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make(chan error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.service.Consume(context.Background(), testSurveyID, secret)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrTokenAlreadyUsed):
			lost++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, callers-1, lost)
}

func TestConsume_StoreFailure(t *testing.T) {
	f := newShareFixture(t)
	f.tokens.listErr = fmt.Errorf("%w: list share tokens", domain.ErrStoreUnavailable)

	_, err := f.service.Consume(context.Background(), testSurveyID, "secret")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestConsume_PublishesEvent(t *testing.T) {
	f := newShareFixture(t)
	links := f.issue(t, testSurveyID, domain.Recipient{Email: strPtr("a@x.com")})
	secret := secretFromLink(t, links[0].URL)

	var received []events.Event
	f.dispatcher.Subscribe(events.EventShareTokenConsumed, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	_, err := f.service.Consume(context.Background(), testSurveyID, secret)
	require.NoError(t, err)
	_, err = f.service.Consume(context.Background(), testSurveyID, secret)
	require.Error(t, err)

	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(events.ShareTokenConsumedPayload)
	require.True(t, ok)
	require.Equal(t, links[0].TokenID, payload.TokenID)
	require.NotContains(t, fmt.Sprintf("%+v", received[0]), secret)
}
