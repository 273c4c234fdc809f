package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/events"
	"github.com/spec-kit/survey-share/internal/observability"
	"github.com/spec-kit/survey-share/internal/repository"
)

// TokenConsumer performs the one-time used transition of share tokens. It is
// the authority on single use: a prior Validate is never sufficient.
type TokenConsumer struct {
	validator  *TokenValidator
	tokens     repository.ShareTokenRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTokenConsumer constructs a consumer sharing the validator's scan logic.
func NewTokenConsumer(deps ShareDependencies, validator *TokenValidator) *TokenConsumer {
	deps = deps.withDefaults()
	if validator == nil {
		validator = NewTokenValidator(deps)
	}
	return &TokenConsumer{
		validator:  validator,
		tokens:     deps.TokenRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Consume marks the token for secret as used. surveyID narrows the search;
// empty searches every survey. Expiry is not checked here.
//
// It returns domain.ErrTokenAlreadyUsed when the token was consumed earlier or
// by a concurrent caller, and domain.ErrTokenNotFound when nothing verifies.
// Retrying is safe.
func (c *TokenConsumer) Consume(ctx context.Context, surveyID, secret string) (*domain.ShareToken, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeNotFound)
		return nil, domain.ErrTokenNotFound
	}

	unused, err := c.validator.candidates(ctx, surveyID, true)
	if err != nil {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeError)
		return nil, err
	}

	matched := c.validator.match(opConsume, unused, secret)
	if matched == nil {
		return nil, c.classifyMiss(ctx, surveyID, secret)
	}

	marked, err := c.tokens.TryMarkUsed(ctx, matched.ID)
	if err != nil {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeError)
		return nil, err
	}
	if !marked {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeAlreadyUsed)
		c.logger.Info("share token consumed concurrently", zap.String("token_id", matched.ID))
		return nil, domain.ErrTokenAlreadyUsed
	}

	matched.Used = true
	c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeConsumed)
	c.logger.Info("share token consumed",
		zap.String("token_id", matched.ID),
		zap.String("survey_id", matched.SurveyID))
	c.publishConsumed(ctx, matched)
	return matched, nil
}

// classifyMiss distinguishes a secret whose token is already used from one
// that matches nothing.
func (c *TokenConsumer) classifyMiss(ctx context.Context, surveyID, secret string) error {
	all, err := c.validator.candidates(ctx, surveyID, false)
	if err != nil {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeError)
		return err
	}

	used := make([]domain.ShareToken, 0, len(all))
	for i := range all {
		if all[i].Used {
			used = append(used, all[i])
		}
	}
	if c.validator.match(opConsume, used, secret) != nil {
		c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeAlreadyUsed)
		return domain.ErrTokenAlreadyUsed
	}

	c.metrics.RecordTokenOutcome(opConsume, observability.OutcomeNotFound)
	return domain.ErrTokenNotFound
}

func (c *TokenConsumer) publishConsumed(ctx context.Context, token *domain.ShareToken) {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventShareTokenConsumed,
		SurveyID:  token.SurveyID,
		Timestamp: c.validator.now(),
		Payload: events.ShareTokenConsumedPayload{
			TokenID:        token.ID,
			RecipientEmail: token.RecipientEmail,
		},
	})
}
