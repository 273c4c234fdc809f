package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/observability"
	"github.com/spec-kit/survey-share/internal/repository"
)

const (
	opValidate = "validate"
	opConsume  = "consume"
	opResolve  = "resolve"
)

// TokenValidator resolves presented secrets to stored share tokens.
//
// Digests are salted, so resolution is a linear verify over the candidate set.
// The candidate set is bounded by outstanding unused tokens and the expiry
// window; do not replace it with a plaintext or unsalted index.
type TokenValidator struct {
	tokens  repository.ShareTokenRepository
	hasher  auth.DigestHasher
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewTokenValidator constructs a validator.
func NewTokenValidator(deps ShareDependencies) *TokenValidator {
	deps = deps.withDefaults()
	return &TokenValidator{
		tokens:  deps.TokenRepo,
		hasher:  deps.Hasher,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     deps.Clock,
	}
}

// Validate checks secret against unused tokens of surveyID. An empty surveyID
// searches unused tokens of every survey. It returns domain.ErrInvalidToken
// when nothing verifies and domain.ErrTokenExpired when the match is past
// its expiry.
func (v *TokenValidator) Validate(ctx context.Context, surveyID, secret string) (*domain.ShareToken, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		v.metrics.RecordTokenOutcome(opValidate, observability.OutcomeInvalid)
		return nil, domain.ErrInvalidToken
	}

	candidates, err := v.candidates(ctx, surveyID, true)
	if err != nil {
		v.metrics.RecordTokenOutcome(opValidate, observability.OutcomeError)
		return nil, err
	}

	matched := v.match(opValidate, candidates, secret)
	if matched == nil {
		v.metrics.RecordTokenOutcome(opValidate, observability.OutcomeInvalid)
		return nil, domain.ErrInvalidToken
	}
	if matched.ExpiredAt(v.now()) {
		v.metrics.RecordTokenOutcome(opValidate, observability.OutcomeExpired)
		v.logger.Info("share token expired",
			zap.String("token_id", matched.ID),
			zap.String("survey_id", matched.SurveyID),
			zap.Time("expires_at", matched.ExpiresAt))
		return nil, domain.ErrTokenExpired
	}

	v.metrics.RecordTokenOutcome(opValidate, observability.OutcomeValid)
	return matched, nil
}

// Resolve finds the token for secret across all surveys regardless of its
// used or expiry state. It backs survey rendering from a share link, which has
// always accepted used and expired tokens; Validate is the strict check.
func (v *TokenValidator) Resolve(ctx context.Context, secret string) (*domain.ShareToken, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		v.metrics.RecordTokenOutcome(opResolve, observability.OutcomeInvalid)
		return nil, domain.ErrInvalidToken
	}

	candidates, err := v.tokens.ListAll(ctx, false)
	if err != nil {
		v.metrics.RecordTokenOutcome(opResolve, observability.OutcomeError)
		return nil, err
	}

	matched := v.match(opResolve, candidates, secret)
	if matched == nil {
		v.metrics.RecordTokenOutcome(opResolve, observability.OutcomeInvalid)
		return nil, domain.ErrInvalidToken
	}
	v.metrics.RecordTokenOutcome(opResolve, observability.OutcomeResolved)
	return matched, nil
}

func (v *TokenValidator) candidates(ctx context.Context, surveyID string, unusedOnly bool) ([]domain.ShareToken, error) {
	if surveyID == "" {
		return v.tokens.ListAll(ctx, unusedOnly)
	}
	return v.tokens.ListBySurvey(ctx, surveyID, unusedOnly)
}

// match returns the first candidate, in store order, whose digest verifies
// secret. Rows with malformed digests count as non-matches.
func (v *TokenValidator) match(op string, candidates []domain.ShareToken, secret string) *domain.ShareToken {
	scanned := 0
	defer func() { v.metrics.RecordScan(op, scanned) }()

	for i := range candidates {
		scanned++
		ok, err := v.hasher.Verify(secret, candidates[i].SecretDigest)
		if err != nil {
			v.logger.Warn("skipping share token with unverifiable digest",
				zap.String("token_id", candidates[i].ID),
				zap.Error(err))
			continue
		}
		if ok {
			matched := candidates[i]
			return &matched
		}
	}
	return nil
}
