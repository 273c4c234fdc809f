package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/events"
	"github.com/spec-kit/survey-share/internal/observability"
	"github.com/spec-kit/survey-share/internal/repository"
)

// ShareDependencies bundles collaborators for the share workflows.
type ShareDependencies struct {
	TokenRepo  repository.ShareTokenRepository
	SurveyRepo repository.SurveyRepository
	Generator  auth.SecretGenerator
	Hasher     auth.DigestHasher
	Links      *LinkBuilder
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// TokenTTL defaults to domain.ShareTokenTTL.
	TokenTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (d ShareDependencies) withDefaults() ShareDependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Generator == nil {
		d.Generator = auth.NewSecretGenerator()
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewBcryptHasher(auth.DefaultBcryptCost)
	}
	return d
}
