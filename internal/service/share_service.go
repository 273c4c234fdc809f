package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/events"
	"github.com/spec-kit/survey-share/internal/observability"
	"github.com/spec-kit/survey-share/internal/repository"
)

// PersonalizedLink is one issued single-use link. URL carries the plaintext
// secret and is only ever returned to the issuer.
type PersonalizedLink struct {
	TokenID   string
	Email     *string
	Mobile    *string
	URL       string
	ExpiresAt time.Time
}

// IssueResult is the outcome of a share request. Exactly one of PublicLink and
// Links is populated, according to Type.
type IssueResult struct {
	Type       domain.ShareType
	PublicLink string
	Links      []PersonalizedLink
}

// PartialIssueError reports a personalized batch that failed part way. The
// links in Issued were persisted and remain valid.
type PartialIssueError struct {
	Issued    []PersonalizedLink
	Requested int
	Err       error
}

func (e *PartialIssueError) Error() string {
	return fmt.Sprintf("issued %d of %d share links: %v", len(e.Issued), e.Requested, e.Err)
}

func (e *PartialIssueError) Unwrap() error {
	return e.Err
}

// ShareService issues share links and exposes token validation and consumption.
type ShareService struct {
	surveys    repository.SurveyRepository
	tokens     repository.ShareTokenRepository
	generator  auth.SecretGenerator
	hasher     auth.DigestHasher
	links      *LinkBuilder
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
	validator  *TokenValidator
	consumer   *TokenConsumer
}

// NewShareService constructs the service.
func NewShareService(deps ShareDependencies) *ShareService {
	deps = deps.withDefaults()
	if deps.TokenTTL <= 0 {
		deps.TokenTTL = domain.ShareTokenTTL
	}
	if deps.Links == nil {
		deps.Links = NewLinkBuilder("")
	}
	validator := NewTokenValidator(deps)
	return &ShareService{
		surveys:    deps.SurveyRepo,
		tokens:     deps.TokenRepo,
		generator:  deps.Generator,
		hasher:     deps.Hasher,
		links:      deps.Links,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		ttl:        deps.TokenTTL,
		now:        deps.Clock,
		validator:  validator,
		consumer:   NewTokenConsumer(deps, validator),
	}
}

// ParseShareRequest turns the wire discriminator into a ShareRequest variant.
// Blank contact fields are dropped.
func ParseShareRequest(shareType string, recipients []domain.Recipient) (domain.ShareRequest, error) {
	switch domain.ShareType(strings.ToLower(strings.TrimSpace(shareType))) {
	case domain.ShareTypePublic:
		return domain.PublicShare{}, nil
	case domain.ShareTypePersonalized:
		if len(recipients) == 0 {
			return nil, domain.ErrInvalidShareRequest
		}
		cleaned := make([]domain.Recipient, 0, len(recipients))
		for _, r := range recipients {
			cleaned = append(cleaned, domain.Recipient{
				Email:  trimmedOrNil(r.Email),
				Mobile: trimmedOrNil(r.Mobile),
			})
		}
		return domain.PersonalizedShare{Recipients: cleaned}, nil
	default:
		return nil, domain.ErrInvalidShareRequest
	}
}

// Issue shares a survey. Public shares write nothing and are idempotent.
// Personalized shares create one token per recipient on every call, so
// retrying a personalized request issues additional links.
func (s *ShareService) Issue(ctx context.Context, issuer *domain.Issuer, surveyID string, req domain.ShareRequest) (*IssueResult, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case domain.PublicShare:
		s.metrics.RecordLinksIssued(string(domain.ShareTypePublic), 1)
		return &IssueResult{Type: domain.ShareTypePublic, PublicLink: s.links.Public(surveyID)}, nil
	case domain.PersonalizedShare:
		if len(r.Recipients) == 0 {
			return nil, domain.ErrInvalidShareRequest
		}
		return s.issuePersonalized(ctx, issuer, surveyID, r.Recipients)
	default:
		return nil, domain.ErrInvalidShareRequest
	}
}

func (s *ShareService) issuePersonalized(ctx context.Context, issuer *domain.Issuer, surveyID string, recipients []domain.Recipient) (*IssueResult, error) {
	issued := make([]PersonalizedLink, 0, len(recipients))
	for _, recipient := range recipients {
		link, err := s.issueOne(ctx, surveyID, recipient)
		if err != nil {
			s.metrics.RecordLinksIssued(string(domain.ShareTypePersonalized), len(issued))
			s.publishIssued(ctx, issuer, surveyID, issued)
			s.logger.Error("personalized share failed",
				zap.String("survey_id", surveyID),
				zap.Int("issued", len(issued)),
				zap.Int("requested", len(recipients)),
				zap.Error(err))
			if len(issued) == 0 {
				return nil, err
			}
			return nil, &PartialIssueError{Issued: issued, Requested: len(recipients), Err: err}
		}
		issued = append(issued, *link)
	}

	s.metrics.RecordLinksIssued(string(domain.ShareTypePersonalized), len(issued))
	s.publishIssued(ctx, issuer, surveyID, issued)
	s.logger.Info("personalized share issued",
		zap.String("survey_id", surveyID),
		zap.Int("links", len(issued)))
	return &IssueResult{Type: domain.ShareTypePersonalized, Links: issued}, nil
}

func (s *ShareService) issueOne(ctx context.Context, surveyID string, recipient domain.Recipient) (*PersonalizedLink, error) {
	secret, err := s.generator.Generate()
	if err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash share secret: %w", err)
	}

	now := s.now()
	token := &domain.ShareToken{
		SurveyID:        surveyID,
		RecipientEmail:  recipient.Email,
		RecipientMobile: recipient.Mobile,
		SecretDigest:    digest,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	return &PersonalizedLink{
		TokenID:   token.ID,
		Email:     recipient.Email,
		Mobile:    recipient.Mobile,
		URL:       s.links.Personalized(surveyID, secret),
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Validate checks secret against surveyID's unused tokens, enforcing expiry.
func (s *ShareService) Validate(ctx context.Context, surveyID, secret string) (*domain.ShareToken, error) {
	return s.validator.Validate(ctx, surveyID, secret)
}

// Consume marks secret's token used. Submission workflows must call it
// explicitly after accepting a response; nothing here chains it.
func (s *ShareService) Consume(ctx context.Context, surveyID, secret string) (*domain.ShareToken, error) {
	return s.consumer.Consume(ctx, surveyID, secret)
}

// SurveyForToken loads the survey and questions a share link points at.
// Used and expired tokens still resolve; see TokenValidator.Resolve.
func (s *ShareService) SurveyForToken(ctx context.Context, secret string) (*domain.Survey, *domain.ShareToken, error) {
	token, err := s.validator.Resolve(ctx, secret)
	if err != nil {
		return nil, nil, err
	}
	survey, err := s.surveys.GetWithQuestions(ctx, token.SurveyID)
	if err != nil {
		return nil, nil, err
	}
	return survey, token, nil
}

func (s *ShareService) publishIssued(ctx context.Context, issuer *domain.Issuer, surveyID string, links []PersonalizedLink) {
	if s.dispatcher == nil || len(links) == 0 {
		return
	}
	recipients := make([]events.IssuedRecipient, 0, len(links))
	for _, l := range links {
		recipients = append(recipients, events.IssuedRecipient{
			TokenID:         l.TokenID,
			RecipientEmail:  l.Email,
			RecipientMobile: l.Mobile,
		})
	}
	expiresAt := links[0].ExpiresAt

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventShareLinksIssued,
		SurveyID:  surveyID,
		Timestamp: s.now(),
		Payload: events.ShareLinksIssuedPayload{
			ShareType:  domain.ShareTypePersonalized,
			Recipients: recipients,
			ExpiresAt:  &expiresAt,
		},
	}
	if issuer != nil {
		event.Issuer = &issuer.ID
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func trimmedOrNil(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
