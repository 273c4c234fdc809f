package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/events"
)

type memoryTokenStore struct {
	mu          sync.Mutex
	rows        []domain.ShareToken
	seq         int
	failCreates map[int]error
	listErr     error
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{failCreates: make(map[int]error)}
}

func (s *memoryTokenStore) Create(_ context.Context, token *domain.ShareToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if err, ok := s.failCreates[s.seq]; ok {
		return err
	}
	token.ID = fmt.Sprintf("tok-%03d", s.seq)
	token.Used = false
	s.rows = append(s.rows, *token)
	return nil
}

func (s *memoryTokenStore) ListBySurvey(_ context.Context, surveyID string, unusedOnly bool) ([]domain.ShareToken, error) {
	return s.filter(func(t domain.ShareToken) bool {
		return t.SurveyID == surveyID && (!unusedOnly || !t.Used)
	})
}

func (s *memoryTokenStore) ListAll(_ context.Context, unusedOnly bool) ([]domain.ShareToken, error) {
	return s.filter(func(t domain.ShareToken) bool { return !unusedOnly || !t.Used })
}

func (s *memoryTokenStore) TryMarkUsed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			if s.rows[i].Used {
				return false, nil
			}
			s.rows[i].Used = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryTokenStore) filter(keep func(domain.ShareToken) bool) ([]domain.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.ShareToken, 0, len(s.rows))
	for _, t := range s.rows {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryTokenStore) snapshot() []domain.ShareToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ShareToken(nil), s.rows...)
}

type memorySurveyStore struct {
	surveys map[string]*domain.Survey
}

func (s *memorySurveyStore) GetByID(_ context.Context, id string) (*domain.Survey, error) {
	survey, ok := s.surveys[id]
	if !ok {
		return nil, domain.ErrSurveyNotFound
	}
	copied := *survey
	copied.Questions = nil
	return &copied, nil
}

func (s *memorySurveyStore) GetWithQuestions(_ context.Context, id string) (*domain.Survey, error) {
	survey, ok := s.surveys[id]
	if !ok {
		return nil, domain.ErrSurveyNotFound
	}
	copied := *survey
	return &copied, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type shareFixture struct {
	service    *ShareService
	tokens     *memoryTokenStore
	surveys    *memorySurveyStore
	clock      *fakeClock
	dispatcher events.Dispatcher
}

const testSurveyID = "survey-S"

func newShareFixture(t *testing.T) *shareFixture {
	t.Helper()

	tokens := newMemoryTokenStore()
	surveys := &memorySurveyStore{surveys: map[string]*domain.Survey{
		testSurveyID: {
			ID:    testSurveyID,
			Title: "Customer Satisfaction Survey",
			Questions: []domain.Question{
				{ID: "q1", SurveyID: testSurveyID, QuestionType: "rating", QuestionText: "How satisfied are you?"},
			},
		},
		"survey-T": {ID: "survey-T", Title: "Other"},
	}}
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher(nil)

	svc := NewShareService(ShareDependencies{
		TokenRepo:  tokens,
		SurveyRepo: surveys,
		Generator:  auth.NewSecretGenerator(),
		Hasher:     auth.NewBcryptHasher(bcrypt.MinCost),
		Links:      NewLinkBuilder("https://frontend.test/"),
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	return &shareFixture{service: svc, tokens: tokens, surveys: surveys, clock: clock, dispatcher: dispatcher}
}

func strPtr(s string) *string { return &s }

func secretFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	secret := u.Query().Get("token")
	require.NotEmpty(t, secret)
	return secret
}

func (f *shareFixture) issue(t *testing.T, surveyID string, recipients ...domain.Recipient) []PersonalizedLink {
	t.Helper()
	result, err := f.service.Issue(context.Background(), &domain.Issuer{ID: "issuer-1"}, surveyID, domain.PersonalizedShare{Recipients: recipients})
	require.NoError(t, err)
	require.Equal(t, domain.ShareTypePersonalized, result.Type)
	return result.Links
}
