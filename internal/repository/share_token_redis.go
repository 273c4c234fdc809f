package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/survey-share/internal/domain"
)

// Each token is a hash at {prefix}:token:{id}; creation order is kept in
// sorted sets per survey and globally, scored by created_at in microseconds.
var (
	createTokenScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[3], ARGV[1], ARGV[2])
return 1
`)

	markUsedScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'used') == '0' then
  redis.call('HSET', KEYS[1], 'used', '1')
  return 1
end
return 0
`)
)

const (
	fieldSurveyID  = "survey_id"
	fieldEmail     = "recipient_email"
	fieldMobile    = "recipient_mobile"
	fieldDigest    = "token_hash"
	fieldExpiresAt = "expires_at"
	fieldUsed      = "used"
	fieldCreatedAt = "created_at"
)

type redisShareTokenRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisShareTokenRepository returns a Redis-backed implementation.
func NewRedisShareTokenRepository(client redis.UniversalClient, prefix string) ShareTokenRepository {
	if prefix == "" {
		prefix = "share"
	}
	return &redisShareTokenRepository{client: client, prefix: prefix}
}

func (r *redisShareTokenRepository) tokenKey(id string) string {
	return r.prefix + ":token:" + id
}

func (r *redisShareTokenRepository) surveyKey(surveyID string) string {
	return r.prefix + ":survey:" + surveyID
}

func (r *redisShareTokenRepository) allKey() string {
	return r.prefix + ":tokens"
}

func (r *redisShareTokenRepository) Create(ctx context.Context, token *domain.ShareToken) error {
	id := uuid.NewString()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	fields := []interface{}{
		fieldSurveyID, token.SurveyID,
		fieldDigest, token.SecretDigest,
		fieldExpiresAt, strconv.FormatInt(token.ExpiresAt.UnixNano(), 10),
		fieldUsed, "0",
		fieldCreatedAt, strconv.FormatInt(token.CreatedAt.UnixNano(), 10),
	}
	if token.RecipientEmail != nil {
		fields = append(fields, fieldEmail, *token.RecipientEmail)
	}
	if token.RecipientMobile != nil {
		fields = append(fields, fieldMobile, *token.RecipientMobile)
	}

	args := append([]interface{}{token.CreatedAt.UnixMicro(), id}, fields...)
	keys := []string{r.tokenKey(id), r.surveyKey(token.SurveyID), r.allKey()}

	created, err := createTokenScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return redisStoreError("create share token", err)
	}
	if created != 1 {
		return fmt.Errorf("%w: create share token: id %s already exists", domain.ErrStoreUnavailable, id)
	}

	token.ID = id
	token.Used = false
	return nil
}

func (r *redisShareTokenRepository) ListBySurvey(ctx context.Context, surveyID string, unusedOnly bool) ([]domain.ShareToken, error) {
	return r.list(ctx, r.surveyKey(surveyID), unusedOnly)
}

func (r *redisShareTokenRepository) ListAll(ctx context.Context, unusedOnly bool) ([]domain.ShareToken, error) {
	return r.list(ctx, r.allKey(), unusedOnly)
}

func (r *redisShareTokenRepository) TryMarkUsed(ctx context.Context, id string) (bool, error) {
	marked, err := markUsedScript.Run(ctx, r.client, []string{r.tokenKey(id)}).Int()
	if err != nil {
		return false, redisStoreError("mark share token used", err)
	}
	return marked == 1, nil
}

func (r *redisShareTokenRepository) list(ctx context.Context, indexKey string, unusedOnly bool) ([]domain.ShareToken, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, redisStoreError("list share tokens", err)
	}
	if len(ids) == 0 {
		return []domain.ShareToken{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.tokenKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, redisStoreError("list share tokens", err)
	}

	tokens := make([]domain.ShareToken, 0, len(ids))
	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			continue
		}
		token, err := decodeRedisToken(ids[i], values)
		if err != nil {
			return nil, redisStoreError("decode share token", err)
		}
		if unusedOnly && token.Used {
			continue
		}
		tokens = append(tokens, *token)
	}
	return tokens, nil
}

func decodeRedisToken(id string, values map[string]string) (*domain.ShareToken, error) {
	expiresAt, err := strconv.ParseInt(values[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("token %s expires_at: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(values[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("token %s created_at: %w", id, err)
	}

	token := &domain.ShareToken{
		ID:           id,
		SurveyID:     values[fieldSurveyID],
		SecretDigest: values[fieldDigest],
		ExpiresAt:    time.Unix(0, expiresAt),
		Used:         values[fieldUsed] == "1",
		CreatedAt:    time.Unix(0, createdAt),
	}
	if email, ok := values[fieldEmail]; ok {
		token.RecipientEmail = &email
	}
	if mobile, ok := values[fieldMobile]; ok {
		token.RecipientMobile = &mobile
	}
	return token, nil
}

func redisStoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
