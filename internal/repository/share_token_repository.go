package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/survey-share/internal/domain"
)

// ShareTokenRepository persists personalized share tokens.
//
// Digests are salted, so there is no lookup by secret: callers list candidate
// rows and verify each one. TryMarkUsed is the only mutation after Create and
// must be an atomic compare-and-set on the used flag.
type ShareTokenRepository interface {
	// Create inserts token, assigning its ID. It never overwrites an existing row.
	Create(ctx context.Context, token *domain.ShareToken) error
	// ListBySurvey returns tokens for one survey in creation order.
	ListBySurvey(ctx context.Context, surveyID string, unusedOnly bool) ([]domain.ShareToken, error)
	// ListAll returns tokens across every survey in creation order.
	ListAll(ctx context.Context, unusedOnly bool) ([]domain.ShareToken, error)
	// TryMarkUsed flips used from false to true and reports whether this call
	// performed the transition.
	TryMarkUsed(ctx context.Context, id string) (bool, error)
}

type shareTokenRepository struct {
	pool *pgxpool.Pool
}

// NewShareTokenRepository returns a Postgres-backed implementation.
func NewShareTokenRepository(pool *pgxpool.Pool) ShareTokenRepository {
	return &shareTokenRepository{pool: pool}
}

const shareTokenColumns = `id::text, survey_id, recipient_email, recipient_mobile, token_hash, expires_at, used, created_at`

func (r *shareTokenRepository) Create(ctx context.Context, token *domain.ShareToken) error {
	const query = `
        INSERT INTO share_tokens (survey_id, recipient_email, recipient_mobile, token_hash, expires_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id::text`
	if err := r.pool.QueryRow(ctx, query,
		token.SurveyID,
		token.RecipientEmail,
		token.RecipientMobile,
		token.SecretDigest,
		token.ExpiresAt,
		token.CreatedAt,
	).Scan(&token.ID); err != nil {
		return storeError("create share token", err)
	}
	token.Used = false
	return nil
}

func (r *shareTokenRepository) ListBySurvey(ctx context.Context, surveyID string, unusedOnly bool) ([]domain.ShareToken, error) {
	query := `SELECT ` + shareTokenColumns + ` FROM share_tokens WHERE survey_id=$1`
	if unusedOnly {
		query += ` AND used = FALSE`
	}
	query += ` ORDER BY created_at, id`
	return r.list(ctx, query, surveyID)
}

func (r *shareTokenRepository) ListAll(ctx context.Context, unusedOnly bool) ([]domain.ShareToken, error) {
	query := `SELECT ` + shareTokenColumns + ` FROM share_tokens`
	if unusedOnly {
		query += ` WHERE used = FALSE`
	}
	query += ` ORDER BY created_at, id`
	return r.list(ctx, query)
}

func (r *shareTokenRepository) TryMarkUsed(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE share_tokens SET used = TRUE WHERE id=$1::uuid AND used = FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, storeError("mark share token used", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *shareTokenRepository) list(ctx context.Context, query string, args ...any) ([]domain.ShareToken, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("list share tokens", err)
	}
	defer rows.Close()

	tokens := make([]domain.ShareToken, 0)
	for rows.Next() {
		var t domain.ShareToken
		if err := rows.Scan(
			&t.ID,
			&t.SurveyID,
			&t.RecipientEmail,
			&t.RecipientMobile,
			&t.SecretDigest,
			&t.ExpiresAt,
			&t.Used,
			&t.CreatedAt,
		); err != nil {
			return nil, storeError("scan share token", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list share tokens", err)
	}
	return tokens, nil
}

func storeError(op string, err error) error {
	if err == pgx.ErrNoRows {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
