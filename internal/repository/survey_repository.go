package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/survey-share/internal/domain"
)

// SurveyRepository is the read-only view of the survey store used by sharing.
type SurveyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Survey, error)
	GetWithQuestions(ctx context.Context, id string) (*domain.Survey, error)
}

type surveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository returns a Postgres-backed implementation.
func NewSurveyRepository(pool *pgxpool.Pool) SurveyRepository {
	return &surveyRepository{pool: pool}
}

func (r *surveyRepository) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	const query = `
        SELECT id, user_id, title, description, flow_type, settings, created_at
        FROM surveys WHERE id=$1`

	var (
		survey   domain.Survey
		settings []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&survey.ID,
		&survey.OwnerID,
		&survey.Title,
		&survey.Description,
		&survey.FlowType,
		&settings,
		&survey.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSurveyNotFound
		}
		return nil, storeError("get survey", err)
	}
	survey.Settings = settings
	return &survey, nil
}

func (r *surveyRepository) GetWithQuestions(ctx context.Context, id string) (*domain.Survey, error) {
	survey, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const query = `
        SELECT id, survey_id, question_type, question_text, options, media, created_at
        FROM questions WHERE survey_id=$1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, storeError("list questions", err)
	}
	defer rows.Close()

	survey.Questions = make([]domain.Question, 0)
	for rows.Next() {
		var (
			q              domain.Question
			options, media []byte
		)
		if err := rows.Scan(
			&q.ID,
			&q.SurveyID,
			&q.QuestionType,
			&q.QuestionText,
			&options,
			&media,
			&q.CreatedAt,
		); err != nil {
			return nil, storeError("scan question", err)
		}
		q.Options = options
		q.Media = media
		survey.Questions = append(survey.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list questions", err)
	}
	return survey, nil
}
