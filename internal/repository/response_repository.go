package repository

import (
	"context"
	"encoding/json"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponseRepository handles question response data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// UpsertInProgress writes (or overwrites) the response for one
// (attempt, question) pair, but only while the attempt is IN_PROGRESS.
//
// The conditional touch on the attempt row does double duty: it re-verifies
// status at write time instead of trusting an earlier read, and its row
// lock blocks a concurrent finalize until this write commits (or vice
// versa). Zero rows affected → model.ErrAttemptNotWritable.
func (r *ResponseRepository) UpsertInProgress(ctx context.Context, resp *model.QuestionResponse) error {
	raw, err := json.Marshal(resp.Answer)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE test_attempts SET updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		resp.AttemptID, model.AttemptStatusInProgress,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrAttemptNotWritable
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO question_responses (attempt_id, question_id, answer, is_correct, points_awarded)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer,
		     is_correct = EXCLUDED.is_correct,
		     points_awarded = EXCLUDED.points_awarded,
		     updated_at = NOW()
		 RETURNING id, updated_at`,
		resp.AttemptID, resp.QuestionID, raw, resp.IsCorrect, resp.PointsAwarded,
	).Scan(&resp.ID, &resp.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CountByAttempt returns how many questions have a recorded response.
func (r *ResponseRepository) CountByAttempt(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM question_responses WHERE attempt_id = $1`, attemptID,
	).Scan(&count)
	return count, err
}

// ListReviewByAttempt returns the per-question results view: every question
// of the attempt's test (LEFT JOIN), with the recorded response if present.
// Unanswered questions appear with zero points and their full weight intact.
func (r *ResponseRepository) ListReviewByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.ResponseReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.prompt, q.kind, q.points, q.order_num,
		        r.answer, r.is_correct, COALESCE(r.points_awarded, 0),
		        r.id IS NOT NULL AS answered
		 FROM questions q
		 JOIN test_attempts a ON a.test_id = q.test_id
		 LEFT JOIN question_responses r
		        ON r.attempt_id = a.id AND r.question_id = q.id
		 WHERE a.id = $1
		 ORDER BY q.order_num`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var review []model.ResponseReview
	for rows.Next() {
		var rv model.ResponseReview
		var rawAnswer []byte
		if err := rows.Scan(
			&rv.QuestionID, &rv.Prompt, &rv.Kind, &rv.Points, &rv.OrderNum,
			&rawAnswer, &rv.IsCorrect, &rv.PointsAwarded, &rv.Answered,
		); err != nil {
			return nil, err
		}
		if rawAnswer != nil {
			var ans model.AnswerPayload
			if err := json.Unmarshal(rawAnswer, &ans); err != nil {
				return nil, err
			}
			rv.Answer = &ans
		}
		review = append(review, rv)
	}
	return review, rows.Err()
}
