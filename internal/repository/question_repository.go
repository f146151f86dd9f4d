package repository

import (
	"context"
	"errors"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a question and its options in one transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (test_id, prompt, kind, points, order_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.TestID, q.Prompt, q.Kind, q.Points, q.OrderNum,
	).Scan(&q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		opt := &q.Options[i]
		opt.QuestionID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO question_options (question_id, text, is_correct, order_num)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			opt.QuestionID, opt.Text, opt.IsCorrect, opt.OrderNum,
		).Scan(&opt.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByIDAndTest retrieves a question with its options, scoped to a test.
// The test scoping prevents answering question X through attempt Y's test.
func (r *QuestionRepository) GetByIDAndTest(ctx context.Context, id, testID uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, prompt, kind, points, order_num
		 FROM questions WHERE id = $1 AND test_id = $2`, id, testID,
	).Scan(&q.ID, &q.TestID, &q.Prompt, &q.Kind, &q.Points, &q.OrderNum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	opts, err := r.listOptions(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Options = opts
	return q, nil
}

// ListByTest retrieves all questions for a test, with options, ordered by
// order_num.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, prompt, kind, points, order_num
		 FROM questions WHERE test_id = $1
		 ORDER BY order_num`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Prompt, &q.Kind, &q.Points, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		opts, err := r.listOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}
	return questions, nil
}

// Delete removes a question and, via FK cascade, its options.
func (r *QuestionRepository) Delete(ctx context.Context, id, testID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM questions WHERE id = $1 AND test_id = $2`, id, testID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ReplaceByTest swaps a test's full question set in one transaction.
// Used by the bulk authoring endpoint.
func (r *QuestionRepository) ReplaceByTest(ctx context.Context, testID uuid.UUID, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID); err != nil {
		return err
	}

	for i := range questions {
		q := &questions[i]
		q.TestID = testID
		err = tx.QueryRow(ctx,
			`INSERT INTO questions (test_id, prompt, kind, points, order_num)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			q.TestID, q.Prompt, q.Kind, q.Points, q.OrderNum,
		).Scan(&q.ID)
		if err != nil {
			return err
		}
		for j := range q.Options {
			opt := &q.Options[j]
			opt.QuestionID = q.ID
			err = tx.QueryRow(ctx,
				`INSERT INTO question_options (question_id, text, is_correct, order_num)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				opt.QuestionID, opt.Text, opt.IsCorrect, opt.OrderNum,
			).Scan(&opt.ID)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *QuestionRepository) listOptions(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, text, is_correct, order_num
		 FROM question_options WHERE question_id = $1
		 ORDER BY order_num`, questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []model.QuestionOption
	for rows.Next() {
		var o model.QuestionOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.OrderNum); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
