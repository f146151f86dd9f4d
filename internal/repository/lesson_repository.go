package repository

import (
	"context"
	"errors"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LessonRepository handles course module and lesson data access.
type LessonRepository struct {
	pool *pgxpool.Pool
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

// CreateModule inserts a new module into a course.
func (r *LessonRepository) CreateModule(ctx context.Context, m *model.CourseModule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO course_modules (course_id, title, order_num)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		m.CourseID, m.Title, m.OrderNum,
	).Scan(&m.ID)
}

// GetModule retrieves a module by id, scoped to its course.
func (r *LessonRepository) GetModule(ctx context.Context, id, courseID uuid.UUID) (*model.CourseModule, error) {
	m := &model.CourseModule{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, order_num
		 FROM course_modules WHERE id = $1 AND course_id = $2`, id, courseID,
	).Scan(&m.ID, &m.CourseID, &m.Title, &m.OrderNum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListModulesWithLessons retrieves a course's modules and their lessons,
// both ordered by order_num.
func (r *LessonRepository) ListModulesWithLessons(ctx context.Context, courseID uuid.UUID) ([]model.CourseModule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, order_num
		 FROM course_modules WHERE course_id = $1
		 ORDER BY order_num`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.CourseModule
	for rows.Next() {
		var m model.CourseModule
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.OrderNum); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range modules {
		lessons, err := r.listLessons(ctx, modules[i].ID)
		if err != nil {
			return nil, err
		}
		modules[i].Lessons = lessons
	}
	return modules, nil
}

// DeleteModule removes a module and, via FK cascade, its lessons.
func (r *LessonRepository) DeleteModule(ctx context.Context, id, courseID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM course_modules WHERE id = $1 AND course_id = $2`, id, courseID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CreateLesson inserts a new lesson into a module.
func (r *LessonRepository) CreateLesson(ctx context.Context, l *model.Lesson) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lessons (module_id, title, content, order_num)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		l.ModuleID, l.Title, l.Content, l.OrderNum,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// GetLesson retrieves a lesson by id, scoped to its module.
func (r *LessonRepository) GetLesson(ctx context.Context, id, moduleID uuid.UUID) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, module_id, title, content, order_num, created_at, updated_at
		 FROM lessons WHERE id = $1 AND module_id = $2`, id, moduleID,
	).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.OrderNum, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLesson persists mutable lesson fields.
func (r *LessonRepository) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET title = $2, content = $3, order_num = $4, updated_at = NOW()
		 WHERE id = $1`,
		l.ID, l.Title, l.Content, l.OrderNum,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteLesson removes a lesson.
func (r *LessonRepository) DeleteLesson(ctx context.Context, id, moduleID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM lessons WHERE id = $1 AND module_id = $2`, id, moduleID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *LessonRepository) listLessons(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, module_id, title, content, order_num, created_at, updated_at
		 FROM lessons WHERE module_id = $1
		 ORDER BY order_num`, moduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.OrderNum, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}
