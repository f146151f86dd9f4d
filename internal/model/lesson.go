package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseModule groups lessons inside a course, displayed in order.
type CourseModule struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	OrderNum int       `json:"order_num"`
	Lessons  []Lesson  `json:"lessons,omitempty"`
}

// Lesson is a single content unit inside a module.
type Lesson struct {
	ID        uuid.UUID `json:"id"`
	ModuleID  uuid.UUID `json:"module_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OrderNum  int       `json:"order_num"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateModuleRequest is the payload for adding a module to a course.
type CreateModuleRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	OrderNum int    `json:"order_num" binding:"min=0"`
}

// CreateLessonRequest is the payload for adding a lesson to a module.
type CreateLessonRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Content  string `json:"content" binding:"max=100000"`
	OrderNum int    `json:"order_num" binding:"min=0"`
}

// UpdateLessonRequest is the payload for updating a lesson.
type UpdateLessonRequest struct {
	Title    string `json:"title" binding:"omitempty,min=1,max=255"`
	Content  *string `json:"content" binding:"omitempty,max=100000"`
	OrderNum *int   `json:"order_num" binding:"omitempty,min=0"`
}
