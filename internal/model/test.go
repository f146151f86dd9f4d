package model

import (
	"time"

	"github.com/google/uuid"
)

// TestKind enumerates assessment flavors.
type TestKind string

const (
	TestKindPractice TestKind = "PRACTICE"
	TestKindQuiz     TestKind = "QUIZ"
	TestKindExam     TestKind = "EXAM"
)

// TestStatus enumerates the authoring lifecycle of a test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
	TestStatusArchived  TestStatus = "ARCHIVED"
)

// Test represents a named assessment, optionally linked to a course/module.
type Test struct {
	ID               uuid.UUID  `json:"id"`
	CourseID         *uuid.UUID `json:"course_id,omitempty"`
	ModuleID         *uuid.UUID `json:"module_id,omitempty"`
	AuthorID         uuid.UUID  `json:"author_id"`
	Title            string     `json:"title"`
	Kind             TestKind   `json:"kind"`
	TimeLimitSeconds *int       `json:"time_limit_seconds,omitempty"`
	PassingScore     float64    `json:"passing_score"`
	AllowedAttempts  *int       `json:"allowed_attempts,omitempty"`
	RandomizeOrder   bool       `json:"randomize_order"`
	Status           TestStatus `json:"status"`
	QuestionCount    int        `json:"question_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a test.
type CreateTestRequest struct {
	CourseID         *uuid.UUID `json:"course_id" binding:"omitempty"`
	ModuleID         *uuid.UUID `json:"module_id" binding:"omitempty"`
	Title            string     `json:"title" binding:"required,min=3,max=255"`
	Kind             string     `json:"kind" binding:"required,oneof=PRACTICE QUIZ EXAM"`
	TimeLimitSeconds *int       `json:"time_limit_seconds" binding:"omitempty,min=30,max=28800"`
	PassingScore     float64    `json:"passing_score" binding:"min=0,max=100"`
	AllowedAttempts  *int       `json:"allowed_attempts" binding:"omitempty,min=1,max=100"`
	RandomizeOrder   bool       `json:"randomize_order"`
}

// UpdateTestRequest is the payload for updating a test. Structural fields
// are rejected by the service once attempts exist.
type UpdateTestRequest struct {
	Title            string   `json:"title" binding:"omitempty,min=3,max=255"`
	Kind             string   `json:"kind" binding:"omitempty,oneof=PRACTICE QUIZ EXAM"`
	TimeLimitSeconds *int     `json:"time_limit_seconds" binding:"omitempty,min=30,max=28800"`
	PassingScore     *float64 `json:"passing_score" binding:"omitempty,min=0,max=100"`
	AllowedAttempts  *int     `json:"allowed_attempts" binding:"omitempty,min=1,max=100"`
	RandomizeOrder   *bool    `json:"randomize_order" binding:"omitempty"`
}

// TestPaper is the student-facing payload: questions and options with
// correctness stripped. Cached in Redis keyed by test id.
type TestPaper struct {
	TestID           uuid.UUID       `json:"test_id"`
	Title            string          `json:"title"`
	Kind             TestKind        `json:"kind"`
	TimeLimitSeconds *int            `json:"time_limit_seconds,omitempty"`
	Questions        []PaperQuestion `json:"questions"`
}

// PaperQuestion is a question as served to a student — no is_correct flags.
type PaperQuestion struct {
	ID       uuid.UUID     `json:"id"`
	Prompt   string        `json:"prompt"`
	Kind     QuestionKind  `json:"kind"`
	Points   float64       `json:"points"`
	OrderNum int           `json:"order_num"`
	Options  []PaperOption `json:"options,omitempty"`
}

// PaperOption is an option as served to a student.
type PaperOption struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	OrderNum int       `json:"order_num"`
}
