package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates test attempt states.
//
// State machine: IN_PROGRESS --(submit)--> COMPLETED --(manual grade)-->
// GRADED. No transition leads back to IN_PROGRESS; IN_PROGRESS is the only
// state in which child responses may be written.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
	AttemptStatusGraded     AttemptStatus = "GRADED"
)

// Terminal reports whether no further responses may be written.
func (s AttemptStatus) Terminal() bool {
	return s != AttemptStatusInProgress
}

// TestAttempt represents one user's one attempt at one test.
type TestAttempt struct {
	ID          uuid.UUID     `json:"id"`
	TestID      uuid.UUID     `json:"test_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Status      AttemptStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	TotalScore  *float64      `json:"total_score,omitempty"`
	MaxScore    *float64      `json:"max_score,omitempty"`
}

// AttemptState is the progress view of an in-flight attempt.
type AttemptState struct {
	AttemptID        uuid.UUID     `json:"attempt_id"`
	Status           AttemptStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	ElapsedSeconds   float64       `json:"elapsed_seconds"`
	RemainingSeconds *float64      `json:"remaining_seconds,omitempty"`
	AnsweredCount    int           `json:"answered_count"`
	QuestionCount    int           `json:"question_count"`
}

// AttemptScore holds the fixed totals written at finalize time.
type AttemptScore struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	TotalScore  float64   `json:"total_score"`
	MaxScore    float64   `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Percentage returns total/max*100, defined as 0 when max is 0.
func (s AttemptScore) Percentage() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.TotalScore / s.MaxScore * 100
}

// AttemptSummary is the finalize/result header returned to the caller.
type AttemptSummary struct {
	AttemptID   uuid.UUID     `json:"attempt_id"`
	Status      AttemptStatus `json:"status"`
	TotalScore  float64       `json:"total_score"`
	MaxScore    float64       `json:"max_score"`
	Percentage  float64       `json:"percentage"`
	Passed      bool          `json:"passed"`
	SubmittedAt time.Time     `json:"submitted_at"`
}
