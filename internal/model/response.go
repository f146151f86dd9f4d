package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerPayload is the tagged union of answer shapes. Exactly one field
// group must be set, matching the question kind:
//
//	SINGLE_CHOICE → option_id
//	MULTI_SELECT  → option_ids
//	SHORT_TEXT    → text
//	ESSAY         → text
type AnswerPayload struct {
	OptionID  *uuid.UUID  `json:"option_id,omitempty"`
	OptionIDs []uuid.UUID `json:"option_ids,omitempty"`
	Text      *string     `json:"text,omitempty"`
}

// QuestionResponse is one user's answer to one question within one attempt.
// At most one row exists per (attempt, question); resubmission overwrites.
type QuestionResponse struct {
	ID            uuid.UUID    `json:"id"`
	AttemptID     uuid.UUID    `json:"attempt_id"`
	QuestionID    uuid.UUID    `json:"question_id"`
	Answer        AnswerPayload `json:"answer"`
	IsCorrect     *bool        `json:"is_correct,omitempty"`
	PointsAwarded float64      `json:"points_awarded"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// SubmitResponseRequest is the payload for recording an answer.
type SubmitResponseRequest struct {
	QuestionID uuid.UUID       `json:"question_id" binding:"required"`
	Answer     json.RawMessage `json:"answer" binding:"required"`
}

// ResponseReview is one row of the per-question results view: every
// question of the test, joined with the recorded response if any.
type ResponseReview struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	Prompt        string       `json:"prompt"`
	Kind          QuestionKind `json:"kind"`
	Points        float64      `json:"points"`
	OrderNum      int          `json:"order_num"`
	Answered      bool         `json:"answered"`
	Answer        *AnswerPayload `json:"answer,omitempty"`
	IsCorrect     *bool        `json:"is_correct,omitempty"`
	PointsAwarded float64      `json:"points_awarded"`
}

// AttemptResult is the full results view returned after submission.
type AttemptResult struct {
	Summary AttemptSummary   `json:"summary"`
	Review  []ResponseReview `json:"review"`
}

// GradeResponseRequest is the payload for manually grading one response.
type GradeResponseRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Points     float64   `json:"points" binding:"min=0"`
	IsCorrect  *bool     `json:"is_correct" binding:"omitempty"`
}
