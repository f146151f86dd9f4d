package model

import (
	"github.com/google/uuid"
)

// QuestionKind enumerates the supported answer shapes. The scoring switch
// in the response service is exhaustive over these values — adding a kind
// here without extending the switch is a loud failure, not a silent skip.
type QuestionKind string

const (
	QuestionKindSingleChoice QuestionKind = "SINGLE_CHOICE"
	QuestionKindMultiSelect  QuestionKind = "MULTI_SELECT"
	QuestionKindShortText    QuestionKind = "SHORT_TEXT"
	QuestionKindEssay        QuestionKind = "ESSAY"
)

// IsChoice reports whether the kind carries options.
func (k QuestionKind) IsChoice() bool {
	return k == QuestionKindSingleChoice || k == QuestionKindMultiSelect
}

// AutoScored reports whether correctness is computed at submission time.
func (k QuestionKind) AutoScored() bool {
	return k == QuestionKindSingleChoice || k == QuestionKindMultiSelect
}

// Question belongs to exactly one test.
type Question struct {
	ID       uuid.UUID        `json:"id"`
	TestID   uuid.UUID        `json:"test_id"`
	Prompt   string           `json:"prompt"`
	Kind     QuestionKind     `json:"kind"`
	Points   float64          `json:"points"`
	OrderNum int              `json:"order_num"`
	Options  []QuestionOption `json:"options,omitempty"`
}

// QuestionOption belongs to exactly one choice-kind question.
type QuestionOption struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	OrderNum   int       `json:"order_num"`
}

// AddQuestionRequest is the payload for adding a question to a test.
type AddQuestionRequest struct {
	Prompt   string             `json:"prompt" binding:"required,min=1,max=5000"`
	Kind     string             `json:"kind" binding:"required,oneof=SINGLE_CHOICE MULTI_SELECT SHORT_TEXT ESSAY"`
	Points   float64            `json:"points" binding:"required,gt=0,max=1000"`
	OrderNum int                `json:"order_num" binding:"min=0"`
	Options  []AddOptionRequest `json:"options" binding:"omitempty,max=20,dive"`
}

// AddOptionRequest is one option inside AddQuestionRequest.
type AddOptionRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=1000"`
	IsCorrect bool   `json:"is_correct"`
	OrderNum  int    `json:"order_num" binding:"min=0"`
}
