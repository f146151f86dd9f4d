package service

import (
	"errors"
	"testing"

	"github.com/coursekit/coursekit-backend/internal/model"
)

func TestValidatePublishable(t *testing.T) {
	single := func(correct ...bool) model.Question {
		return *choiceQuestion(model.QuestionKindSingleChoice, 10, correct...)
	}
	multi := func(correct ...bool) model.Question {
		return *choiceQuestion(model.QuestionKindMultiSelect, 10, correct...)
	}

	tests := []struct {
		name      string
		questions []model.Question
		wantErr   error
	}{
		{
			name:    "empty test",
			wantErr: model.ErrNoQuestions,
		},
		{
			name:      "valid mixed set",
			questions: []model.Question{single(true, false), multi(true, true, false), {Kind: model.QuestionKindEssay, Points: 5}},
		},
		{
			name:      "single choice with one option",
			questions: []model.Question{single(true)},
			wantErr:   model.ErrNotPublishable,
		},
		{
			name:      "single choice without a correct option",
			questions: []model.Question{single(false, false)},
			wantErr:   model.ErrNotPublishable,
		},
		{
			name:      "single choice with two correct options",
			questions: []model.Question{single(true, true)},
			wantErr:   model.ErrNotPublishable,
		},
		{
			name:      "multi select without a correct option",
			questions: []model.Question{multi(false, false, false)},
			wantErr:   model.ErrNotPublishable,
		},
		{
			name:      "multi select with every option correct",
			questions: []model.Question{multi(true, true)},
		},
		{
			name:      "text question alone",
			questions: []model.Question{{Kind: model.QuestionKindShortText, Points: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublishable(tt.questions)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuestionShape(t *testing.T) {
	textWithOptions := choiceQuestion(model.QuestionKindShortText, 5, true)

	if err := validateQuestionShape(textWithOptions); !errors.Is(err, model.ErrNotPublishable) {
		t.Errorf("text question with options: err = %v, want ErrNotPublishable", err)
	}
	if err := validateQuestionShape(&model.Question{Kind: model.QuestionKindEssay, Points: 5}); err != nil {
		t.Errorf("bare essay question: %v", err)
	}
	if err := validateQuestionShape(choiceQuestion(model.QuestionKindSingleChoice, 5, true, false)); err != nil {
		t.Errorf("valid single choice: %v", err)
	}
}

func TestIntPtrEqual(t *testing.T) {
	a, b, c := 10, 10, 20

	tests := []struct {
		name string
		x, y *int
		want bool
	}{
		{"both nil", nil, nil, true},
		{"left nil", nil, &a, false},
		{"right nil", &a, nil, false},
		{"equal values", &a, &b, true},
		{"different values", &a, &c, false},
	}
	for _, tt := range tests {
		if got := intPtrEqual(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}
