package service

import (
	"errors"
	"testing"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func choiceQuestion(kind model.QuestionKind, points float64, correct ...bool) *model.Question {
	q := &model.Question{
		ID:     uuid.New(),
		TestID: uuid.New(),
		Kind:   kind,
		Points: points,
	}
	for i, c := range correct {
		q.Options = append(q.Options, model.QuestionOption{
			ID:        uuid.New(),
			IsCorrect: c,
			OrderNum:  i + 1,
		})
	}
	return q
}

func TestScoreAnswer_SingleChoice(t *testing.T) {
	q := choiceQuestion(model.QuestionKindSingleChoice, 10, true, false, false)

	tests := []struct {
		name        string
		answer      model.AnswerPayload
		wantErr     error
		wantCorrect bool
		wantPoints  float64
	}{
		{
			name:        "correct option gets full points",
			answer:      model.AnswerPayload{OptionID: &q.Options[0].ID},
			wantCorrect: true,
			wantPoints:  10,
		},
		{
			name:        "wrong option gets zero",
			answer:      model.AnswerPayload{OptionID: &q.Options[1].ID},
			wantCorrect: false,
			wantPoints:  0,
		},
		{
			name:    "missing option id",
			answer:  model.AnswerPayload{},
			wantErr: model.ErrInvalidAnswerShape,
		},
		{
			name:    "option list on single choice",
			answer:  model.AnswerPayload{OptionIDs: []uuid.UUID{q.Options[0].ID}},
			wantErr: model.ErrInvalidAnswerShape,
		},
		{
			name:    "text on single choice",
			answer:  model.AnswerPayload{OptionID: &q.Options[0].ID, Text: strPtr("hi")},
			wantErr: model.ErrInvalidAnswerShape,
		},
		{
			name: "foreign option id",
			answer: func() model.AnswerPayload {
				id := uuid.New()
				return model.AnswerPayload{OptionID: &id}
			}(),
			wantErr: model.ErrInvalidAnswerShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ScoreAnswer(q, tt.answer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.IsCorrect == nil || *out.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", out.IsCorrect, tt.wantCorrect)
			}
			if out.Points != tt.wantPoints {
				t.Errorf("Points = %v, want %v", out.Points, tt.wantPoints)
			}
		})
	}
}

func TestScoreAnswer_MultiSelect(t *testing.T) {
	// Options 0 and 2 are correct.
	q := choiceQuestion(model.QuestionKindMultiSelect, 12, true, false, true, false)
	correctSet := []uuid.UUID{q.Options[0].ID, q.Options[2].ID}

	tests := []struct {
		name        string
		ids         []uuid.UUID
		wantErr     error
		wantCorrect bool
		wantPoints  float64
	}{
		{
			name:        "exact set gets full points",
			ids:         correctSet,
			wantCorrect: true,
			wantPoints:  12,
		},
		{
			name:        "order does not matter",
			ids:         []uuid.UUID{q.Options[2].ID, q.Options[0].ID},
			wantCorrect: true,
			wantPoints:  12,
		},
		{
			name:        "subset gets zero, no partial credit",
			ids:         []uuid.UUID{q.Options[0].ID},
			wantCorrect: false,
		},
		{
			name:        "superset gets zero",
			ids:         []uuid.UUID{q.Options[0].ID, q.Options[1].ID, q.Options[2].ID},
			wantCorrect: false,
		},
		{
			name:        "all wrong gets zero",
			ids:         []uuid.UUID{q.Options[1].ID, q.Options[3].ID},
			wantCorrect: false,
		},
		{
			name:    "empty list",
			ids:     nil,
			wantErr: model.ErrInvalidAnswerShape,
		},
		{
			name:    "duplicate option id",
			ids:     []uuid.UUID{q.Options[0].ID, q.Options[0].ID},
			wantErr: model.ErrInvalidAnswerShape,
		},
		{
			name:    "foreign option id",
			ids:     []uuid.UUID{q.Options[0].ID, uuid.New()},
			wantErr: model.ErrInvalidAnswerShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ScoreAnswer(q, model.AnswerPayload{OptionIDs: tt.ids})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.IsCorrect == nil || *out.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", out.IsCorrect, tt.wantCorrect)
			}
			if out.Points != tt.wantPoints {
				t.Errorf("Points = %v, want %v", out.Points, tt.wantPoints)
			}
		})
	}
}

func TestScoreAnswer_TextKinds(t *testing.T) {
	for _, kind := range []model.QuestionKind{model.QuestionKindShortText, model.QuestionKindEssay} {
		t.Run(string(kind), func(t *testing.T) {
			q := &model.Question{ID: uuid.New(), Kind: kind, Points: 15}

			out, err := ScoreAnswer(q, model.AnswerPayload{Text: strPtr("free text answer")})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.IsCorrect != nil {
				t.Errorf("IsCorrect = %v, want nil (awaiting manual grading)", *out.IsCorrect)
			}
			if out.Points != 0 {
				t.Errorf("Points = %v, want 0", out.Points)
			}

			id := uuid.New()
			if _, err := ScoreAnswer(q, model.AnswerPayload{OptionID: &id}); !errors.Is(err, model.ErrInvalidAnswerShape) {
				t.Errorf("option id on %s: err = %v, want ErrInvalidAnswerShape", kind, err)
			}
			if _, err := ScoreAnswer(q, model.AnswerPayload{}); !errors.Is(err, model.ErrInvalidAnswerShape) {
				t.Errorf("empty payload on %s: err = %v, want ErrInvalidAnswerShape", kind, err)
			}
		})
	}
}

func TestScoreAnswer_UnknownKind(t *testing.T) {
	q := &model.Question{ID: uuid.New(), Kind: "TRUE_FALSE", Points: 5}
	if _, err := ScoreAnswer(q, model.AnswerPayload{Text: strPtr("x")}); err == nil {
		t.Fatal("expected error for unhandled question kind")
	}
}
