package service

import (
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
)

// ScoreOutcome is the result of scoring one answer at write time.
// IsCorrect stays nil for kinds that await manual grading.
type ScoreOutcome struct {
	IsCorrect *bool
	Points    float64
}

// ScoreAnswer validates the answer payload against the question kind and
// computes correctness and points. The switch is exhaustive over
// model.QuestionKind: a new kind added to the model without a branch here
// fails loudly instead of being silently scored zero.
//
// Policy choices:
//   - SINGLE_CHOICE: full points iff the submitted option is the one
//     flagged correct.
//   - MULTI_SELECT: exact set match — full points iff the submitted set
//     equals the correct set, zero otherwise. No partial credit.
//   - SHORT_TEXT / ESSAY: recorded unscored; zero points and nil
//     correctness until manual grading.
func ScoreAnswer(q *model.Question, ans model.AnswerPayload) (ScoreOutcome, error) {
	switch q.Kind {
	case model.QuestionKindSingleChoice:
		if ans.OptionID == nil || len(ans.OptionIDs) > 0 || ans.Text != nil {
			return ScoreOutcome{}, model.ErrInvalidAnswerShape
		}
		if !optionBelongs(q, *ans.OptionID) {
			return ScoreOutcome{}, model.ErrInvalidAnswerShape
		}
		correct := false
		for _, opt := range q.Options {
			if opt.IsCorrect && opt.ID == *ans.OptionID {
				correct = true
				break
			}
		}
		return choiceOutcome(correct, q.Points), nil

	case model.QuestionKindMultiSelect:
		if len(ans.OptionIDs) == 0 || ans.OptionID != nil || ans.Text != nil {
			return ScoreOutcome{}, model.ErrInvalidAnswerShape
		}
		submitted := make(map[uuid.UUID]bool, len(ans.OptionIDs))
		for _, id := range ans.OptionIDs {
			if submitted[id] || !optionBelongs(q, id) {
				return ScoreOutcome{}, model.ErrInvalidAnswerShape
			}
			submitted[id] = true
		}
		correctCount := 0
		matched := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correctCount++
				if submitted[opt.ID] {
					matched++
				}
			}
		}
		exact := correctCount > 0 && matched == correctCount && len(submitted) == correctCount
		return choiceOutcome(exact, q.Points), nil

	case model.QuestionKindShortText, model.QuestionKindEssay:
		if ans.Text == nil || ans.OptionID != nil || len(ans.OptionIDs) > 0 {
			return ScoreOutcome{}, model.ErrInvalidAnswerShape
		}
		return ScoreOutcome{IsCorrect: nil, Points: 0}, nil

	default:
		return ScoreOutcome{}, fmt.Errorf("unhandled question kind %q", q.Kind)
	}
}

func optionBelongs(q *model.Question, id uuid.UUID) bool {
	for _, opt := range q.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

func choiceOutcome(correct bool, points float64) ScoreOutcome {
	out := ScoreOutcome{IsCorrect: &correct}
	if correct {
		out.Points = points
	}
	return out
}
