package model

import "errors"

// Domain sentinel errors. Repositories and services return these; handlers
// translate them into response.ErrCode values via errors.Is.
var (
	// ErrNotFound covers both "entity absent" and "caller is not the owner".
	// The two are deliberately indistinguishable so a caller cannot probe
	// for the existence of another user's data.
	ErrNotFound = errors.New("not found")

	// ErrAttemptLimitExceeded is returned when starting an attempt would
	// exceed the test's allowed_attempts limit.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")

	// ErrAttemptNotWritable is returned on any response write against an
	// attempt that is no longer IN_PROGRESS.
	ErrAttemptNotWritable = errors.New("attempt is not writable")

	// ErrAlreadySubmitted is returned on a duplicate finalize.
	ErrAlreadySubmitted = errors.New("attempt already submitted")

	// ErrNotSubmitted is returned when results are requested for an
	// attempt that is still IN_PROGRESS.
	ErrNotSubmitted = errors.New("attempt not submitted")

	// ErrInvalidAnswerShape is returned when an answer payload does not
	// match the question kind (e.g. option list on a single-choice).
	ErrInvalidAnswerShape = errors.New("answer shape does not match question kind")

	// ErrTestNotAvailable is returned when a student targets a test that
	// is not in PUBLISHED status.
	ErrTestNotAvailable = errors.New("test is not available")

	// ErrNotEnrolled is returned when a student starts an attempt for a
	// course-linked test without an enrollment.
	ErrNotEnrolled = errors.New("not enrolled in course")

	// ErrTestLocked is returned on structural edits to a test that
	// already has attempts against it.
	ErrTestLocked = errors.New("test has attempts and is locked")

	// ErrNoQuestions is returned when publishing a test with no questions.
	ErrNoQuestions = errors.New("test has no questions")

	// ErrNotPublishable is returned when a question set fails the publish
	// shape rules. Wrapped with the offending question id.
	ErrNotPublishable = errors.New("question set is not publishable")

	// ErrConflict is returned on uniqueness violations (duplicate
	// enrollment, duplicate email).
	ErrConflict = errors.New("resource already exists")

	// ErrNotGradable is returned when manual points are assigned to a
	// response whose question kind is auto-scored.
	ErrNotGradable = errors.New("response is not manually gradable")

	// ErrInvalidGrade is returned when assigned points exceed the
	// question's point value.
	ErrInvalidGrade = errors.New("grade exceeds question points")
)
