package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden   ErrCode = "FORBIDDEN"
	ErrNotEnrolled ErrCode = "NOT_ENROLLED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation         ErrCode = "VALIDATION_ERROR"
	ErrInvalidID          ErrCode = "INVALID_ID"
	ErrInvalidPayload     ErrCode = "INVALID_PAYLOAD"
	ErrInvalidAnswerShape ErrCode = "INVALID_ANSWER_SHAPE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrAttemptLimitExceeded ErrCode = "ATTEMPT_LIMIT_EXCEEDED"
	ErrAttemptNotWritable   ErrCode = "ATTEMPT_NOT_WRITABLE"
	ErrAlreadySubmitted     ErrCode = "ALREADY_SUBMITTED"
	ErrNotSubmitted         ErrCode = "NOT_SUBMITTED"

	// ─── Test authoring ────────────────────────────────────────────────
	ErrTestNotAvailable ErrCode = "TEST_NOT_AVAILABLE"
	ErrTestLocked       ErrCode = "TEST_LOCKED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrNotPublishable   ErrCode = "NOT_PUBLISHABLE"
	ErrNotGradable      ErrCode = "NOT_GRADABLE"
	ErrInvalidGrade     ErrCode = "INVALID_GRADE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotEnrolled:
		return "You are not enrolled in the course this test belongs to."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidAnswerShape:
		return "The answer does not match the question's expected shape."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	case ErrAttemptLimitExceeded:
		return "You have used all allowed attempts for this test."
	case ErrAttemptNotWritable:
		return "This attempt has been submitted and no longer accepts answers."
	case ErrAlreadySubmitted:
		return "This attempt has already been submitted."
	case ErrNotSubmitted:
		return "Results are not available until the attempt is submitted."

	// ─── Test authoring ────────────────────────────────────────────────
	case ErrTestNotAvailable:
		return "This test is not currently available."
	case ErrTestLocked:
		return "This test already has attempts and cannot be restructured."
	case ErrNoQuestions:
		return "This test has no questions."
	case ErrNotPublishable:
		return "The test's questions are not valid for publishing."
	case ErrNotGradable:
		return "This response is auto-scored and cannot be graded manually."
	case ErrInvalidGrade:
		return "The assigned points exceed the question's point value."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
