package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidContent ErrCode = "INVALID_CONTENT"
	ErrInvalidQuiz    ErrCode = "INVALID_QUIZ"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrCourseNotFound    ErrCode = "COURSE_NOT_FOUND"
	ErrLessonNotFound    ErrCode = "LESSON_NOT_FOUND"
	ErrQuizNotFound      ErrCode = "QUIZ_NOT_FOUND"
	ErrSlugExists        ErrCode = "SLUG_EXISTS"
	ErrQuizExists        ErrCode = "QUIZ_EXISTS"
	ErrLessonNotInCourse ErrCode = "LESSON_NOT_IN_COURSE"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUploadFailed    ErrCode = "UPLOAD_FAILED"

	// ─── Live attempts ─────────────────────────────────────────────────
	ErrUnknownAction ErrCode = "UNKNOWN_ACTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidContent:
		return "The lesson content does not match its content type."
	case ErrInvalidQuiz:
		return "The quiz is incomplete. Every question needs text, at least two filled choices and exactly one correct choice."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrCourseNotFound:
		return "Course not found."
	case ErrLessonNotFound:
		return "Lesson not found."
	case ErrQuizNotFound:
		return "Quiz not found."
	case ErrSlugExists:
		return "Slug already exists."
	case ErrQuizExists:
		return "This course already has a quiz. Update it instead."
	case ErrLessonNotInCourse:
		return "The lesson does not belong to this course."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrUploadFailed:
		return "The file could not be stored. Please try again."

	// ─── Live attempts ─────────────────────────────────────────────────
	case ErrUnknownAction:
		return "Unknown action."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
