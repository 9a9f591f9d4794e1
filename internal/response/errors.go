package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrUnauthorized       ErrCode = "UNAUTHORIZED"
	ErrInvalidSession     ErrCode = "INVALID_SESSION"
	ErrSessionExpired     ErrCode = "SESSION_EXPIRED"
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginRequired      ErrCode = "LOGIN_REQUIRED"
	ErrPasswordRequired   ErrCode = "PASSWORD_REQUIRED"
	ErrEmailTokenInvalid  ErrCode = "EMAIL_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrNotSubjectTeacher ErrCode = "NOT_SUBJECT_TEACHER"

	// ─── Registration ──────────────────────────────────────────────────
	ErrMissingData  ErrCode = "MISSING_DATA"
	ErrLoginExists  ErrCode = "LOGIN_EXISTS"
	ErrEmailInvalid ErrCode = "EMAIL_INVALID"
	ErrEmailExists  ErrCode = "EMAIL_EXISTS"
	ErrPhoneExists  ErrCode = "PHONE_EXISTS"
	ErrWeakPassword ErrCode = "WEAK_PASSWORD"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidDate    ErrCode = "INVALID_DATE"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrConflict  ErrCode = "CONFLICT"
	ErrSlotTaken ErrCode = "LESSON_SLOT_TAKEN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrUnauthorized:
		return "Unauthorized"
	case ErrInvalidSession:
		return "Invalid session"
	case ErrSessionExpired:
		return "Session expired"
	case ErrInvalidCredentials:
		return "Invalid credentials"
	case ErrLoginRequired:
		return "Email or login is required"
	case ErrPasswordRequired:
		return "Password is required"
	case ErrEmailTokenInvalid:
		return "Email confirmation token is invalid or expired"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Forbidden"
	case ErrNotSubjectTeacher:
		return "Teacher is not teaching this subject"

	// ─── Registration ──────────────────────────────────────────────────
	case ErrMissingData:
		return "Provide all required data"
	case ErrLoginExists:
		return "Login already exists"
	case ErrEmailInvalid:
		return "Email is invalid"
	case ErrEmailExists:
		return "Email already exists"
	case ErrPhoneExists:
		return "Phone number already exists"
	case ErrWeakPassword:
		return "Password must be at least 8 characters, at most 72 bytes, and contain an uppercase letter, a lowercase letter and a digit"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidDate:
		return "Invalid date format"
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrSlotTaken:
		return "A lesson already exists for this group on the specified date and lesson number"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error"
	case ErrUnavailable:
		return "Service unavailable"
	default:
		return "An unexpected error occurred."
	}
}
