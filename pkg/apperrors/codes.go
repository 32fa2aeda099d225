package apperrors

// ErrorCode classifies application errors independent of transport.
type ErrorCode string

const (
	// System level.
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeEncryptionError      ErrorCode = "ENCRYPTION_ERROR"

	// Business logic.
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	CodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	CodeConflict             ErrorCode = "CONFLICT"

	// Auth (admin surface only).
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)
