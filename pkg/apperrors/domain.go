package apperrors

import "net/http"

// Factories and predefined errors for the application domain.

// DuplicateApplication is raised both by the store's unique constraint
// (cheap path) and by the decrypt-based uniqueness verifier (expensive
// path). Details carry the human-readable conflict list when known.
func DuplicateApplication(conflicts []string) *AppError {
	e := New(CodeDuplicateApplication, "application",
		"An application with the same identifying information already exists",
		http.StatusConflict)
	if len(conflicts) > 0 {
		e.Details = conflicts
	}
	return e
}

// StoreError wraps a database failure; the caller sees a generic message.
func StoreError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "application", "Failed to process application", http.StatusInternalServerError)
}

// EncryptionError wraps a field-encryption failure on the write path.
func EncryptionError(err error) *AppError {
	return Wrap(err, CodeEncryptionError, "application", "Failed to process application", http.StatusInternalServerError)
}

var ErrApplicationNotFound = New(
	CodeNotFound,
	"application",
	"Application not found",
	http.StatusNotFound,
)

var ErrUnauthorized = New(
	CodeUnauthorized,
	"auth",
	"Authentication required",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)
