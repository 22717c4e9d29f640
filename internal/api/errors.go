package api

import "net/http"

// Application-wide error codes. Handlers define entity-specific codes (such
// as MEDIA_NOT_FOUND) next to the handlers that use them.
const (
	CodeServerError      = "SERVER_ERROR"
	CodeNotNullViolation = "NOT_NULL_VIOLATION"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUniqueConstraint = "UNIQUE_CONSTRAINT_ERROR"
)

// BadRequest writes a 400 error envelope.
func BadRequest(w http.ResponseWriter, code, message string) {
	WriteJSON(w, http.StatusBadRequest, Error(code, message))
}

// NotFound writes a 404 error envelope.
func NotFound(w http.ResponseWriter, code, message string) {
	WriteJSON(w, http.StatusNotFound, Error(code, message))
}

// ServerError writes the generic 500 error envelope. Raw error details are
// never included in the body; callers log the original error.
func ServerError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError,
		Error(CodeServerError, "An internal server error occurred"))
}
