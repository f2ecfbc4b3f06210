package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrInvalidLesson       = "Invalid lesson"
	ErrInvalidCSRF         = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests. Please wait a moment and try again."
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"

	// maxFormBytes bounds editor submissions
	maxFormBytes = 256 << 10
)
