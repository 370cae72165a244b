package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal errors (defects)
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents invalid input or configuration
	TypeValidation Type = "VALIDATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeExternal represents errors from external services (GitHub, Redis, SES)
	TypeExternal Type = "EXTERNAL"

	// TypeCancelled represents work that was stopped by a cancellation signal.
	// Callers usually treat it as expected rather than as a defect.
	TypeCancelled Type = "CANCELLED"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
