package jobx

import "github.com/Abraxas-365/reactorbot/pkg/errx"

var jobxErrors = errx.NewRegistry("JOBX")

var (
	ErrNoHandler      = jobxErrors.Register("NO_HANDLER", errx.TypeValidation, 400, "No handler registered for job type")
	ErrInvalidJob     = jobxErrors.Register("INVALID_JOB", errx.TypeValidation, 400, "Invalid job definition")
	ErrInvalidPayload = jobxErrors.Register("INVALID_PAYLOAD", errx.TypeValidation, 400, "Job payload could not be decoded")
	ErrAlreadyRunning = jobxErrors.Register("ALREADY_RUNNING", errx.TypeConflict, 409, "Worker is already running")
	ErrDuplicateJob   = jobxErrors.Register("DUPLICATE_JOB", errx.TypeConflict, 409, "A job with the same key is already scheduled")
)

// IsDuplicate reports whether err signals that a keyed job already exists.
func IsDuplicate(err error) bool {
	return errx.HasCode(err, ErrDuplicateJob)
}

// DuplicateError builds the error queues return for an already scheduled key.
func DuplicateError(key string) *errx.Error {
	return jobxErrors.New(ErrDuplicateJob).WithDetail("key", key)
}
