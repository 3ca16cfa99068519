package llm

import "errors"

var (
	// ErrUnavailable indicates the inference endpoint is unreachable.
	ErrUnavailable = errors.New("model endpoint unavailable")

	// ErrTimeout indicates the model request exceeded the configured timeout.
	ErrTimeout = errors.New("model request timed out")

	// ErrInvalidOutput indicates the model response could not be parsed
	// into the expected format, or was too short to be plausible.
	ErrInvalidOutput = errors.New("invalid model output")
)
