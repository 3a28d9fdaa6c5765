package notify

// ValidationError reports an inbound payload that lacks the structure a
// normalizer needs. It aborts the invocation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Invalid returns a ValidationError with the given reason.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
