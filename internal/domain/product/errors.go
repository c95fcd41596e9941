package product

// ValidationError reports product data or usage that violates the entity
// contract, as opposed to a failure of the underlying storage. Callers pick
// it out of wrapped chains with errors.As.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }
