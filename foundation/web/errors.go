package web

// Error carries an http status alongside the underlying error so controllers
// can map repository failures straight to responses.
type Error struct {
	Err    error
	Status int
}

// NewRequestError is the usual way request-scoped errors are produced.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
