package errors

import "time"

// RateLimitError carries the retry metadata the handler needs for the
// 429 response. errors.Is(err, ErrTooManyLoginAttempts) matches it.
type RateLimitError struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return ErrTooManyLoginAttempts.Error()
}

func (e *RateLimitError) Unwrap() error {
	return ErrTooManyLoginAttempts
}
