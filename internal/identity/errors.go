package identity

import (
	"errors"
	"fmt"
)

// #region enrollment-errors

// EnrollmentCode names why an enrollment ceremony was aborted.
type EnrollmentCode string

const (
	CodeCardiacQuality     EnrollmentCode = "cardiac_quality"
	CodeSignalTooShort     EnrollmentCode = "signal_too_short"
	CodeInsufficientCycles EnrollmentCode = "insufficient_cycles"
	CodeBadInput           EnrollmentCode = "bad_input"
)

// EnrollmentError is fatal to the ceremony and surfaces to the caller for
// retry.
type EnrollmentError struct {
	Code    EnrollmentCode
	Message string
	Err     error
}

func (e *EnrollmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enrollment failed (%s): %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("enrollment failed (%s): %s", e.Code, e.Message)
}

func (e *EnrollmentError) Unwrap() error {
	return e.Err
}

// EnrollmentCodeOf extracts the code from an error chain, or "".
func EnrollmentCodeOf(err error) EnrollmentCode {
	var ee *EnrollmentError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// #endregion enrollment-errors

// #region manager-errors

// ErrNotAuthenticated is returned when continuous monitoring is started
// outside an authenticated session.
var ErrNotAuthenticated = errors.New("not authenticated")

// #endregion manager-errors
