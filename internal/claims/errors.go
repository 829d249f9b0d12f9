package claims

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidPolicy        = "invalid_policy"
	CodeInvalidEvent         = "invalid_event"
	CodeUnsupportedMediaType = "unsupported_media_type"
	CodeMissingCredential    = "missing_credential"
	CodeNetworkFailure       = "network_failure"
	CodeOracleRejected       = "oracle_rejected"
	CodeEmptyPolicySet       = "empty_policy_set"
	CodeEstimationInFlight   = "estimation_in_flight"
)

// Error carries one of the Code constants. Two errors match under errors.Is
// when their codes are equal, so callers test against the Err* sentinels.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Transient reports whether the user should be told to try again.
func (e *Error) Transient() bool {
	switch e.Code {
	case CodeNetworkFailure, CodeOracleRejected, CodeMissingCredential, CodeEstimationInFlight:
		return true
	}
	return false
}

var (
	ErrInvalidPolicy        = &Error{Code: CodeInvalidPolicy}
	ErrInvalidEvent         = &Error{Code: CodeInvalidEvent}
	ErrUnsupportedMediaType = &Error{Code: CodeUnsupportedMediaType}
	ErrMissingCredential    = &Error{Code: CodeMissingCredential}
	ErrNetworkFailure       = &Error{Code: CodeNetworkFailure}
	ErrOracleRejected       = &Error{Code: CodeOracleRejected}
	ErrEmptyPolicySet       = &Error{Code: CodeEmptyPolicySet}
	ErrEstimationInFlight   = &Error{Code: CodeEstimationInFlight}
)

func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func invalidPolicy(format string, args ...any) error {
	return NewError(CodeInvalidPolicy, fmt.Sprintf(format, args...), nil)
}

func invalidEvent(format string, args ...any) error {
	return NewError(CodeInvalidEvent, fmt.Sprintf(format, args...), nil)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
