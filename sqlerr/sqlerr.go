// Package sqlerr defines the wire-level error taxonomy from the
// request/response path (spec section 7), grounded on the teacher's
// response.Code pattern and the original implementation's
// _exceptions.py error-code ranges.
package sqlerr

import "github.com/cockroachdb/errors"

// Kind identifies which row of the error taxonomy an error belongs to.
type Kind string

const (
	KindInvalidParameterSelection Kind = "invalid_parameter_selection"
	KindInvalidInput              Kind = "invalid_input"
	KindUnauthorized              Kind = "unauthorized"
	KindForbidden                 Kind = "forbidden"
	KindConfigurationError        Kind = "configuration_error"
	KindDatasetResultTooLarge     Kind = "dataset_result_too_large"
	KindExecutionError            Kind = "execution_error"
)

// Error is a wire-taxonomy error: a Kind plus a human message, wrapping
// an optional cause with a stack trace via cockroachdb/errors.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func new_(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: errors.Newf(format, args...).Error()}
}

// InvalidParameterSelection reports a parse/validation failure in the
// parameter options layer (C1). raw and reason are included in Message
// per spec section 7.
func InvalidParameterSelection(raw, reason string) *Error {
	return new_(KindInvalidParameterSelection, "invalid parameter selection %q: %s", raw, reason)
}

// InvalidInput reports reserved-query-key misuse, duplicate
// configurables, or other request-shape issues.
func InvalidInput(format string, args ...any) *Error {
	return new_(KindInvalidInput, format, args...)
}

// Unauthorized reports a missing or invalid bearer token.
func Unauthorized(format string, args ...any) *Error {
	return new_(KindUnauthorized, format, args...)
}

// Forbidden reports a scope denial from the Authenticator.
func Forbidden(format string, args ...any) *Error {
	return new_(KindForbidden, format, args...)
}

// ConfigurationError reports a project-side problem discovered at
// runtime (unknown parameter name, DAG cycle, duplicate model names,
// invalid parent typing). Never attributable to the client.
func ConfigurationError(format string, args ...any) *Error {
	return new_(KindConfigurationError, format, args...)
}

// ConfigurationErrorWrap wraps an existing error as a configuration_error,
// preserving its stack trace via cockroachdb/errors.
func ConfigurationErrorWrap(err error, format string, args ...any) *Error {
	e := new_(KindConfigurationError, format, args...)
	e.cause = errors.Wrapf(err, format, args...)
	return e
}

// DatasetResultTooLarge reports a result whose row count exceeds
// max_rows_output.
func DatasetResultTooLarge(rows, max int) *Error {
	return new_(KindDatasetResultTooLarge, "dataset result has %d rows, exceeding the maximum of %d", rows, max)
}

// ExecutionError reports a downstream SQL or imperative model failure,
// attributed to a single node per spec section 4.4/7.
func ExecutionError(model string, cause error) *Error {
	e := new_(KindExecutionError, "model %q failed to execute", model)
	e.cause = errors.Wrap(cause, "execution failed")
	return e
}

// As extracts a *Error from err, following the standard library's
// errors.As semantics.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
