package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrCaloriesMismatch = errors.New("calories do not match macros")
	ErrNoTargetSet      = errors.New("no target set")
	ErrNoDataForDate    = errors.New("no data for date")
	ErrStorage          = errors.New("storage failure")
)

// Validation reasons.
const (
	ReasonOutOfRange     = "out_of_range"
	ReasonMalformed      = "malformed"
	ReasonNoNonzeroMacro = "no_nonzero_macro"
	ReasonTooLong        = "too_long"
)

type AppError struct {
	Err    error  // kind, one of the Err* sentinels
	Field  string // optional: input field causing the error
	Reason string // optional: machine-readable reason
	Cause  error  // optional: underlying error
}

func (e *AppError) Error() string {
	switch {
	case e.Field != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Err, e.Field, e.Reason, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (%s)", e.Err, e.Field, e.Reason)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Err, e.Cause)
	}
	return e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func Validation(field, reason string) *AppError {
	return &AppError{Err: ErrValidation, Field: field, Reason: reason}
}

func CaloriesMismatch(supplied, derived float64) *AppError {
	return &AppError{
		Err:   ErrCaloriesMismatch,
		Field: "calories",
		Cause: fmt.Errorf("supplied %.2f, derived from macros %.2f", supplied, derived),
	}
}

func NoTargetSet() *AppError {
	return &AppError{Err: ErrNoTargetSet}
}

func NoDataForDate(date string) *AppError {
	return &AppError{Err: ErrNoDataForDate, Cause: fmt.Errorf("date %s", date)}
}

// Storage wraps a persistence error. op names the failed operation for operators.
func Storage(op string, err error) *AppError {
	return &AppError{Err: ErrStorage, Cause: fmt.Errorf("%s: %w", op, err)}
}

// FieldOf returns the field of a validation error, or "" if err carries none.
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// ReasonOf returns the reason of a validation error, or "" if err carries none.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// KindOf returns the sentinel kind of err, or nil if err is not an *AppError.
func KindOf(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Err
	}
	return nil
}
