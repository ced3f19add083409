/*
errors.go - Error types for the payroll engine

ERROR CATEGORIES:
  1. Input errors - malformed times, dates, periods, settings
  2. Lookup errors - unknown employee, template, shift
  3. Provider errors - any failure of the storage collaborator

No error is recovered locally. Provider failures are wrapped once with the
operation name and passed straight up; nothing retries.

USAGE:
  if errors.Is(err, payroll.ErrEmployeeNotFound) {
      ...
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when a clock time is not "HH:MM".
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidDate is returned when a date is not ISO-8601 "YYYY-MM-DD".
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidSettings is returned for negative thresholds or a multiplier below 1.
	ErrInvalidSettings = errors.New("invalid overtime settings")

	// ErrEmployeeNotFound is returned when an employee ID does not resolve.
	ErrEmployeeNotFound = errors.New("employee not found")

	ErrTemplateNotFound = errors.New("shift template not found")
	ErrShiftNotFound    = errors.New("shift not found")

	// ErrDataProvider marks failures of the storage collaborator.
	ErrDataProvider = errors.New("data provider error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time format: %q (want HH:MM)", e.Value)
}

func (e *InvalidTimeError) Unwrap() error { return ErrInvalidTimeFormat }

type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date: %q (want YYYY-MM-DD)", e.Value)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

type EmployeeNotFoundError struct {
	ID EmployeeID
}

func (e *EmployeeNotFoundError) Error() string {
	return fmt.Sprintf("employee %s not found", e.ID)
}

func (e *EmployeeNotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// DataProviderError wraps a storage failure with the operation that hit it.
// Both ErrDataProvider and the underlying cause match errors.Is.
type DataProviderError struct {
	Op  string
	Err error
}

func (e *DataProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataProviderError) Unwrap() []error { return []error{ErrDataProvider, e.Err} }

// ProviderError wraps err as a DataProviderError, passing nil and errors that
// already are one through unchanged.
func ProviderError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dpe *DataProviderError
	if errors.As(err, &dpe) {
		return err
	}
	return &DataProviderError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidSettings)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrShiftNotFound)
}
