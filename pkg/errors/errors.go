package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrCountMismatch          = errors.New("count mismatch")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrContractNotFound       = errors.New("contract not found")
	ErrContractAlreadyExists  = errors.New("contract already exists")
	ErrEventNotFound          = errors.New("event not found")
	ErrAdministratorNotFound  = errors.New("administrator not found")
	ErrSumMismatch            = errors.New("installments do not sum to total")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidArgument        = "INVALID_ARGUMENT"
	ErrCodeCountMismatch          = "COUNT_MISMATCH"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeContractNotFound       = "CONTRACT_NOT_FOUND"
	ErrCodeContractAlreadyExists  = "CONTRACT_ALREADY_EXISTS"
	ErrCodeEventNotFound          = "EVENT_NOT_FOUND"
	ErrCodeAdministratorNotFound  = "ADMINISTRATOR_NOT_FOUND"
	ErrCodeSumMismatch            = "SUM_MISMATCH"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
	ErrCodeExportError            = "EXPORT_ERROR"
)

// InvalidArgument reports malformed numeric or structural input.
func InvalidArgument(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidArgument,
		fmt.Sprintf(format, args...),
		ErrInvalidArgument,
	)
}

func WrapCountMismatch(expected, actual int) *BusinessError {
	return NewBusinessError(
		ErrCodeCountMismatch,
		fmt.Sprintf("expected %d dates, got %d", expected, actual),
		ErrCountMismatch,
	)
}

func WrapInvalidStateTransition(entity, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStateTransition,
		fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
		ErrInvalidStateTransition,
	)
}

func WrapContractNotFound(contractNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractNotFound,
		fmt.Sprintf("Contract %s not found", contractNumber),
		ErrContractNotFound,
	)
}

func WrapContractAlreadyExists(client, contractNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractAlreadyExists,
		fmt.Sprintf("Contract %s already exists for client %s", contractNumber, client),
		ErrContractAlreadyExists,
	)
}

func WrapEventNotFound(contractNumber string, eventID int) *BusinessError {
	return NewBusinessError(
		ErrCodeEventNotFound,
		fmt.Sprintf("Event %d not found in contract %s", eventID, contractNumber),
		ErrEventNotFound,
	)
}

func WrapAdministratorNotFound(contractNumber, taxID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAdministratorNotFound,
		fmt.Sprintf("Administrator %s not found in contract %s", taxID, contractNumber),
		ErrAdministratorNotFound,
	)
}

func WrapSumMismatch(total, sum string) *BusinessError {
	return NewBusinessError(
		ErrCodeSumMismatch,
		fmt.Sprintf("installments sum to %s, expected %s", sum, total),
		ErrSumMismatch,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapExportError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeExportError,
		"workbook export failed",
		err,
	)
}

// Code extracts the business error code from err, or "" when err does not
// carry one.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
