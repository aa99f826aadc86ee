package errors

import (
	"fmt"
	"net/http"

	"greencycle/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same business error code,
// so copies produced by WithDetails still match the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// WithDetailsf adds formatted detailed error information
func (e *BaseError) WithDetailsf(format string, args ...any) *BaseError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// Predefined error types
var (
	// Lifecycle errors
	ErrInvalidTransition = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TRANSITION",
		"Transição de estado inválida para esta coleta",
		"",
	)

	ErrPartnerCapabilityMismatch = NewBaseError(
		http.StatusBadRequest,
		"PARTNER_CAPABILITY_MISMATCH",
		"O parceiro não trabalha com o material desta coleta",
		"",
	)

	ErrAlreadyAccepted = NewBaseError(
		http.StatusBadRequest,
		"ALREADY_ACCEPTED",
		"Esta coleta já foi aceita por outro parceiro",
		"",
	)

	// Rating errors
	ErrNotFinalized = NewBaseError(
		http.StatusBadRequest,
		"NOT_FINALIZED",
		"A coleta ainda não foi finalizada e paga",
		"",
	)

	ErrRatingAlreadySubmitted = NewBaseError(
		http.StatusBadRequest,
		"RATING_ALREADY_SUBMITTED",
		"Esta avaliação já foi enviada",
		"",
	)

	// Authorization errors
	ErrNotAuthorized = NewBaseError(
		http.StatusForbidden,
		"NOT_AUTHORIZED",
		"Você não tem permissão para esta coleta",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Dados de entrada inválidos",
		"",
	)

	// Not found errors
	ErrCollectionNotFound = NewBaseError(
		http.StatusNotFound,
		"COLLECTION_NOT_FOUND",
		"Coleta não encontrada",
		"",
	)

	ErrPartnerNotFound = NewBaseError(
		http.StatusNotFound,
		"PARTNER_NOT_FOUND",
		"Parceiro não encontrado",
		"",
	)

	ErrClientNotFound = NewBaseError(
		http.StatusNotFound,
		"CLIENT_NOT_FOUND",
		"Cliente não encontrado",
		"",
	)

	ErrMaterialNotFound = NewBaseError(
		http.StatusNotFound,
		"MATERIAL_NOT_FOUND",
		"Material não encontrado",
		"",
	)

	ErrAddressNotFound = NewBaseError(
		http.StatusNotFound,
		"ADDRESS_NOT_FOUND",
		"Endereço não encontrado",
		"",
	)

	ErrRatingNotFound = NewBaseError(
		http.StatusNotFound,
		"RATING_NOT_FOUND",
		"Avaliação não encontrada",
		"",
	)

	ErrImageNotFound = NewBaseError(
		http.StatusNotFound,
		"IMAGE_NOT_FOUND",
		"Imagem não encontrada",
		"",
	)

	// Conflict errors
	ErrAccountAlreadyExists = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_ALREADY_EXISTS",
		"Usuário, CPF ou CNPJ já cadastrado",
		"",
	)

	ErrMaterialAlreadyExists = NewBaseError(
		http.StatusConflict,
		"MATERIAL_ALREADY_EXISTS",
		"Já existe um material com este nome",
		"",
	)

	// External service errors
	ErrImageUploadFailed = NewBaseError(
		http.StatusBadRequest,
		"IMAGE_UPLOAD_FAILED",
		"Falha ao enviar a imagem",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Erro ao processar a senha",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Erro interno do sistema",
		"",
	)
)

// TransitionError reports a lifecycle action whose precondition did not hold.
// It unwraps to ErrInvalidTransition.
type TransitionError struct {
	Action   string
	Expected string
	Actual   string
}

// NewTransitionError creates a transition error for the given action
func NewTransitionError(action, expected, actual string) *TransitionError {
	return &TransitionError{
		Action:   action,
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s: expected %s, actual %s", e.Action, e.Expected, e.Actual)
}

// Unwrap exposes the generic invalid transition error
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// HTTPCode returns the HTTP status code
func (e *TransitionError) HTTPCode() int {
	return ErrInvalidTransition.HTTPCode()
}

// ErrorCode returns the business error code
func (e *TransitionError) ErrorCode() string {
	return ErrInvalidTransition.ErrorCode()
}

// Message returns the user-friendly error message
func (e *TransitionError) Message() string {
	return ErrInvalidTransition.Message()
}

// Details returns the expected and actual states
func (e *TransitionError) Details() string {
	return fmt.Sprintf("action=%s expected=%s actual=%s", e.Action, e.Expected, e.Actual)
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap returns the underlying driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Falha ao executar operação no banco de dados"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
