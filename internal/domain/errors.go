package domain

import "errors"

// Виды ошибок. Проверяются через errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrNotFound           = errors.New("not found")
	ErrUpload             = errors.New("upload error")
)

// Error: ошибка бизнес-логики с сообщением для клиента.
// Cause (если есть) только логируется и наружу не отдаётся.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NewConflictError(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func NewInvalidCredentialsError(msg string) error {
	return &Error{Kind: ErrInvalidCredentials, Message: msg}
}

func NewNotAuthorizedError(msg string) error {
	return &Error{Kind: ErrNotAuthorized, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NewUploadError(msg string, cause error) error {
	return &Error{Kind: ErrUpload, Message: msg, Cause: cause}
}
