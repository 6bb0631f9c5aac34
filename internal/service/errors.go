package service

import "fmt"

// здесь происходит проверка ошибок бизнес-логики

const CodeNotFound = "NOT_FOUND"
const CodeForbidden = "FORBIDDEN"
const CodeUnauthenticated = "UNAUTHENTICATED"
const CodeValidation = "VALIDATION_ERROR"
const CodeInvalidCredentials = "INVALID_CREDENTIALS"
const CodeDuplicate = "DUPLICATE"

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewForbidden: ресурс существует, но принадлежит другому владельцу.
// Чужие данные в деталях не раскрываются.
func NewForbidden(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeForbidden,
		Message: "доступ к чужому ресурсу запрещён",
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewUnauthenticated(reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthenticated,
		Message: "требуется аутентификация: " + reason,
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewInvalidCredentials() *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidCredentials,
		Message: "неверное имя пользователя или пароль",
	}
}

func NewDuplicate(field string) *BusinessError {
	return &BusinessError{
		Code:    CodeDuplicate,
		Message: fmt.Sprintf("значение поля '%s' уже занято", field),
		Details: map[string]any{
			"field": field,
		},
	}
}
