package domain

import "errors"

// Определяем переменные-ошибки, которые могут быть возвращены из ядра.
var (
	// ErrServerNotResponding - транспортный сбой: ответ от сервера не получен.
	// Текст показывается пользователю как есть.
	ErrServerNotResponding = errors.New("Server is not responding. Please try again later.")

	// ErrSessionExpired - сервер ответил 401, сессия сброшена.
	ErrSessionExpired = errors.New("session expired, please login again")

	// ErrAdminRequired - аутентификация прошла, но роль не admin.
	ErrAdminRequired = errors.New("access denied: Admin role required")

	// ErrCredentialsRequired - валидация до сетевого вызова: не заполнены поля формы входа.
	ErrCredentialsRequired = errors.New("email and password are required")

	ErrInvalidPage   = errors.New("page number must be >= 1")
	ErrNotAuthorized = errors.New("not authenticated")
)

// RequestError - нормализованная ошибка ответа сервера: сообщение из
// конверта {success:false, message} плюс статус-код для диагностики.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string { return e.Message }

// NewRequestError создает ошибку с сообщением, пригодным для показа пользователю.
func NewRequestError(statusCode int, message string) *RequestError {
	return &RequestError{StatusCode: statusCode, Message: message}
}
