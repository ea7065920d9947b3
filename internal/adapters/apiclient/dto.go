package apiclient

import "encoding/json"

// envelope - единый формат ответа бэкенда: {success, message, data}.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// listHead - метаданные пагинации внутри data списочного ответа.
// Сам массив элементов лежит рядом под ключом, своим для каждого ресурса.
type listHead struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// DTO для запроса входа
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DTO успешного ответа входа (внутри data)
type loginResponse struct {
	User  accountDTO `json:"user"`
	Token string     `json:"token"`
}

type accountDTO struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
