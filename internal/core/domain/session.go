package domain

// Account - аутентифицированный администратор.
type Account struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session - снимок сессии, который переживает перезапуск приложения
// (аналог localStorage в исходной панели).
type Session struct {
	User            Account `json:"user"`
	Token           string  `json:"token"`
	IsAuthenticated bool    `json:"isAuthenticated"`
}

// Credentials - данные формы входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const RoleAdmin = "admin"
