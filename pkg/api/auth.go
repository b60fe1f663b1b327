package api

// LoginRequest представляет запрос на аутентификацию по email/паролю
type LoginRequest struct {
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль пользователя
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	TokenType   string `json:"token_type"`   // тип токена ("bearer")
	ExpiresIn   int64  `json:"expires_in"`   // время жизни access token в секундах
	UserID      string `json:"user_id"`      // UUID пользователя
	Email       string `json:"email"`        // email пользователя
}

// ProfileUpsertRequest представляет идемпотентный upsert профиля покупателя.
// Нужен как защита от foreign-key ошибок при первой записи лайка.
type ProfileUpsertRequest struct {
	UserID   string `json:"user_id"`             // UUID пользователя
	Email    string `json:"email"`               // email пользователя
	FullName string `json:"full_name,omitempty"` // отображаемое имя (опционально)
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
