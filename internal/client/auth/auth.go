package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session представляет авторизованного viewer'а.
// Ядро читает это значение, но никогда не мутирует.
type Session struct {
	UserID      string // UUID пользователя (claim sub)
	Email       string // email пользователя
	AccessToken string // JWT access token
	ExpiresAt   int64  // unix seconds истечения токена
}

// sessionClaims описывает claims access токена
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Valid проверяет, что сессия не истекла
func (s *Session) Valid() bool {
	return s != nil && time.Now().Unix() < s.ExpiresAt
}

// sessionFromToken декодирует claims access токена без проверки подписи:
// подпись проверяет сервер, клиенту нужны только sub/email/exp.
func sessionFromToken(accessToken string) (*Session, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("access token has no subject claim")
	}

	session := &Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: accessToken,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return session, nil
}
