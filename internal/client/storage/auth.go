package storage

import "context"

//go:generate moq -out auth_mock.go . AuthStorage

// AuthStorage defines interface for storing the viewer session on client.
// The session is written exactly as received from the backend; the client
// performs no at-rest encryption (mobile keychain semantics).
type AuthStorage interface {
	// SaveAuth stores the viewer session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves the stored viewer session
	// Returns ErrAuthNotFound if no session exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored viewer session (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if a non-expired session exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the persisted viewer session
type AuthData struct {
	UserID      string `json:"user_id"`      // UUID пользователя (claim sub)
	Email       string `json:"email"`        // email пользователя
	AccessToken string `json:"access_token"` // JWT access token как получен от сервера
	ExpiresAt   int64  `json:"expires_at"`   // unix seconds истечения токена
}
