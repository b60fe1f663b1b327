package auth

import (
	"context"
	"fmt"
	"log/slog"

	clientapi "github.com/avtomarket/avtomarket/internal/client/api"
	"github.com/avtomarket/avtomarket/internal/client/storage"
	"github.com/avtomarket/avtomarket/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service defines the interface for viewer session operations.
// It owns login/logout against the backend and session persistence;
// everything else only reads the current session through it.
type Service interface {
	// Login выполняет аутентификацию и сохраняет сессию локально
	Login(ctx context.Context, email, password string) (*Session, error)

	// Logout удаляет локальную сессию и уведомляет сервер (best-effort)
	Logout(ctx context.Context) error

	// Current возвращает сохраненную сессию
	// Возвращает storage.ErrAuthNotFound если сессии нет
	Current(ctx context.Context) (*Session, error)

	// IsAuthenticated проверяет наличие живой сессии
	IsAuthenticated(ctx context.Context) (bool, error)
}

// Compile-time check that service implements Service
var _ Service = (*service)(nil)

type service struct {
	apiClient clientapi.ClientAPI
	authStore storage.AuthStorage
	logger    *slog.Logger
}

// NewService создает новый сервис сессии
func NewService(apiClient clientapi.ClientAPI, authStore storage.AuthStorage, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		authStore: authStore,
		logger:    logger,
	}
}

// Login выполняет аутентификацию и сохраняет сессию локально
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	// 1. Запрашиваем токен у сервера
	resp, err := s.apiClient.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	// 2. Декодируем claims токена (sub, email, exp)
	session, err := sessionFromToken(resp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if session.Email == "" {
		session.Email = resp.Email
	}

	// 3. Сохраняем сессию в локальное хранилище
	authData := &storage.AuthData{
		UserID:      session.UserID,
		Email:       session.Email,
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
	}
	if err := s.authStore.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("viewer logged in", "user_id", session.UserID)
	return session, nil
}

// Logout удаляет локальную сессию и уведомляет сервер.
// Ошибка серверного logout не мешает локальному выходу.
func (s *service) Logout(ctx context.Context) error {
	authData, err := s.authStore.GetAuth(ctx)
	if err != nil {
		if err == storage.ErrAuthNotFound {
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.apiClient.Logout(ctx, authData.AccessToken); err != nil {
		s.logger.Warn("server logout failed", "error", err)
	}

	if err := s.authStore.DeleteAuth(ctx); err != nil && err != storage.ErrAuthNotFound {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("viewer logged out", "user_id", authData.UserID)
	return nil
}

// Current возвращает сохраненную сессию
func (s *service) Current(ctx context.Context) (*Session, error) {
	authData, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		UserID:      authData.UserID,
		Email:       authData.Email,
		AccessToken: authData.AccessToken,
		ExpiresAt:   authData.ExpiresAt,
	}, nil
}

// IsAuthenticated проверяет наличие живой сессии
func (s *service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.authStore.IsAuthenticated(ctx)
}
