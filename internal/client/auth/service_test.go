package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtomarket/avtomarket/internal/client/storage"
	"github.com/avtomarket/avtomarket/pkg/api"
)

// mockClientAPI implements clientapi.ClientAPI for testing
type mockClientAPI struct {
	loginResp   *api.TokenResponse
	loginErr    error
	logoutErr   error
	logoutCalls int
}

func (m *mockClientAPI) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockClientAPI) Logout(ctx context.Context, accessToken string) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockClientAPI) GetCars(ctx context.Context, viewerID string) ([]api.Car, error) {
	return nil, nil
}

func (m *mockClientAPI) GetUserCars(ctx context.Context, ownerID string) ([]api.Car, error) {
	return nil, nil
}

func (m *mockClientAPI) CreateLike(ctx context.Context, carID, userID string) error { return nil }

func (m *mockClientAPI) DeleteLike(ctx context.Context, carID, userID string) error { return nil }

func (m *mockClientAPI) UpsertProfile(ctx context.Context, req api.ProfileUpsertRequest) error {
	return nil
}

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	getErr    error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *auth
	m.data = &copied
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	copied := *m.data
	return &copied, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.data != nil && time.Now().Unix() < m.data.ExpiresAt, nil
}

func testToken(t *testing.T, userID, email string) string {
	t.Helper()

	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

func TestService_Login(t *testing.T) {
	accessToken := testToken(t, "user-123", "viewer@example.com")
	apiClient := &mockClientAPI{
		loginResp: &api.TokenResponse{AccessToken: accessToken, UserID: "user-123"},
	}
	store := &mockAuthStorage{}
	svc := NewService(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	session, err := svc.Login(context.Background(), "viewer@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "user-123", session.UserID)
	assert.Equal(t, "viewer@example.com", session.Email)

	// Сессия должна оказаться в хранилище
	require.NotNil(t, store.data)
	assert.Equal(t, "user-123", store.data.UserID)
	assert.Equal(t, accessToken, store.data.AccessToken)
}

func TestService_Login_APIError(t *testing.T) {
	apiClient := &mockClientAPI{loginErr: errors.New("invalid credentials")}
	store := &mockAuthStorage{}
	svc := NewService(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	session, err := svc.Login(context.Background(), "viewer@example.com", "wrong")
	assert.Nil(t, session)
	assert.Error(t, err)
	assert.Nil(t, store.data)
}

func TestService_Logout(t *testing.T) {
	apiClient := &mockClientAPI{}
	store := &mockAuthStorage{data: &storage.AuthData{UserID: "user-123", AccessToken: "tok"}}
	svc := NewService(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, svc.Logout(context.Background()))

	assert.Nil(t, store.data)
	assert.Equal(t, 1, apiClient.logoutCalls)
}

func TestService_Logout_ServerErrorStillClearsLocal(t *testing.T) {
	// Ошибка серверного logout не должна мешать локальному выходу
	apiClient := &mockClientAPI{logoutErr: errors.New("network down")}
	store := &mockAuthStorage{data: &storage.AuthData{UserID: "user-123", AccessToken: "tok"}}
	svc := NewService(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, store.data)
}

func TestService_Logout_NoSession(t *testing.T) {
	apiClient := &mockClientAPI{}
	store := &mockAuthStorage{}
	svc := NewService(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 0, apiClient.logoutCalls)
}

func TestService_Current(t *testing.T) {
	store := &mockAuthStorage{data: &storage.AuthData{
		UserID:      "user-123",
		Email:       "viewer@example.com",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}}
	svc := NewService(&mockClientAPI{}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	session, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-123", session.UserID)
	assert.True(t, session.Valid())
}

func TestService_Current_NotFound(t *testing.T) {
	svc := NewService(&mockClientAPI{}, &mockAuthStorage{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}
