package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avtomarket/avtomarket/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс HTTP клиента маркетплейса.
// Через него ядро получает список машин, пишет лайки и управляет сессией.
type ClientAPI interface {
	// Login выполняет аутентификацию по email/паролю
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)

	// Logout инвалидирует токен на сервере
	Logout(ctx context.Context, accessToken string) error

	// GetCars возвращает полный список активных объявлений (новые первыми).
	// Если viewerID непустой, сервер вычисляет is_liked для этого пользователя.
	GetCars(ctx context.Context, viewerID string) ([]api.Car, error)

	// GetUserCars возвращает объявления одного продавца
	GetUserCars(ctx context.Context, ownerID string) ([]api.Car, error)

	// CreateLike создает лайк; повторное создание не считается ошибкой
	CreateLike(ctx context.Context, carID, userID string) error

	// DeleteLike удаляет лайк; удаление отсутствующего не считается ошибкой
	DeleteLike(ctx context.Context, carID, userID string) error

	// UpsertProfile идемпотентно создает профиль покупателя
	UpsertProfile(ctx context.Context, req api.ProfileUpsertRequest) error
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetAccessToken устанавливает Bearer токен для последующих запросов
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// statusError несет HTTP статус, чтобы вызывающий мог распознать
// идемпотентные конфликты (двойной лайк, удаление отсутствующего)
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// Login выполняет аутентификацию по email/паролю
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, "POST", "/api/v1/auth/login", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Logout инвалидирует токен на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	prev := c.accessToken
	c.accessToken = accessToken
	defer func() { c.accessToken = prev }()

	if err := c.doRequest(ctx, "POST", "/api/v1/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// GetCars возвращает полный список активных объявлений
func (c *Client) GetCars(ctx context.Context, viewerID string) ([]api.Car, error) {
	path := "/api/v1/cars"
	if viewerID != "" {
		path += "?viewer_id=" + url.QueryEscape(viewerID)
	}

	var cars []api.Car
	if err := c.doRequest(ctx, "GET", path, nil, &cars); err != nil {
		return nil, fmt.Errorf("get cars request failed: %w", err)
	}
	return cars, nil
}

// GetUserCars возвращает объявления одного продавца
func (c *Client) GetUserCars(ctx context.Context, ownerID string) ([]api.Car, error) {
	path := fmt.Sprintf("/api/v1/users/%s/cars", url.PathEscape(ownerID))

	var cars []api.Car
	if err := c.doRequest(ctx, "GET", path, nil, &cars); err != nil {
		return nil, fmt.Errorf("get user cars request failed: %w", err)
	}
	return cars, nil
}

// CreateLike создает лайк (car_id, user_id).
// HTTP 409 от сервера (лайк уже существует) не считается ошибкой.
func (c *Client) CreateLike(ctx context.Context, carID, userID string) error {
	req := api.CreateLikeRequest{CarID: carID, UserID: userID}

	err := c.doRequest(ctx, "POST", "/api/v1/likes", req, nil)
	if err != nil {
		var serr *statusError
		if errors.As(err, &serr) && serr.Code == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("create like request failed: %w", err)
	}
	return nil
}

// DeleteLike удаляет лайк (car_id, user_id).
// HTTP 404 от сервера (лайка уже нет) не считается ошибкой.
func (c *Client) DeleteLike(ctx context.Context, carID, userID string) error {
	path := fmt.Sprintf("/api/v1/likes?car_id=%s&user_id=%s",
		url.QueryEscape(carID), url.QueryEscape(userID))

	err := c.doRequest(ctx, "DELETE", path, nil, nil)
	if err != nil {
		var serr *statusError
		if errors.As(err, &serr) && serr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete like request failed: %w", err)
	}
	return nil
}

// UpsertProfile идемпотентно создает профиль покупателя.
// Вызывается лениво перед первой записью лайка как защита от
// foreign-key ошибок.
func (c *Client) UpsertProfile(ctx context.Context, req api.ProfileUpsertRequest) error {
	if err := c.doRequest(ctx, "PUT", "/api/v1/profiles", req, nil); err != nil {
		return fmt.Errorf("upsert profile request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return &statusError{Code: resp.StatusCode, Message: errResp.Message}
		}
		return &statusError{Code: resp.StatusCode, Message: string(respBody)}
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
