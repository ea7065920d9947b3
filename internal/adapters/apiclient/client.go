package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"

	"github.com/google/uuid"
)

// TokenSource возвращает текущий bearer-токен или пустую строку,
// если пользователь не аутентифицирован.
type TokenSource func() string

// UnauthorizedHook вызывается на любой ответ 401.
// Приложение вешает сюда сброс сессии (аналог глобального редиректа на /login).
type UnauthorizedHook func()

// Client - общий транспортный клиент админ-панели: базовый URL,
// подстановка Authorization и X-Trace-ID, глобальная обработка 401.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    TokenSource
	onUnauthorized UnauthorizedHook
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetTokenSource подключает источник токена (сессию).
// Подключается после создания клиента, т.к. сессия сама зависит от клиента.
func (c *Client) SetTokenSource(source TokenSource) {
	c.tokenSource = source
}

// SetUnauthorizedHook устанавливает обработчик ответа 401.
func (c *Client) SetUnauthorizedHook(hook UnauthorizedHook) {
	c.onUnauthorized = hook
}

func (c *Client) BaseURL() string { return c.baseURL }

// doRequest - внутренний хелпер для выполнения запросов
func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Проставляем заголовок для трассировки. Если trace_id не пришёл
	// в контексте, генерируем свой - каждая операция должна быть трассируема.
	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	req.Header.Set(constants.HeaderTraceID, traceID)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	// Bearer-токен добавляется ко всем запросам, пока он есть в сессии
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}
	}

	return c.httpClient.Do(req)
}

// call выполняет запрос и нормализует все три возможных исхода:
//   - сервер ответил конвертом с ошибкой -> ошибка с серверным сообщением;
//   - ответ не получен (сеть/таймаут)    -> domain.ErrServerNotResponding;
//   - прочие клиентские сбои             -> возвращаются как есть.
//
// При успехе возвращается поле data конверта.
func (c *Client) call(ctx context.Context, method, url string, body io.Reader, contentType string) (json.RawMessage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ApiClient",
		"http_method": method,
		"url":         url,
	})

	logger.Debug("Sending request to admin API", nil)

	resp, err := c.doRequest(ctx, method, url, body, contentType)
	if err != nil {
		// Отмену/дедлайн контекста пробрасываем как есть - это решение
		// вызывающей стороны, а не недоступность сервера.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Error("No response from admin API", err, nil)
		return nil, domain.ErrServerNotResponding
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Warn("Received 401, dropping session", nil)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, domain.ErrSessionExpired
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response body", err, nil)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		// Тело не похоже на наш конверт. Для не-2xx статусов это всё равно
		// ошибка сервера, показываем статус-код.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			logger.Error("Received non-envelope error response", err, port.Fields{"status_code": resp.StatusCode})
			return nil, domain.NewRequestError(resp.StatusCode, fmt.Sprintf("server returned status %d", resp.StatusCode))
		}
		logger.Error("Failed to decode response envelope", err, nil)
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		logger.Error("Received error response from admin API", nil, port.Fields{
			"status_code": resp.StatusCode,
			"message":     message,
		})
		return nil, domain.NewRequestError(resp.StatusCode, message)
	}

	logger.Debug("Request finished successfully", port.Fields{"status_code": resp.StatusCode})
	return env.Data, nil
}
