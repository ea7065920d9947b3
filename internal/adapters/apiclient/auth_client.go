package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pharmacy-admin-console/internal/adapters/contracts"
	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
)

// AuthClient - клиент эндпоинта аутентификации.
type AuthClient struct {
	client *Client
}

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// Login выполняет вход и возвращает аккаунт и токен.
// Проверка роли остаётся за сессией - клиент только ходит по сети.
func (a *AuthClient) Login(ctx context.Context, credentials domain.Credentials) (domain.Account, string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "AuthClient",
		"method":    "Login",
		"email":     credentials.Email,
	})

	body, err := json.Marshal(loginRequest{Email: credentials.Email, Password: credentials.Password})
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	targetURL := a.client.BaseURL() + constants.PathLogin
	data, err := a.client.call(ctx, http.MethodPost, targetURL, bytes.NewBuffer(body), "application/json")
	if err != nil {
		logger.Warn("Login request failed", port.Fields{"error": err.Error()})
		return domain.Account{}, "", err
	}

	if err := contracts.Validate(contracts.LoginResponse, data); err != nil {
		logger.Error("Login response violates contract", err, nil)
		return domain.Account{}, "", fmt.Errorf("unexpected login response shape: %w", err)
	}

	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		logger.Error("Failed to decode login response", err, nil)
		return domain.Account{}, "", fmt.Errorf("failed to decode login response: %w", err)
	}

	logger.Info("Login succeeded", port.Fields{"user_id": lr.User.ID, "role": lr.User.Role})

	account := domain.Account{
		ID:       lr.User.ID,
		FullName: lr.User.FullName,
		Email:    lr.User.Email,
		Role:     lr.User.Role,
	}
	return account, lr.Token, nil
}
