package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"pharmacy-admin-console/internal/adapters/contracts"
	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
)

// ResourceConfig - привязка универсального клиента к конкретному ресурсу.
type ResourceConfig struct {
	Name string // имя ресурса для логов ("users", "deals"...)
	Path string // путь коллекции относительно базового URL
	Key  string // ключ массива элементов внутри data ("users", "adRequests"...)
}

// ResourceClient - модуль эндпоинтов одного ресурса поверх общего транспорта.
// Один универсальный клиент вместо семи почти одинаковых.
type ResourceClient[T domain.Entity] struct {
	client *Client
	cfg    ResourceConfig
}

func NewResourceClient[T domain.Entity](client *Client, cfg ResourceConfig) (*ResourceClient[T], error) {
	if cfg.Path == "" || cfg.Key == "" {
		return nil, fmt.Errorf("resource client %q: path and envelope key are required", cfg.Name)
	}
	return &ResourceClient[T]{client: client, cfg: cfg}, nil
}

func (rc *ResourceClient[T]) buildListURL(query domain.ListQuery) (string, error) {
	u, err := url.Parse(rc.client.BaseURL() + rc.cfg.Path)
	if err != nil {
		return "", fmt.Errorf("failed to build list URL for %s: %w", rc.cfg.Name, err)
	}

	q := u.Query()
	q.Set(constants.QueryParamPage, strconv.Itoa(query.Page))

	// Остальные параметры добавляем только при непустом значении
	f := query.Filters
	if f.Search != "" {
		q.Set(constants.QueryParamSearch, f.Search)
	}
	if f.Status != "" {
		q.Set(constants.QueryParamStatus, f.Status)
	}
	if f.Role != "" {
		q.Set(constants.QueryParamRole, f.Role)
	}
	if f.SortBy != "" {
		q.Set(constants.QueryParamSortBy, f.SortBy)
	}
	if f.TargetPosition != "" {
		q.Set(constants.QueryParamTargetPosition, f.TargetPosition)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// List запрашивает одну страницу коллекции.
func (rc *ResourceClient[T]) List(ctx context.Context, query domain.ListQuery) (domain.PageOf[T], error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ResourceClient",
		"resource":  rc.cfg.Name,
		"method":    "List",
	})

	targetURL, err := rc.buildListURL(query)
	if err != nil {
		return domain.PageOf[T]{}, err
	}

	data, err := rc.client.call(ctx, http.MethodGet, targetURL, nil, "")
	if err != nil {
		return domain.PageOf[T]{}, err
	}

	// Защищаемся от неожиданной формы data до декодирования
	if err := contracts.Validate(contracts.ListResponse, data); err != nil {
		logger.Error("List response violates contract", err, nil)
		return domain.PageOf[T]{}, fmt.Errorf("unexpected list response shape: %w", err)
	}

	var head listHead
	if err := json.Unmarshal(data, &head); err != nil {
		logger.Error("Failed to decode pagination metadata", err, nil)
		return domain.PageOf[T]{}, fmt.Errorf("failed to decode pagination metadata: %w", err)
	}

	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(data, &byKey); err != nil {
		logger.Error("Failed to decode list response data", err, nil)
		return domain.PageOf[T]{}, fmt.Errorf("failed to decode list response data: %w", err)
	}

	rawItems, ok := byKey[rc.cfg.Key]
	if !ok {
		err := fmt.Errorf("list response data has no %q key", rc.cfg.Key)
		logger.Error("Malformed list response", err, nil)
		return domain.PageOf[T]{}, err
	}

	items := []T{}
	if err := json.Unmarshal(rawItems, &items); err != nil {
		logger.Error("Failed to decode items", err, nil)
		return domain.PageOf[T]{}, fmt.Errorf("failed to decode %s items: %w", rc.cfg.Name, err)
	}

	logger.Info("Successfully received and decoded page", port.Fields{
		"items_count": len(items),
		"page":        head.Page,
		"total":       head.Total,
	})

	return domain.PageOf[T]{
		Items: items,
		State: domain.PageState{Page: head.Page, TotalPages: head.TotalPages, Total: head.Total},
	}, nil
}

// Patch изменяет статус элемента: PATCH .../{id} либо PATCH .../{id}/{action}.
func (rc *ResourceClient[T]) Patch(ctx context.Context, id string, action string, payload domain.PatchPayload) error {
	targetURL := rc.client.BaseURL() + rc.cfg.Path + "/" + url.PathEscape(id)
	if action != "" {
		targetURL += "/" + action
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal patch payload: %w", err)
	}

	_, err = rc.client.call(ctx, http.MethodPatch, targetURL, bytes.NewBuffer(body), "application/json")
	return err
}

// Delete удаляет элемент.
func (rc *ResourceClient[T]) Delete(ctx context.Context, id string) error {
	targetURL := rc.client.BaseURL() + rc.cfg.Path + "/" + url.PathEscape(id)
	_, err := rc.client.call(ctx, http.MethodDelete, targetURL, nil, "")
	return err
}

// Create создает элемент. С изображением запрос уходит как multipart,
// без него - обычным JSON.
func (rc *ResourceClient[T]) Create(ctx context.Context, payload domain.PatchPayload, image *domain.ImageUpload) error {
	targetURL := rc.client.BaseURL() + rc.cfg.Path

	if image == nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal create payload: %w", err)
		}
		_, err = rc.client.call(ctx, http.MethodPost, targetURL, bytes.NewBuffer(body), "application/json")
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range payload {
		fieldValue, err := encodeFormValue(v)
		if err != nil {
			return fmt.Errorf("failed to encode multipart field %q: %w", k, err)
		}
		if err := writer.WriteField(k, fieldValue); err != nil {
			return fmt.Errorf("failed to write multipart field %q: %w", k, err)
		}
	}
	part, err := writer.CreateFormFile("image", image.FileName)
	if err != nil {
		return fmt.Errorf("failed to create multipart image part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	_, err = rc.client.call(ctx, http.MethodPost, targetURL, &buf, writer.FormDataContentType())
	return err
}

// encodeFormValue переводит значение поля в строку для multipart-формы.
// Строки уходят как есть, всё остальное - в JSON-представлении, чтобы
// вложенные объекты и массивы не превращались в Go-синтаксис map[k:v].
func encodeFormValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Stats запрашивает глобальные счётчики ресурса: GET .../stats.
// Есть не у каждого ресурса - привязывается к стору отдельно.
func (rc *ResourceClient[T]) Stats(ctx context.Context) (domain.Stats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ResourceClient",
		"resource":  rc.cfg.Name,
		"method":    "Stats",
	})

	targetURL := rc.client.BaseURL() + rc.cfg.Path + "/stats"
	data, err := rc.client.call(ctx, http.MethodGet, targetURL, nil, "")
	if err != nil {
		return nil, err
	}

	if err := contracts.Validate(contracts.StatsResponse, data); err != nil {
		logger.Error("Stats response violates contract", err, nil)
		return nil, fmt.Errorf("unexpected stats response shape: %w", err)
	}

	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		logger.Error("Failed to decode stats", err, nil)
		return nil, fmt.Errorf("failed to decode %s stats: %w", rc.cfg.Name, err)
	}
	return stats, nil
}
