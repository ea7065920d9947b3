package port

import (
	"context"

	"pharmacy-admin-console/internal/core/domain"
)

// ResourceAPIPort - контракт модуля эндпоинтов одного ресурса.
// Реализация обязана нормализовать все три исхода запроса:
// ответ с ошибкой сервера -> ошибка с серверным сообщением,
// отсутствие ответа -> domain.ErrServerNotResponding,
// прочие клиентские сбои -> как есть.
type ResourceAPIPort[T domain.Entity] interface {
	// List запрашивает одну страницу коллекции с учётом фильтров.
	List(ctx context.Context, query domain.ListQuery) (domain.PageOf[T], error)

	// Patch изменяет статус элемента. Пустой action означает PATCH .../{id},
	// непустой - PATCH .../{id}/{action} (confirmed, blocked, status...).
	Patch(ctx context.Context, id string, action string, payload domain.PatchPayload) error

	// Delete удаляет элемент.
	Delete(ctx context.Context, id string) error

	// Create создает элемент; image != nil переключает запрос на multipart.
	Create(ctx context.Context, payload domain.PatchPayload, image *domain.ImageUpload) error
}

// AggregateStatsPort - отдельный эндпоинт глобальных счётчиков.
// Есть не у всех ресурсов: остальные считают статистику по видимой странице.
type AggregateStatsPort interface {
	Stats(ctx context.Context) (domain.Stats, error)
}
