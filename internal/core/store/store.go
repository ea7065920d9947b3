package store

import (
	"context"
	"fmt"
	"sync"

	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
)

// Config - привязка универсального стора к конкретному ресурсу.
type Config[T domain.Entity] struct {
	// Resource - имя ресурса для логов.
	Resource string

	// API - модуль эндпоинтов ресурса.
	API port.ResourceAPIPort[T]

	// Aggregates - отдельный эндпоинт глобальных счётчиков.
	// nil означает, что статистика считается по видимой странице.
	Aggregates port.AggregateStatsPort

	// PageStats считает счётчики по элементам текущей страницы.
	PageStats func(items []T) domain.Stats

	// ApplyPatch оптимистично применяет PATCH-поля к элементу в памяти.
	ApplyPatch func(item T, payload domain.PatchPayload) T
}

// Store - клиентский кэш одной страницы серверной коллекции плюс
// учёт запросов и ошибок. Все мутации идут через бэкенд: локальное
// изменение никогда не считается истиной и сверяется повторным запросом.
//
// Один универсальный движок обслуживает все семь ресурсов панели.
type Store[T domain.Entity] struct {
	cfg Config[T]

	mu        sync.Mutex
	items     []T
	page      domain.PageState
	filters   domain.Filters
	loading   bool
	lastError string
	stats     domain.Stats

	// fetchSeq нумерует запросы страниц. Применяется только ответ
	// последнего выданного запроса: перегонки устаревших ответов
	// при быстрой смене фильтров отбрасываются.
	fetchSeq uint64
}

// Snapshot - копия состояния стора для отображения.
type Snapshot[T domain.Entity] struct {
	Items   []T
	Page    domain.PageState
	Filters domain.Filters
	Loading bool
	Err     string
	Stats   domain.Stats
}

func New[T domain.Entity](cfg Config[T]) (*Store[T], error) {
	if cfg.Resource == "" {
		return nil, fmt.Errorf("store: resource name is required")
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("store %q: resource API is required", cfg.Resource)
	}
	if cfg.ApplyPatch == nil {
		return nil, fmt.Errorf("store %q: optimistic patch function is required", cfg.Resource)
	}
	return &Store[T]{cfg: cfg}, nil
}

func (s *Store[T]) logger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ResourceStore",
		"resource":  s.cfg.Resource,
		"method":    method,
	})
}

// Snapshot возвращает копию текущего состояния.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]T, len(s.items))
	copy(items, s.items)

	var stats domain.Stats
	if s.stats != nil {
		stats = make(domain.Stats, len(s.stats))
		for k, v := range s.stats {
			stats[k] = v
		}
	}

	return Snapshot[T]{
		Items:   items,
		Page:    s.page,
		Filters: s.filters,
		Loading: s.loading,
		Err:     s.lastError,
		Stats:   stats,
	}
}

// FetchPage загружает страницу page с фильтрами filters.
//
// При ошибке прежние элементы остаются видимыми (stale-but-visible):
// список никогда не очищается из-за неудачного обновления.
func (s *Store[T]) FetchPage(ctx context.Context, page int, filters domain.Filters) error {
	logger := s.logger(ctx, "FetchPage").WithFields(port.Fields{"page": page})

	if page < 1 {
		logger.Warn("Rejected fetch with invalid page number", nil)
		return domain.ErrInvalidPage
	}

	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	logger.Debug("Fetching page", port.Fields{"seq": seq})

	result, err := s.cfg.API.List(ctx, domain.ListQuery{Page: page, Filters: filters})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		// Пока ждали ответ, был выдан более новый запрос.
		// Этот результат уже никому не интересен.
		logger.Debug("Discarding stale fetch result", port.Fields{"seq": seq, "latest": s.fetchSeq})
		return nil
	}

	s.loading = false

	if err != nil {
		s.lastError = err.Error()
		logger.Error("Fetch failed, keeping previous items", err, nil)
		return err
	}

	s.items = result.Items
	s.page = result.State
	s.filters = filters
	if s.cfg.PageStats != nil {
		s.stats = s.cfg.PageStats(result.Items)
	}

	logger.Info("Page applied", port.Fields{
		"items_count": len(result.Items),
		"total":       result.State.Total,
		"total_pages": result.State.TotalPages,
	})
	return nil
}

// refetchCurrent повторно запрашивает текущую страницу для сверки
// с серверной истиной. До первой успешной загрузки сверять нечего.
func (s *Store[T]) refetchCurrent(ctx context.Context) error {
	s.mu.Lock()
	page := s.page.Page
	filters := s.filters
	s.mu.Unlock()

	if page < 1 {
		return nil
	}
	return s.FetchPage(ctx, page, filters)
}

// UpdateStatus реализует протокол оптимистичного обновления:
//  1. элемент с данным id немедленно переписывается в памяти;
//  2. уходит PATCH на бэкенд;
//  3. в любом исходе текущая страница перезапрашивается - оптимистичная
//     правка считается временной, а не истиной. Членство в списке могло
//     измениться (например, заявка ушла из фильтра "waiting"), поэтому
//     полный перезапрос надёжнее точечной правки.
func (s *Store[T]) UpdateStatus(ctx context.Context, id string, action string, payload domain.PatchPayload) error {
	logger := s.logger(ctx, "UpdateStatus").WithFields(port.Fields{"id": id, "action": action})

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Key() == id {
			s.items[i] = s.cfg.ApplyPatch(s.items[i], payload)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		// Элемент не на текущей странице - оптимистичный шаг пропускаем,
		// но запрос все равно уходит: бэкенд, а не кэш, решает судьбу записи.
		logger.Debug("Item is not on the current page, skipping optimistic patch", nil)
	}

	patchErr := s.cfg.API.Patch(ctx, id, action, payload)

	// Сверка с сервером идёт и после ошибки: она откатывает
	// оптимистичную правку и возвращает серверную истину.
	refetchErr := s.refetchCurrent(ctx)
	s.refreshAggregates(ctx, logger)

	if patchErr != nil {
		s.mu.Lock()
		s.lastError = patchErr.Error()
		s.mu.Unlock()
		logger.Error("Status update rejected, optimistic patch rolled back", patchErr, nil)
		return patchErr
	}

	if refetchErr != nil {
		logger.Warn("Status updated but reconciling refetch failed", port.Fields{"error": refetchErr.Error()})
		return refetchErr
	}

	logger.Info("Status updated and reconciled", nil)
	return nil
}

// Delete удаляет элемент. При успехе элемент убирается локально -
// повторный запрос не обязателен, удаление не может исказить серверное
// состояние. Если страница опустела, а она не первая, подгружается
// предыдущая, чтобы не показывать пустой хвост.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	logger := s.logger(ctx, "Delete").WithFields(port.Fields{"id": id})

	if err := s.cfg.API.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		logger.Error("Delete failed", err, nil)
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Key() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			if s.page.Total > 0 {
				s.page.Total--
			}
			break
		}
	}
	if s.cfg.PageStats != nil {
		s.stats = s.cfg.PageStats(s.items)
	}
	emptiedPage := len(s.items) == 0 && s.page.Page > 1
	previousPage := s.page.Page - 1
	filters := s.filters
	s.mu.Unlock()

	s.refreshAggregates(ctx, logger)

	if emptiedPage {
		logger.Info("Page emptied by delete, loading previous page", port.Fields{"page": previousPage})
		return s.FetchPage(ctx, previousPage, filters)
	}

	logger.Info("Item deleted", nil)
	return nil
}

// Create создает элемент и перезагружает первую страницу с текущими
// фильтрами - новый элемент при стандартной сортировке окажется сверху.
func (s *Store[T]) Create(ctx context.Context, payload domain.PatchPayload, image *domain.ImageUpload) error {
	logger := s.logger(ctx, "Create")

	if err := s.cfg.API.Create(ctx, payload, image); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		logger.Error("Create failed", err, nil)
		return err
	}

	s.mu.Lock()
	filters := s.filters
	s.mu.Unlock()

	s.refreshAggregates(ctx, logger)

	logger.Info("Item created, reloading first page", nil)
	return s.FetchPage(ctx, 1, filters)
}

// RefreshStats обновляет глобальные счётчики с агрегирующего эндпоинта.
// Для ресурсов без него пересчитывает постраничную статистику.
func (s *Store[T]) RefreshStats(ctx context.Context) error {
	logger := s.logger(ctx, "RefreshStats")

	if s.cfg.Aggregates == nil {
		s.mu.Lock()
		if s.cfg.PageStats != nil {
			s.stats = s.cfg.PageStats(s.items)
		}
		s.mu.Unlock()
		return nil
	}

	stats, err := s.cfg.Aggregates.Stats(ctx)
	if err != nil {
		logger.Error("Failed to fetch aggregate stats", err, nil)
		return err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// refreshAggregates - сверка счётчиков после мутаций, только для ресурсов
// с агрегирующим эндпоинтом. Ошибка не прерывает основную операцию.
func (s *Store[T]) refreshAggregates(ctx context.Context, logger port.LoggerPort) {
	if s.cfg.Aggregates == nil {
		return
	}
	if err := s.RefreshStats(ctx); err != nil {
		logger.Warn("Aggregate stats refresh failed", port.Fields{"error": err.Error()})
	}
}

// ClearError сбрасывает сообщение об ошибке. Идемпотентен.
func (s *Store[T]) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

// Reset возвращает стор к пустому начальному состоянию.
// Ответы запросов, выданных до сброса, будут отброшены.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.page = domain.PageState{}
	s.filters = domain.Filters{}
	s.loading = false
	s.lastError = ""
	s.stats = nil
	s.fetchSeq++
}
