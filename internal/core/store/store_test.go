package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/store"
)

// stubResourceAPI - управляемая заглушка модуля эндпоинтов.
type stubResourceAPI[T domain.Entity] struct {
	mu        sync.Mutex
	listCalls []domain.ListQuery

	listFunc   func(ctx context.Context, query domain.ListQuery) (domain.PageOf[T], error)
	patchFunc  func(ctx context.Context, id, action string, payload domain.PatchPayload) error
	deleteFunc func(ctx context.Context, id string) error
	createFunc func(ctx context.Context, payload domain.PatchPayload, image *domain.ImageUpload) error
}

func (s *stubResourceAPI[T]) List(ctx context.Context, query domain.ListQuery) (domain.PageOf[T], error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, query)
	s.mu.Unlock()

	if s.listFunc != nil {
		return s.listFunc(ctx, query)
	}
	return domain.PageOf[T]{}, nil
}

func (s *stubResourceAPI[T]) Patch(ctx context.Context, id, action string, payload domain.PatchPayload) error {
	if s.patchFunc != nil {
		return s.patchFunc(ctx, id, action, payload)
	}
	return nil
}

func (s *stubResourceAPI[T]) Delete(ctx context.Context, id string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return nil
}

func (s *stubResourceAPI[T]) Create(ctx context.Context, payload domain.PatchPayload, image *domain.ImageUpload) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, payload, image)
	}
	return nil
}

func (s *stubResourceAPI[T]) listCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listCalls)
}

type stubAggregates struct {
	stats domain.Stats
	err   error
}

func (s *stubAggregates) Stats(ctx context.Context) (domain.Stats, error) {
	return s.stats, s.err
}

func usersPage(items []domain.User, page, totalPages, total int) domain.PageOf[domain.User] {
	copied := make([]domain.User, len(items))
	copy(copied, items)
	return domain.PageOf[domain.User]{
		Items: copied,
		State: domain.PageState{Page: page, TotalPages: totalPages, Total: total},
	}
}

func newUsersEngine(t *testing.T, api *stubResourceAPI[domain.User]) *store.Store[domain.User] {
	t.Helper()
	s, err := store.New(store.Config[domain.User]{
		Resource:   "users",
		API:        api,
		ApplyPatch: domain.ApplyUserPatch,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestFetchPageAppliesEnvelopeVerbatim(t *testing.T) {
	truth := []domain.User{
		{ID: "u1", Email: "one@example.com", Confirmed: true},
		{ID: "u2", Email: "two@example.com"},
	}
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			return usersPage(truth, 1, 3, 25), nil
		},
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].ID != "u1" || snap.Items[1].ID != "u2" {
		t.Fatalf("items were not applied verbatim: %+v", snap.Items)
	}
	if snap.Page != (domain.PageState{Page: 1, TotalPages: 3, Total: 25}) {
		t.Fatalf("page state not taken from envelope: %+v", snap.Page)
	}
	if snap.Err != "" {
		t.Fatalf("expected no error, got %q", snap.Err)
	}
	if snap.Loading {
		t.Fatal("loading flag must be reset after a finished fetch")
	}
}

func TestFetchPageFailureKeepsPreviousItems(t *testing.T) {
	truth := []domain.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	failing := false
	api := &stubResourceAPI[domain.User]{}
	api.listFunc = func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
		if failing {
			return domain.PageOf[domain.User]{}, errors.New("Server is not responding. Please try again later.")
		}
		return usersPage(truth, 1, 1, 3), nil
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}

	failing = true
	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err == nil {
		t.Fatal("expected an error from the failing fetch")
	}

	snap := s.Snapshot()
	if len(snap.Items) != 3 {
		t.Fatalf("failed refresh must not blank the list, got %d items", len(snap.Items))
	}
	if snap.Err != "Server is not responding. Please try again later." {
		t.Fatalf("unexpected error message: %q", snap.Err)
	}
}

func TestFetchPageRejectsInvalidPageNumber(t *testing.T) {
	api := &stubResourceAPI[domain.User]{}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 0, domain.Filters{}); !errors.Is(err, domain.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if api.listCallCount() != 0 {
		t.Fatal("no request must be issued for an invalid page")
	}
}

// Ответ раньше выданного запроса не должен затирать ответ позже выданного,
// даже если по сети они пришли в обратном порядке.
func TestFetchPageAppliesOnlyLatestIssued(t *testing.T) {
	release := map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
	}
	started := make(chan int, 2)

	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			started <- query.Page
			<-release[query.Page]
			return domain.PageOf[domain.User]{
				Items: []domain.User{{ID: "u-from-latest"}},
				State: domain.PageState{Page: query.Page, TotalPages: 2, Total: 12},
			}, nil
		},
	}
	s := newUsersEngine(t, api)

	var wg sync.WaitGroup
	wg.Add(2)
	firstDone := make(chan struct{})
	secondDone := make(chan struct{})

	go func() {
		defer wg.Done()
		_ = s.FetchPage(context.Background(), 1, domain.Filters{})
		close(firstDone)
	}()
	<-started // первый запрос выдан и ждет

	go func() {
		defer wg.Done()
		_ = s.FetchPage(context.Background(), 2, domain.Filters{})
		close(secondDone)
	}()
	<-started // второй запрос выдан и ждет

	// Второй (актуальный) ответ приходит первым...
	close(release[2])
	<-secondDone

	// ...а затем доползает устаревший первый
	close(release[1])
	<-firstDone
	wg.Wait()

	snap := s.Snapshot()
	if snap.Page.Page != 2 {
		t.Fatalf("stale response overwrote the latest fetch: page=%d", snap.Page.Page)
	}
	if snap.Loading {
		t.Fatal("loading must be false once the latest fetch has finished")
	}
}

func TestUpdateStatusRollsBackOnFailure(t *testing.T) {
	truth := []domain.User{
		{ID: "u1", Email: "one@example.com", Confirmed: false},
		{ID: "u2", Email: "two@example.com", Confirmed: true},
	}
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			return usersPage(truth, 1, 1, 2), nil
		},
		patchFunc: func(ctx context.Context, id, action string, payload domain.PatchPayload) error {
			return errors.New("update rejected by server")
		},
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}

	err := s.UpdateStatus(context.Background(), "u1", "confirmed", domain.PatchPayload{"confirmed": true})
	if err == nil {
		t.Fatal("expected the rejected update to surface an error")
	}

	snap := s.Snapshot()
	if snap.Items[0].Confirmed {
		t.Fatal("optimistic patch must be fully rolled back to server truth")
	}
	if snap.Err != "update rejected by server" {
		t.Fatalf("unexpected error message: %q", snap.Err)
	}
}

func TestUpdateStatusReconcilesWithServerTruth(t *testing.T) {
	truth := []domain.User{{ID: "u1", Confirmed: false}}
	var mu sync.Mutex
	api := &stubResourceAPI[domain.User]{}
	api.listFunc = func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
		mu.Lock()
		defer mu.Unlock()
		return usersPage(truth, 1, 1, 1), nil
	}
	api.patchFunc = func(ctx context.Context, id, action string, payload domain.PatchPayload) error {
		mu.Lock()
		defer mu.Unlock()
		truth[0].Confirmed = payload["confirmed"].(bool)
		return nil
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}
	if err := s.UpdateStatus(context.Background(), "u1", "confirmed", domain.PatchPayload{"confirmed": true}); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Items[0].Confirmed {
		t.Fatal("store must reflect server truth after reconciliation")
	}
	// Первичная загрузка + сверка после PATCH
	if api.listCallCount() != 2 {
		t.Fatalf("expected a reconciling refetch, got %d list calls", api.listCallCount())
	}
}

func TestDeleteRemovesExactlyOneItem(t *testing.T) {
	truth := []domain.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			return usersPage(truth, 1, 1, 3), nil
		},
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}
	if err := s.Delete(context.Background(), "u2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].ID != "u1" || snap.Items[1].ID != "u3" {
		t.Fatalf("exactly u2 must be removed, got %+v", snap.Items)
	}
	if snap.Page.Total != 2 {
		t.Fatalf("total must be decremented, got %d", snap.Page.Total)
	}
}

func TestDeleteLoadsPreviousPageWhenPageEmpties(t *testing.T) {
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			if query.Page == 2 {
				return usersPage([]domain.User{{ID: "u3"}}, 2, 2, 3), nil
			}
			return usersPage([]domain.User{{ID: "u1"}, {ID: "u2"}}, 1, 1, 2), nil
		},
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 2, domain.Filters{}); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}
	if err := s.Delete(context.Background(), "u3"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Page.Page != 1 {
		t.Fatalf("emptied trailing page must fall back to the previous one, got page %d", snap.Page.Page)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("previous page items expected, got %+v", snap.Items)
	}
}

func TestClearErrorIsIdempotent(t *testing.T) {
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			return domain.PageOf[domain.User]{}, errors.New("boom")
		},
	}
	s := newUsersEngine(t, api)

	_ = s.FetchPage(context.Background(), 1, domain.Filters{})
	if s.Snapshot().Err == "" {
		t.Fatal("expected an error to be recorded")
	}

	s.ClearError()
	if s.Snapshot().Err != "" {
		t.Fatal("ClearError must reset the error")
	}
	s.ClearError()
	if s.Snapshot().Err != "" {
		t.Fatal("repeated ClearError must keep the error empty")
	}
}

func TestPageDerivedStats(t *testing.T) {
	adsAPI := &stubResourceAPI[domain.Advertisement]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.Advertisement], error) {
			return domain.PageOf[domain.Advertisement]{
				Items: []domain.Advertisement{
					{ID: "a1", Status: true},
					{ID: "a2", Status: false},
					{ID: "a3", Status: true},
				},
				State: domain.PageState{Page: 1, TotalPages: 1, Total: 3},
			}, nil
		},
	}
	s, err := store.NewAdsStore(adsAPI)
	if err != nil {
		t.Fatalf("failed to create ads store: %v", err)
	}

	if err := s.FetchPage(context.Background(), 1, domain.Filters{}); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Stats["active"] != 2 || snap.Stats["inactive"] != 1 {
		t.Fatalf("unexpected page-derived stats: %+v", snap.Stats)
	}
}

func TestAggregateStats(t *testing.T) {
	usersAPI := &stubResourceAPI[domain.User]{}
	aggregates := &stubAggregates{stats: domain.Stats{"confirmed": 120, "blocked": 4}}

	s, err := store.NewUsersStore(usersAPI, aggregates)
	if err != nil {
		t.Fatalf("failed to create users store: %v", err)
	}
	if err := s.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Stats["confirmed"] != 120 || snap.Stats["blocked"] != 4 {
		t.Fatalf("aggregate stats not applied: %+v", snap.Stats)
	}
}

func TestResetReturnsStoreToInitialState(t *testing.T) {
	api := &stubResourceAPI[domain.User]{
		listFunc: func(ctx context.Context, query domain.ListQuery) (domain.PageOf[domain.User], error) {
			return usersPage([]domain.User{{ID: "u1"}}, 1, 1, 1), nil
		},
	}
	s := newUsersEngine(t, api)

	if err := s.FetchPage(context.Background(), 1, domain.Filters{Search: "ibuprofen"}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	s.Reset()

	snap := s.Snapshot()
	if len(snap.Items) != 0 || snap.Page != (domain.PageState{}) || snap.Filters != (domain.Filters{}) || snap.Err != "" {
		t.Fatalf("Reset must return the store to its zero state: %+v", snap)
	}
}
