package domain

// PageState описывает один полученный срез серверной пагинации.
// Инвариант после успешного запроса: Page <= TotalPages, Total >= len(items).
type PageState struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Filters - активные фильтры списка. Пустое значение означает
// "фильтр не применён" и не попадает в query-параметры запроса.
type Filters struct {
	Search         string
	Status         string
	Role           string
	SortBy         string
	TargetPosition string
}

// ListQuery - параметры одного запроса страницы.
type ListQuery struct {
	Page    int
	Filters Filters
}

// PageOf - результат запроса списка: элементы плюс метаданные пагинации,
// взятые из конверта ответа без пересчёта.
type PageOf[T Entity] struct {
	Items []T
	State PageState
}

// Stats - производные счётчики ("active", "blocked" и т.п.).
// Для одних ресурсов считаются по видимой странице, для других
// приходят с отдельного агрегирующего эндпоинта.
type Stats map[string]int

// PatchPayload - поля, отправляемые в PATCH-запросе изменения статуса.
type PatchPayload map[string]any

// ImageUpload - файл изображения, прикладываемый к POST-запросу создания.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}
