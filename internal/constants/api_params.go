package constants

// Ресурсы админ-панели
const (
	ResourceUsers       = "users"
	ResourceAds         = "ads"
	ResourceAdsRequests = "ads-requests"
	ResourceContactUs   = "contact-us"
	ResourceDeals       = "deals"
	ResourceDrugs       = "drugs"
	ResourcePharmacies  = "pharmacies"
)

// Пути API (относительно базового URL)
const (
	PathUsers       = "/api/v1/admin/users"
	PathAds         = "/api/v1/admin/ads"
	PathAdsRequests = "/api/v1/admin/ads-requests"
	PathContactUs   = "/api/v1/admin/contact-us"
	PathDeals       = "/api/v1/admin/deals"
	PathDrugs       = "/api/v1/admin/drugs"
	PathPharmacies  = "/api/v1/admin/pharmacies"

	PathLogin = "/api/v1/auth/login"
)

// Ключи массива элементов внутри data конверта ответа.
// У каждого ресурса свой ключ, поэтому декодер параметризуется им.
const (
	EnvelopeKeyUsers       = "users"
	EnvelopeKeyAds         = "ads"
	EnvelopeKeyAdsRequests = "adRequests"
	EnvelopeKeyContactUs   = "messages"
	EnvelopeKeyDeals       = "deals"
	EnvelopeKeyDrugs       = "drugs"
	EnvelopeKeyPharmacies  = "pharmacies"
)

// Query-параметры списков. Добавляются в URL только при непустом значении.
const (
	QueryParamPage           = "page"
	QueryParamSearch         = "search"
	QueryParamStatus         = "status"
	QueryParamRole           = "role"
	QueryParamSortBy         = "sortBy"
	QueryParamTargetPosition = "targetPosition"
)

// PATCH-действия изменения статуса
const (
	PatchActionStatus    = "status"
	PatchActionConfirmed = "confirmed"
	PatchActionBlocked   = "blocked"
)

// Статусы заявок и обращений
const (
	StatusWaiting   = "waiting"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusContacted = "contacted"
	StatusClosed    = "closed"
)

// Заголовки, проставляемые транспортным клиентом
const (
	HeaderAuthorization = "Authorization"
	HeaderTraceID       = "X-Trace-ID"
)
