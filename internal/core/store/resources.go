package store

import (
	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
)

// Конструкторы семи сторов панели. Каждый связывает движок с модулем
// эндпоинтов, функцией оптимистичного патча и политикой статистики.
//
// Политика счётчиков: users и pharmacies берут их с агрегирующего
// эндпоинта (счётчики по всей коллекции), остальные ресурсы считают
// по видимой странице.

func NewUsersStore(api port.ResourceAPIPort[domain.User], aggregates port.AggregateStatsPort) (*Store[domain.User], error) {
	return New(Config[domain.User]{
		Resource:   constants.ResourceUsers,
		API:        api,
		Aggregates: aggregates,
		ApplyPatch: domain.ApplyUserPatch,
	})
}

func NewAdsStore(api port.ResourceAPIPort[domain.Advertisement]) (*Store[domain.Advertisement], error) {
	return New(Config[domain.Advertisement]{
		Resource: constants.ResourceAds,
		API:      api,
		PageStats: PageCounter(map[string]func(domain.Advertisement) bool{
			"active":   func(a domain.Advertisement) bool { return a.Status },
			"inactive": func(a domain.Advertisement) bool { return !a.Status },
		}),
		ApplyPatch: domain.ApplyAdvertisementPatch,
	})
}

func NewAdsRequestsStore(api port.ResourceAPIPort[domain.AdRequest]) (*Store[domain.AdRequest], error) {
	return New(Config[domain.AdRequest]{
		Resource: constants.ResourceAdsRequests,
		API:      api,
		PageStats: PageCounter(map[string]func(domain.AdRequest) bool{
			"waiting":  func(r domain.AdRequest) bool { return r.Status == constants.StatusWaiting },
			"approved": func(r domain.AdRequest) bool { return r.Status == constants.StatusApproved },
			"rejected": func(r domain.AdRequest) bool { return r.Status == constants.StatusRejected },
		}),
		ApplyPatch: domain.ApplyAdRequestPatch,
	})
}

func NewContactUsStore(api port.ResourceAPIPort[domain.ContactMessage]) (*Store[domain.ContactMessage], error) {
	return New(Config[domain.ContactMessage]{
		Resource: constants.ResourceContactUs,
		API:      api,
		PageStats: PageCounter(map[string]func(domain.ContactMessage) bool{
			"waiting":   func(m domain.ContactMessage) bool { return m.Status == constants.StatusWaiting },
			"contacted": func(m domain.ContactMessage) bool { return m.Status == constants.StatusContacted },
			"closed":    func(m domain.ContactMessage) bool { return m.Status == constants.StatusClosed },
		}),
		ApplyPatch: domain.ApplyContactMessagePatch,
	})
}

func NewDealsStore(api port.ResourceAPIPort[domain.Deal]) (*Store[domain.Deal], error) {
	return New(Config[domain.Deal]{
		Resource: constants.ResourceDeals,
		API:      api,
		PageStats: PageCounter(map[string]func(domain.Deal) bool{
			"active":   func(d domain.Deal) bool { return d.Status },
			"inactive": func(d domain.Deal) bool { return !d.Status },
		}),
		ApplyPatch: domain.ApplyDealPatch,
	})
}

func NewDrugsStore(api port.ResourceAPIPort[domain.Drug]) (*Store[domain.Drug], error) {
	return New(Config[domain.Drug]{
		Resource: constants.ResourceDrugs,
		API:      api,
		PageStats: PageCounter(map[string]func(domain.Drug) bool{
			"active":   func(d domain.Drug) bool { return d.Status },
			"inactive": func(d domain.Drug) bool { return !d.Status },
		}),
		ApplyPatch: domain.ApplyDrugPatch,
	})
}

func NewPharmaciesStore(api port.ResourceAPIPort[domain.Pharmacy], aggregates port.AggregateStatsPort) (*Store[domain.Pharmacy], error) {
	return New(Config[domain.Pharmacy]{
		Resource:   constants.ResourcePharmacies,
		API:        api,
		Aggregates: aggregates,
		ApplyPatch: domain.ApplyPharmacyPatch,
	})
}
