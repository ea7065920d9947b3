package domain

// Функции оптимистичного применения PATCH-поля к элементу в памяти.
// Вызываются стором до подтверждения сервером; после ответа состояние
// всё равно сверяется повторным запросом страницы.

// ApplyUserPatch переписывает поля подтверждения/блокировки пользователя.
func ApplyUserPatch(u User, payload PatchPayload) User {
	if v, ok := payload["confirmed"].(bool); ok {
		u.Confirmed = v
	}
	if v, ok := payload["blocked"].(bool); ok {
		u.Blocked = v
	}
	return u
}

func ApplyAdvertisementPatch(a Advertisement, payload PatchPayload) Advertisement {
	if v, ok := payload["status"].(bool); ok {
		a.Status = v
	}
	if v, ok := payload["targetPosition"].(string); ok {
		a.TargetPosition = v
	}
	return a
}

func ApplyAdRequestPatch(r AdRequest, payload PatchPayload) AdRequest {
	if v, ok := payload["status"].(string); ok {
		r.Status = v
	}
	return r
}

func ApplyContactMessagePatch(m ContactMessage, payload PatchPayload) ContactMessage {
	if v, ok := payload["status"].(string); ok {
		m.Status = v
	}
	return m
}

func ApplyDealPatch(d Deal, payload PatchPayload) Deal {
	if v, ok := payload["status"].(bool); ok {
		d.Status = v
	}
	return d
}

func ApplyDrugPatch(d Drug, payload PatchPayload) Drug {
	if v, ok := payload["status"].(bool); ok {
		d.Status = v
	}
	if v, ok := payload["price"].(float64); ok {
		d.Price = v
	}
	return d
}

func ApplyPharmacyPatch(p Pharmacy, payload PatchPayload) Pharmacy {
	if v, ok := payload["confirmed"].(bool); ok {
		p.Confirmed = v
	}
	if v, ok := payload["blocked"].(bool); ok {
		p.Blocked = v
	}
	return p
}
