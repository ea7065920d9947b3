package domain

import "time"

// Entity - общий контракт для всех сущностей, которыми управляет админ-панель.
// Каждая сущность принадлежит бэкенду; мы храним лишь временную копию.
type Entity interface {
	Key() string
}

// User - пользователь платформы (фармацевт или владелец аптеки).
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Confirmed bool      `json:"confirmed"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Key() string { return u.ID }

// Advertisement - рекламный баннер, размещаемый на витрине.
type Advertisement struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"imageUrl"`
	TargetPosition string    `json:"targetPosition"`
	Status         bool      `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (a Advertisement) Key() string { return a.ID }

// AdRequest - заявка компании на размещение рекламы.
type AdRequest struct {
	ID             string    `json:"id"`
	CompanyName    string    `json:"companyName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	TargetPosition string    `json:"targetPosition"`
	Status         string    `json:"status"` // waiting | approved | rejected
	CreatedAt      time.Time `json:"createdAt"`
}

func (r AdRequest) Key() string { return r.ID }

// ContactMessage - обращение из формы обратной связи.
type ContactMessage struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"` // waiting | contacted | closed
	CreatedAt time.Time `json:"createdAt"`
}

func (m ContactMessage) Key() string { return m.ID }

// Deal - акционное предложение на лекарство.
type Deal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DrugName  string    `json:"drugName"`
	Price     float64   `json:"price"`
	Discount  float64   `json:"discount"`
	Status    bool      `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d Deal) Key() string { return d.ID }

// Drug - позиция справочника лекарств.
type Drug struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer"`
	Price        float64   `json:"price"`
	Status       bool      `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (d Drug) Key() string { return d.ID }

// Pharmacy - зарегистрированная аптека.
type Pharmacy struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	OwnerName     string    `json:"ownerName"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	LicenseNumber string    `json:"licenseNumber"`
	Confirmed     bool      `json:"confirmed"`
	Blocked       bool      `json:"blocked"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p Pharmacy) Key() string { return p.ID }
