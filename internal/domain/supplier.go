package domain

import (
	"strings"
	"time"
)

// Supplier — поставщик товаров. Не владеет жизненным циклом своих товаров.
type Supplier struct {
	ID         int64
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	Country    string
	PostalCode string
	IsActive   bool
}

// Validate проверяет обязательные поля поставщика.
func (s *Supplier) Validate() []error {
	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"name", s.Name},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"country", s.Country},
		{"postal_code", s.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, &FieldError{Field: r.field, Reason: "is required"})
		}
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		errs = append(errs, &FieldError{Field: "email", Reason: "must be a valid email"})
	}
	if len(s.Phone) > 15 {
		errs = append(errs, &FieldError{Field: "phone", Reason: "must be at most 15 characters"})
	}

	return errs
}

// SupplierFilter задаёт условия выборки поставщиков.
type SupplierFilter struct {
	NameContains string
}

// SupplierOrderStatusPlaced — статус нового заказа поставщику.
const SupplierOrderStatusPlaced = "placed"

// SupplierOrder — заказ на пополнение склада у поставщика.
type SupplierOrder struct {
	ID         int64
	SupplierID int64
	ProductID  int64
	Amount     int32
	// TotalPriceMinor — сумма, уплаченная поставщику.
	TotalPriceMinor int64
	// Status — произвольная строка, жизненный цикл не зависит от клиентских заказов.
	Status string
	// SupplierName и ProductName заполняются при чтении.
	SupplierName string
	ProductName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
