package domain

import (
	"math"
	"time"
)

// OrderStatus описывает жизненный цикл клиентского заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, но ещё не подтверждён.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — товары списаны со склада, заказ подтверждён.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCanceled — заказ отменён.
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusProcessing — заказ собирается.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ получен клиентом.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCustomPending — индивидуальный заказ ждёт расчёта цены.
	OrderStatusCustomPending OrderStatus = "custom_pending"
)

// ParseOrderStatus проверяет строку на принадлежность к известным статусам.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCanceled,
		OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCustomPending:
		return s, nil
	default:
		return "", ErrOrderStatusInvalid
	}
}

// OrderKind отделяет обычные заказы от индивидуальных (запрос цены).
type OrderKind string

const (
	OrderKindStandard OrderKind = "standard"
	OrderKindCustom   OrderKind = "custom"
)

// OrderLine — позиция заказа. Ключ (OrderID, ProductID) уникален.
type OrderLine struct {
	OrderID   int64
	ProductID int64
	// ProductName заполняется только при чтении заказа.
	ProductName string
	Amount      int32
	// UnitPriceMinor — цена товара на момент оформления, а не ссылка на текущую.
	UnitPriceMinor int64
	Kind           OrderKind
}

// ClientOrder агрегирует заказ клиента и его позиции.
type ClientOrder struct {
	ID              int64
	ClientID        int64
	TotalPriceMinor int64
	Status          OrderStatus
	Kind            OrderKind
	Lines           []OrderLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasCustomLine сообщает, есть ли в заказе индивидуальная позиция.
func (o *ClientOrder) HasCustomLine() bool {
	for _, line := range o.Lines {
		if line.Kind == OrderKindCustom {
			return true
		}
	}
	return false
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *ClientOrder) ValidateInvariants() []error {
	var errs []error

	if o.ClientID <= 0 {
		errs = append(errs, ErrClientRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalPriceMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сумма заказа должна совпадать с суммой позиций: amount * unit_price.
	var (
		calc     int64
		overflow bool
	)
	for _, line := range o.Lines {
		if line.Amount <= 0 {
			errs = append(errs, ErrItemAmountInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if line.Amount <= 0 || line.UnitPriceMinor < 0 || overflow {
			continue
		}
		var ok bool
		if calc, ok = AddLineTotal(calc, line.UnitPriceMinor, line.Amount); !ok {
			overflow = true
		}
	}
	switch {
	case overflow:
		errs = append(errs, ErrTotalOutOfRange)
	case calc != o.TotalPriceMinor:
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// OrderFilter задаёт условия выборки заказов.
type OrderFilter struct {
	// ClientID ограничивает выборку заказами клиента, nil означает всех клиентов.
	ClientID *int64
	// Status: точное совпадение статуса, пустая строка отключает фильтр.
	Status OrderStatus
	// CustomOnly оставляет заказы хотя бы с одной индивидуальной позицией.
	CustomOnly bool
}

// OrderLookup описывает поиск одного заказа.
type OrderLookup struct {
	ID int64
	// OwnerID при заданном значении скрывает чужие заказы.
	OwnerID *int64
}

// AddLineTotal прибавляет unitPrice*amount к total.
// false означает отрицательные аргументы или переполнение int64.
func AddLineTotal(total, unitPrice int64, amount int32) (int64, bool) {
	if total < 0 || unitPrice < 0 || amount <= 0 {
		return 0, false
	}
	if unitPrice > 0 && int64(amount) > (math.MaxInt64-total)/unitPrice {
		return 0, false
	}
	return total + unitPrice*int64(amount), true
}
