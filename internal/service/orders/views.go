package orders

import (
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// OrderCreated — ответ на успешное оформление заказа.
type OrderCreated struct {
	OrderID int64 `json:"order_id"`
}

// OrderSummary — строка списка заказов.
type OrderSummary struct {
	ID              int64              `json:"id"`
	ClientID        int64              `json:"client_id"`
	TotalPriceMinor int64              `json:"total_price_minor"`
	Status          domain.OrderStatus `json:"status"`
	Kind            domain.OrderKind   `json:"kind"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// LineView — позиция заказа в ответе.
type LineView struct {
	ProductID      int64            `json:"product_id"`
	Name           string           `json:"name"`
	Amount         int32            `json:"amount"`
	UnitPriceMinor int64            `json:"unit_price_minor"`
	Kind           domain.OrderKind `json:"kind"`
}

// OrderDetail — заказ вместе с позициями.
type OrderDetail struct {
	OrderSummary
	Lines []LineView `json:"lines"`
}

// SupplierOrderView — заказ поставщику с именами поставщика и товара.
type SupplierOrderView struct {
	ID              int64     `json:"id"`
	SupplierID      int64     `json:"supplier_id"`
	SupplierName    string    `json:"supplier_name"`
	ProductID       int64     `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Amount          int32     `json:"amount"`
	TotalPriceMinor int64     `json:"total_price_minor"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toSummary(o domain.ClientOrder) OrderSummary {
	return OrderSummary{
		ID:              o.ID,
		ClientID:        o.ClientID,
		TotalPriceMinor: o.TotalPriceMinor,
		Status:          o.Status,
		Kind:            o.Kind,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toDetail(o domain.ClientOrder) OrderDetail {
	lines := make([]LineView, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, LineView{
			ProductID:      line.ProductID,
			Name:           line.ProductName,
			Amount:         line.Amount,
			UnitPriceMinor: line.UnitPriceMinor,
			Kind:           line.Kind,
		})
	}
	return OrderDetail{OrderSummary: toSummary(o), Lines: lines}
}

func toSupplierOrderView(o domain.SupplierOrder) SupplierOrderView {
	return SupplierOrderView{
		ID:              o.ID,
		SupplierID:      o.SupplierID,
		SupplierName:    o.SupplierName,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		Amount:          o.Amount,
		TotalPriceMinor: o.TotalPriceMinor,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
