package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository.
type orderRepository struct {
	st  *state
	now func() time.Time
}

// Create сохраняет заказ без позиций; позиции добавляются через AddLine.
func (r *orderRepository) Create(_ context.Context, order domain.ClientOrder) (domain.ClientOrder, error) {
	now := r.now()
	order.ID = r.st.next("orders")
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Lines = nil

	r.st.orders[order.ID] = order
	return order, nil
}

// AddLine сохраняет позицию, проверяя ссылки на заказ и товар.
func (r *orderRepository) AddLine(_ context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	if _, ok := r.st.orders[line.OrderID]; !ok {
		return domain.OrderLine{}, domain.ErrOrderNotFound
	}
	product, ok := r.st.products[line.ProductID]
	if !ok {
		return domain.OrderLine{}, domain.ErrProductNotFound
	}
	for _, existing := range r.st.lines[line.OrderID] {
		if existing.ProductID == line.ProductID {
			return domain.OrderLine{}, domain.ErrLineExists
		}
	}

	line.ProductName = ""
	r.st.lines[line.OrderID] = append(r.st.lines[line.OrderID], line)

	line.ProductName = product.Name
	return line, nil
}

// Get возвращает заказ с позициями; чужой заказ при заданном OwnerID не виден.
func (r *orderRepository) Get(_ context.Context, lookup domain.OrderLookup) (domain.ClientOrder, error) {
	order, ok := r.st.orders[lookup.ID]
	if !ok {
		return domain.ClientOrder{}, domain.ErrOrderNotFound
	}
	if lookup.OwnerID != nil && order.ClientID != *lookup.OwnerID {
		return domain.ClientOrder{}, domain.ErrOrderNotFound
	}

	stored := r.st.lines[order.ID]
	order.Lines = make([]domain.OrderLine, 0, len(stored))
	for _, line := range stored {
		if product, ok := r.st.products[line.ProductID]; ok {
			line.ProductName = product.Name
		}
		order.Lines = append(order.Lines, line)
	}
	return order, nil
}

// List фильтрует, сортирует (created_at DESC, id DESC) и режет страницу.
func (r *orderRepository) List(_ context.Context, filter domain.OrderFilter, page domain.PageRequest) ([]domain.ClientOrder, int, error) {
	matched := make([]domain.ClientOrder, 0, len(r.st.orders))
	for _, order := range r.st.orders {
		if filter.ClientID != nil && order.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.CustomOnly && !r.hasCustomLine(order.ID) {
			continue
		}
		matched = append(matched, order)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	return paginate(matched, page), len(matched), nil
}

func (r *orderRepository) hasCustomLine(orderID int64) bool {
	for _, line := range r.st.lines[orderID] {
		if line.Kind == domain.OrderKindCustom {
			return true
		}
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
