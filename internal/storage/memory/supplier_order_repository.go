package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type supplierOrderRepository struct {
	st  *state
	now func() time.Time
}

func (r *supplierOrderRepository) Create(_ context.Context, order domain.SupplierOrder) (domain.SupplierOrder, error) {
	if _, ok := r.st.suppliers[order.SupplierID]; !ok {
		return domain.SupplierOrder{}, domain.ErrSupplierNotFound
	}
	if _, ok := r.st.products[order.ProductID]; !ok {
		return domain.SupplierOrder{}, domain.ErrProductNotFound
	}
	if order.Status == "" {
		order.Status = domain.SupplierOrderStatusPlaced
	}

	now := r.now()
	order.ID = r.st.next("supplier_orders")
	order.CreatedAt = now
	order.UpdatedAt = now
	order.SupplierName = ""
	order.ProductName = ""

	r.st.supplierOrders[order.ID] = order
	return r.withNames(order), nil
}

func (r *supplierOrderRepository) Get(_ context.Context, id int64) (domain.SupplierOrder, error) {
	order, ok := r.st.supplierOrders[id]
	if !ok {
		return domain.SupplierOrder{}, domain.ErrSupplierOrderNotFound
	}
	return r.withNames(order), nil
}

func (r *supplierOrderRepository) List(_ context.Context, page domain.PageRequest) ([]domain.SupplierOrder, int, error) {
	all := make([]domain.SupplierOrder, 0, len(r.st.supplierOrders))
	for _, order := range r.st.supplierOrders {
		all = append(all, order)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	pageItems := paginate(all, page)
	result := make([]domain.SupplierOrder, 0, len(pageItems))
	for _, order := range pageItems {
		result = append(result, r.withNames(order))
	}
	return result, len(all), nil
}

// withNames подставляет имена поставщика и товара, как eager-load в SQL.
func (r *supplierOrderRepository) withNames(order domain.SupplierOrder) domain.SupplierOrder {
	if supplier, ok := r.st.suppliers[order.SupplierID]; ok {
		order.SupplierName = supplier.Name
	}
	if product, ok := r.st.products[order.ProductID]; ok {
		order.ProductName = product.Name
	}
	return order
}

var _ domain.SupplierOrderRepository = (*supplierOrderRepository)(nil)
