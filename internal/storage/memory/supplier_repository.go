package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type supplierRepository struct {
	st *state
}

// Create сохраняет поставщика, соблюдая уникальность имени, email и телефона.
func (r *supplierRepository) Create(_ context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	for _, existing := range r.st.suppliers {
		if existing.Name == supplier.Name || existing.Email == supplier.Email || existing.Phone == supplier.Phone {
			return domain.Supplier{}, domain.ErrSupplierExists
		}
	}

	supplier.ID = r.st.next("suppliers")
	r.st.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *supplierRepository) Get(_ context.Context, id int64) (domain.Supplier, error) {
	supplier, ok := r.st.suppliers[id]
	if !ok {
		return domain.Supplier{}, domain.ErrSupplierNotFound
	}
	return supplier, nil
}

func (r *supplierRepository) List(_ context.Context, filter domain.SupplierFilter, page domain.PageRequest) ([]domain.Supplier, int, error) {
	needle := strings.ToLower(filter.NameContains)

	matched := make([]domain.Supplier, 0, len(r.st.suppliers))
	for _, supplier := range r.st.suppliers {
		if needle != "" && !strings.Contains(strings.ToLower(supplier.Name), needle) {
			continue
		}
		matched = append(matched, supplier)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return paginate(matched, page), len(matched), nil
}

var _ domain.SupplierRepository = (*supplierRepository)(nil)
