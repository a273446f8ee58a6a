package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type productRepository struct {
	st *state
}

// Create сохраняет товар; для несуществующего поставщика возвращает ErrSupplierNotFound.
func (r *productRepository) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	if product.SupplierID != nil {
		if _, ok := r.st.suppliers[*product.SupplierID]; !ok {
			return domain.Product{}, domain.ErrSupplierNotFound
		}
		supplierID := *product.SupplierID
		product.SupplierID = &supplierID
	}

	product.ID = r.st.next("products")
	r.st.products[product.ID] = product
	return product, nil
}

func (r *productRepository) Get(_ context.Context, id int64) (domain.Product, error) {
	product, ok := r.st.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetMany возвращает найденные товары в порядке первого упоминания ID.
func (r *productRepository) GetMany(_ context.Context, ids []int64) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.st.products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

func (r *productRepository) List(_ context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error) {
	needle := strings.ToLower(filter.NameContains)

	matched := make([]domain.Product, 0, len(r.st.products))
	for _, product := range r.st.products {
		if needle != "" && !strings.Contains(strings.ToLower(product.Name), needle) {
			continue
		}
		matched = append(matched, product)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return paginate(matched, page), len(matched), nil
}

func (r *productRepository) DecrementStock(_ context.Context, id int64, amount int32) (bool, error) {
	product, ok := r.st.products[id]
	if !ok || product.Stock < amount {
		return false, nil
	}
	product.Stock -= amount
	r.st.products[id] = product
	return true, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
