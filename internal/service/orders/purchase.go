package orders

import (
	"context"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// loadProducts читает все товары запроса одним запросом.
// Отсутствующие ID перечисляются в порядке запроса, без повторов.
func loadProducts(ctx context.Context, uow domain.UnitOfWork, items []PurchaseItem) (map[int64]domain.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := uow.Products().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ProductsNotFoundError{IDs: missing}
	}

	return byID, nil
}

// buildLines проверяет каждую позицию запроса по одному снимку остатков
// и сливает повторы товара в одну строку заказа. Повтор сверяется с остатком,
// который останется после списания предыдущих позиций того же товара.
func buildLines(items []PurchaseItem, products map[int64]domain.Product) ([]domain.OrderLine, int64, error) {
	var (
		total int64
		lines = make([]domain.OrderLine, 0, len(items))
		index = make(map[int64]int, len(items))
	)

	for _, item := range items {
		product := products[item.ProductID]

		var taken int32
		i, merged := index[item.ProductID]
		if merged {
			taken = lines[i].Amount
		}
		// taken <= Stock, поэтому сравнение без сложения не переполняет int32.
		if product.Stock-taken < item.Amount {
			return nil, 0, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Amount,
				Available:   product.Stock - taken,
			}
		}

		var ok bool
		if total, ok = domain.AddLineTotal(total, product.PriceMinor, item.Amount); !ok {
			return nil, 0, domain.ErrTotalOutOfRange
		}

		if merged {
			lines[i].Amount += item.Amount
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, domain.OrderLine{
			ProductID:      product.ID,
			Amount:         item.Amount,
			UnitPriceMinor: product.PriceMinor,
			Kind:           domain.OrderKindStandard,
		})
	}

	return lines, total, nil
}

// insufficientAfterRace строит ошибку по живому остатку, когда условное
// списание не прошло после успешной проверки снимка.
func insufficientAfterRace(ctx context.Context, uow domain.UnitOfWork, item PurchaseItem, snapshot domain.Product) error {
	available := snapshot.Stock
	if live, err := uow.Products().Get(ctx, item.ProductID); err == nil {
		available = live.Stock
	}
	return &domain.InsufficientStockError{
		ProductID:   snapshot.ID,
		ProductName: snapshot.Name,
		Requested:   item.Amount,
		Available:   available,
	}
}
