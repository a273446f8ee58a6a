package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const supplierOrderSelect = `
	SELECT so.id, so.supplier_id, so.product_id, so.amount, so.total_price_minor, so.status,
	       COALESCE(s.name, ''), COALESCE(p.name, ''), so.created_at, so.updated_at
	FROM supplier_orders so
	LEFT JOIN suppliers s ON s.id = so.supplier_id
	LEFT JOIN products p ON p.id = so.product_id
`

type supplierOrderRepository struct {
	q querier
}

func (r *supplierOrderRepository) Create(ctx context.Context, order domain.SupplierOrder) (domain.SupplierOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.Status == "" {
		order.Status = domain.SupplierOrderStatusPlaced
	}

	var id int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO supplier_orders (supplier_id, product_id, amount, total_price_minor, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, order.SupplierID, order.ProductID, order.Amount, order.TotalPriceMinor, order.Status).Scan(&id)
	if err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == "supplier_orders_product_id_fkey" {
				return domain.SupplierOrder{}, domain.ErrProductNotFound
			}
			return domain.SupplierOrder{}, domain.ErrSupplierNotFound
		}
		return domain.SupplierOrder{}, fmt.Errorf("insert supplier order: %w", err)
	}

	return r.get(ctx, id)
}

func (r *supplierOrderRepository) Get(ctx context.Context, id int64) (domain.SupplierOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.get(ctx, id)
}

func (r *supplierOrderRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.SupplierOrder, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM supplier_orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count supplier orders: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, supplierOrderSelect+`
		ORDER BY so.created_at DESC, so.id DESC
		LIMIT $1 OFFSET $2
	`, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list supplier orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.SupplierOrder, 0)
	for rows.Next() {
		order, err := scanSupplierOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate supplier order rows: %w", err)
	}
	return orders, total, nil
}

func (r *supplierOrderRepository) get(ctx context.Context, id int64) (domain.SupplierOrder, error) {
	order, err := scanSupplierOrder(r.q.QueryRowContext(ctx, supplierOrderSelect+` WHERE so.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SupplierOrder{}, domain.ErrSupplierOrderNotFound
		}
		return domain.SupplierOrder{}, fmt.Errorf("select supplier order: %w", err)
	}
	return order, nil
}

func scanSupplierOrder(row rowScanner) (domain.SupplierOrder, error) {
	var o domain.SupplierOrder
	err := row.Scan(
		&o.ID, &o.SupplierID, &o.ProductID, &o.Amount, &o.TotalPriceMinor, &o.Status,
		&o.SupplierName, &o.ProductName, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

var _ domain.SupplierOrderRepository = (*supplierOrderRepository)(nil)
