package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const orderColumns = `o.id, o.client_id, o.total_price_minor, o.status, o.kind, o.created_at, o.updated_at`

type orderRepository struct {
	q querier
}

func (r *orderRepository) Create(ctx context.Context, order domain.ClientOrder) (domain.ClientOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO client_orders (client_id, total_price_minor, status, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`,
		order.ClientID, order.TotalPriceMinor, string(order.Status), string(order.Kind),
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ClientOrder{}, domain.ErrUserNotFound
		}
		return domain.ClientOrder{}, fmt.Errorf("insert order: %w", err)
	}

	order.Lines = nil
	return order, nil
}

func (r *orderRepository) AddLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO client_order_products (order_id, product_id, amount, unit_price_minor, kind)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING product_id
		)
		SELECT p.name FROM inserted i JOIN products p ON p.id = i.product_id
	`,
		line.OrderID, line.ProductID, line.Amount, line.UnitPriceMinor, string(line.Kind),
	).Scan(&line.ProductName)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.OrderLine{}, domain.ErrLineExists
		}
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == "client_order_products_order_id_fkey" {
				return domain.OrderLine{}, domain.ErrOrderNotFound
			}
			return domain.OrderLine{}, domain.ErrProductNotFound
		}
		return domain.OrderLine{}, fmt.Errorf("insert order line: %w", err)
	}

	return line, nil
}

func (r *orderRepository) Get(ctx context.Context, lookup domain.OrderLookup) (domain.ClientOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where := newWhere()
	where.add("o.id = %s", lookup.ID)
	if lookup.OwnerID != nil {
		where.add("o.client_id = %s", *lookup.OwnerID)
	}

	order, err := scanOrder(r.q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM client_orders o`+where.sql(), where.args...,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ClientOrder{}, domain.ErrOrderNotFound
		}
		return domain.ClientOrder{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.ClientOrder{}, err
	}
	order.Lines = lines

	return order, nil
}

// List строит один WHERE и для COUNT, и для выборки страницы.
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) ([]domain.ClientOrder, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where := newWhere()
	if filter.ClientID != nil {
		where.add("o.client_id = %s", *filter.ClientID)
	}
	if filter.Status != "" {
		where.add("o.status = %s", string(filter.Status))
	}
	if filter.CustomOnly {
		where.add(`EXISTS (
			SELECT 1 FROM client_order_products cop
			WHERE cop.order_id = o.id AND cop.kind = %s
		)`, string(domain.OrderKindCustom))
	}

	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_orders o`+where.sql(), where.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args := append(where.args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM client_orders o%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, where.sql(), len(where.args)+1, len(where.args)+2,
	)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.ClientOrder, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT cop.order_id, cop.product_id, p.name, cop.amount, cop.unit_price_minor, cop.kind
		FROM client_order_products cop
		JOIN products p ON p.id = cop.product_id
		WHERE cop.order_id = $1
		ORDER BY cop.product_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line domain.OrderLine
			kind string
		)
		if err := rows.Scan(
			&line.OrderID, &line.ProductID, &line.ProductName,
			&line.Amount, &line.UnitPriceMinor, &kind,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.Kind = domain.OrderKind(kind)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func scanOrder(row rowScanner) (domain.ClientOrder, error) {
	var (
		order        domain.ClientOrder
		status, kind string
	)
	if err := row.Scan(
		&order.ID, &order.ClientID, &order.TotalPriceMinor,
		&status, &kind, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.ClientOrder{}, err
	}
	order.Status = domain.OrderStatus(status)
	order.Kind = domain.OrderKind(kind)
	return order, nil
}

// whereBuilder собирает условия с позиционными параметрами $1..$n.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere() *whereBuilder {
	return &whereBuilder{}
}

// add принимает условие с одним плейсхолдером %s под очередной параметр.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var _ domain.OrderRepository = (*orderRepository)(nil)
