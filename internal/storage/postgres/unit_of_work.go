package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier — общее подмножество *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type unitOfWork struct {
	q querier
}

func newUnitOfWork(q querier) *unitOfWork {
	return &unitOfWork{q: q}
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return &productRepository{q: u.q}
}

func (u *unitOfWork) Suppliers() domain.SupplierRepository {
	return &supplierRepository{q: u.q}
}

func (u *unitOfWork) Users() domain.UserRepository {
	return &userRepository{q: u.q}
}

func (u *unitOfWork) Orders() domain.OrderRepository {
	return &orderRepository{q: u.q}
}

func (u *unitOfWork) SupplierOrders() domain.SupplierOrderRepository {
	return &supplierOrderRepository{q: u.q}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// foreignKeyViolation возвращает имя нарушенного ограничения внешнего ключа.
func foreignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
