package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const supplierColumns = `id, name, email, phone, address, city, state, country, postal_code, is_active`

type supplierRepository struct {
	q querier
}

func (r *supplierRepository) Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO suppliers (name, email, phone, address, city, state, country, postal_code, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		supplier.Name, supplier.Email, supplier.Phone, supplier.Address, supplier.City,
		supplier.State, supplier.Country, supplier.PostalCode, supplier.IsActive,
	).Scan(&supplier.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Supplier{}, domain.ErrSupplierExists
		}
		return domain.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return supplier, nil
}

func (r *supplierRepository) Get(ctx context.Context, id int64) (domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	supplier, err := scanSupplier(r.q.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Supplier{}, domain.ErrSupplierNotFound
		}
		return domain.Supplier{}, fmt.Errorf("select supplier: %w", err)
	}
	return supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, filter domain.SupplierFilter, page domain.PageRequest) ([]domain.Supplier, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	const where = ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM suppliers`+where, filter.NameContains).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `SELECT `+supplierColumns+` FROM suppliers`+where+`
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, filter.NameContains, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0)
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier row: %w", err)
		}
		suppliers = append(suppliers, supplier)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate supplier rows: %w", err)
	}
	return suppliers, total, nil
}

func scanSupplier(row rowScanner) (domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address,
		&s.City, &s.State, &s.Country, &s.PostalCode, &s.IsActive,
	)
	return s, err
}

var _ domain.SupplierRepository = (*supplierRepository)(nil)
