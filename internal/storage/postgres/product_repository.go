package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const productColumns = `id, name, description, price_minor, stock, supplier_id`

type productRepository struct {
	q querier
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price_minor, stock, supplier_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		product.Name, product.Description, product.PriceMinor, product.Stock, nullableID(product.SupplierID),
	).Scan(&product.ID)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return domain.Product{}, domain.ErrSupplierNotFound
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := scanProduct(r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) GetMany(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	const where = ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, filter.NameContains).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products`+where+`
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, filter.NameContains, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// DecrementStock уменьшает остаток одним условным UPDATE без предварительного чтения.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, amount int32) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1
		WHERE id = $2
		  AND stock >= $1
	`, amount, id)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product    domain.Product
		supplierID sql.NullInt64
	)
	if err := row.Scan(
		&product.ID, &product.Name, &product.Description,
		&product.PriceMinor, &product.Stock, &supplierID,
	); err != nil {
		return domain.Product{}, err
	}
	if supplierID.Valid {
		id := supplierID.Int64
		product.SupplierID = &id
	}
	return product, nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

var _ domain.ProductRepository = (*productRepository)(nil)
