package catalog

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/access"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

type env struct {
	svc      *Service
	admin    int64
	customer int64
}

func newEnv(t *testing.T) env {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "test")

	store := memory.NewStore()
	var e env
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		admin, err := uow.Users().Create(ctx, domain.User{Email: "admin@example.com", Roles: []domain.Role{{Title: domain.RoleAdmin}}})
		if err != nil {
			return err
		}
		customer, err := uow.Users().Create(ctx, domain.User{Email: "c@example.com", Roles: []domain.Role{{Title: domain.RoleCustomer}}})
		if err != nil {
			return err
		}
		e.admin, e.customer = admin.ID, customer.ID
		return nil
	}))

	e.svc = NewService(store, access.NewGate(store, entry), entry)
	return e
}

func validSupplier() SupplierInput {
	return SupplierInput{
		Name: "Acme", Email: "Sales@Acme.test", Phone: "5550001",
		Address: "1 Main", City: "Springfield", State: "IL", Country: "US", PostalCode: "62701",
	}
}

func TestCatalog_ProductLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	supplier, err := e.svc.CreateSupplier(ctx, e.admin, validSupplier())
	require.NoError(t, err)
	assert.Equal(t, "sales@acme.test", supplier.Email)
	assert.True(t, supplier.IsActive)

	product, err := e.svc.CreateProduct(ctx, e.admin, ProductInput{
		Name: "Widget", Description: "Blue widget", PriceMinor: 1250, Stock: 7, SupplierID: &supplier.ID,
	})
	require.NoError(t, err)

	got, err := e.svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, got)

	page, err := e.svc.ListProducts(ctx, "WIDG", domain.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)

	empty, err := e.svc.ListProducts(ctx, "nothing", domain.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.TotalPages)
}

func TestCatalog_ProductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateProduct(ctx, e.admin, ProductInput{Name: " ", PriceMinor: -1, Stock: -1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.ErrorIs(t, err, domain.ErrProductNameRequired)
	assert.ErrorIs(t, err, domain.ErrStockNegative)

	missing := int64(404)
	_, err = e.svc.CreateProduct(ctx, e.admin, ProductInput{Name: "Widget", SupplierID: &missing})
	require.ErrorIs(t, err, domain.ErrSupplierNotFound)

	_, err = e.svc.CreateProduct(ctx, e.customer, ProductInput{Name: "Widget"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.svc.GetProduct(ctx, 999)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalog_SupplierRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateSupplier(ctx, e.admin, validSupplier())
	require.NoError(t, err)

	dup := validSupplier()
	dup.Email = "other@acme.test"
	dup.Phone = "5550002"
	_, err = e.svc.CreateSupplier(ctx, e.admin, dup)
	require.ErrorIs(t, err, domain.ErrConflict)

	bad := validSupplier()
	bad.City = ""
	bad.Phone = "1234567890123456"
	_, err = e.svc.CreateSupplier(ctx, e.admin, bad)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = e.svc.CreateSupplier(ctx, 999, validSupplier())
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	page, err := e.svc.ListSuppliers(ctx, "", domain.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)

	_, err = e.svc.GetSupplier(ctx, 42)
	require.ErrorIs(t, err, domain.ErrSupplierNotFound)

	_, err = e.svc.ListSuppliers(ctx, "", domain.PageRequest{Page: 1, PageSize: 0})
	require.ErrorIs(t, err, domain.ErrPageSizeInvalid)
}
