package postgres

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/access"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
)

func newOrdersServiceForIntegrationTest(store *Store) *orders.Service {
	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "integration")
	return orders.NewService(store, access.NewGate(store, entry), entry)
}

func widgetStock(ctx context.Context, t *testing.T, store *Store, id int64) int32 {
	t.Helper()

	var stock int32
	require.NoError(t, store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		product, err := uow.Products().Get(ctx, id)
		stock = product.Stock
		return err
	}))
	return stock
}

func TestPurchase_ConcurrentRequestsNeverOversell(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := seedFixture(ctx, t, store)
	svc := newOrdersServiceForIntegrationTest(store)

	const (
		initial = 7
		amount  = 2
		workers = 12
	)
	_, err := store.DB().ExecContext(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, initial, f.widget.ID)
	require.NoError(t, err)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		unexpected []error
	)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := svc.CreatePurchaseOrder(ctx, f.customer.ID, []orders.PurchaseItem{
				{ProductID: f.widget.ID, Amount: amount},
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, unexpected)

	final := widgetStock(ctx, t, store, f.widget.ID)
	assert.GreaterOrEqual(t, final, int32(0))
	assert.Equal(t, int32(succeeded*amount), int32(initial)-final)
	assert.Equal(t, initial/amount, succeeded)

	require.NoError(t, store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		_, total, err := uow.Orders().List(ctx, domain.OrderFilter{ClientID: &f.customer.ID}, domain.NewPageRequest(1, 50))
		require.NoError(t, err)
		assert.Equal(t, succeeded, total)
		return nil
	}))
}

func TestPurchase_LinesKeepPriceAfterCatalogChange(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := seedFixture(ctx, t, store)
	svc := newOrdersServiceForIntegrationTest(store)

	created, err := svc.CreatePurchaseOrder(ctx, f.customer.ID, []orders.PurchaseItem{
		{ProductID: f.widget.ID, Amount: 2},
	})
	require.NoError(t, err)

	_, err = store.DB().ExecContext(ctx, `UPDATE products SET price_minor = 9999 WHERE id = $1`, f.widget.ID)
	require.NoError(t, err)

	detail, err := svc.GetOrder(ctx, f.customer.ID, created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*250), detail.TotalPriceMinor)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, int64(250), detail.Lines[0].UnitPriceMinor)
	assert.Equal(t, int32(2), detail.Lines[0].Amount)
}
