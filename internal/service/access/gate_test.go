package access

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

func createUser(t *testing.T, store domain.Store, email string, roles ...string) domain.User {
	t.Helper()

	var user domain.User
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		u := domain.User{Email: email, PasswordHash: "hash"}
		for _, title := range roles {
			u.Roles = append(u.Roles, domain.Role{Title: title})
		}
		var err error
		user, err = uow.Users().Create(ctx, u)
		return err
	}))
	return user
}

func TestGate_RequireAdmin(t *testing.T) {
	store := memory.NewStore()
	gate := NewGate(store, quietLogger())

	admin := createUser(t, store, "admin@example.com", domain.RoleAdmin, domain.RoleCustomer)
	customer := createUser(t, store, "customer@example.com", domain.RoleCustomer)

	got, err := gate.RequireAdmin(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = gate.RequireAdmin(context.Background(), customer.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, err, domain.ErrAdminRequired)

	_, err = gate.RequireAdmin(context.Background(), 4242)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGate_NilLoggerDefaults(t *testing.T) {
	gate := NewGate(memory.NewStore(), nil)
	require.NotNil(t, gate.logger)
}

func TestGate_CanceledContextIsInternal(t *testing.T) {
	gate := NewGate(memory.NewStore(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gate.RequireAdmin(ctx, 1)
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.ErrorIs(t, err, context.Canceled)
}
