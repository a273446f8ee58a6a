// Package access проверяет права пользователя на административные операции.
package access

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Gate разрешает или запрещает административные операции.
type Gate struct {
	store  domain.Store
	logger *log.Entry
}

// NewGate создаёт проверку прав поверх хранилища пользователей.
func NewGate(store domain.Store, logger *log.Entry) *Gate {
	if logger == nil {
		logger = log.New().WithField("component", "access")
	}
	return &Gate{store: store, logger: logger}
}

// RequireAdmin возвращает пользователя, если у него есть роль admin.
// Неизвестный пользователь даёт ErrUserUnresolved (Unauthorized), отсутствие роли даёт ErrAdminRequired (Forbidden).
func (g *Gate) RequireAdmin(ctx context.Context, userID int64) (domain.User, error) {
	var user domain.User
	err := g.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		user, err = uow.Users().GetWithRoles(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUserUnresolved
		}
		g.logger.WithError(err).WithField("user_id", userID).Error("failed to load user roles")
		return domain.User{}, domain.NewInternalError("require admin", err)
	}

	if !user.HasRole(domain.RoleAdmin) {
		g.logger.WithFields(log.Fields{
			"user_id": userID,
			"roles":   user.RoleTitles(),
		}).Warn("admin privileges required")
		return domain.User{}, domain.ErrAdminRequired
	}

	return user, nil
}
