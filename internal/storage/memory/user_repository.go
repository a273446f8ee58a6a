package memory

import (
	"context"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type userRepository struct {
	st  *state
	now func() time.Time
}

func (r *userRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	roles := make([]domain.Role, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = appendRole(roles, r.roleFor(role.Title))
	}

	user.ID = r.st.next("users")
	user.Roles = roles
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	r.st.users[user.ID] = user
	return cloneUser(user), nil
}

func (r *userRepository) GetWithRoles(_ context.Context, id int64) (domain.User, error) {
	user, ok := r.st.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range r.st.users {
		if strings.EqualFold(user.Email, email) {
			return cloneUser(user), nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *userRepository) AddRole(_ context.Context, userID int64, title string) error {
	user, ok := r.st.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Roles = appendRole(user.Roles, r.roleFor(title))
	r.st.users[userID] = user
	return nil
}

// roleFor возвращает роль по названию, создавая её при первом обращении.
func (r *userRepository) roleFor(title string) domain.Role {
	id, ok := r.st.roles[title]
	if !ok {
		id = r.st.next("roles")
		r.st.roles[title] = id
	}
	return domain.Role{ID: id, Title: title}
}

func appendRole(roles []domain.Role, role domain.Role) []domain.Role {
	for _, existing := range roles {
		if existing.ID == role.ID {
			return roles
		}
	}
	return append(roles, role)
}

func cloneUser(user domain.User) domain.User {
	user.Roles = append([]domain.Role(nil), user.Roles...)
	return user
}

var _ domain.UserRepository = (*userRepository)(nil)
