package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, user.Email, user.Name, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	roles := make([]domain.Role, 0, len(user.Roles))
	for _, role := range user.Roles {
		granted, err := r.grant(ctx, user.ID, role.Title)
		if err != nil {
			return domain.User{}, err
		}
		roles = append(roles, granted)
	}
	user.Roles = roles

	return user, nil
}

func (r *userRepository) GetWithRoles(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *userRepository) AddRole(ctx context.Context, userID int64, title string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.grant(ctx, userID, title)
	return err
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user domain.User
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users `+where, arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	user.Roles = roles
	return user, nil
}

func (r *userRepository) loadRoles(ctx context.Context, userID int64) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.title
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load user roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Title); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// grant создаёт роль при отсутствии и привязывает её к пользователю; повтор не ошибка.
func (r *userRepository) grant(ctx context.Context, userID int64, title string) (domain.Role, error) {
	role := domain.Role{Title: title}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO roles (title) VALUES ($1)
		ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
		RETURNING id
	`, title).Scan(&role.ID)
	if err != nil {
		return domain.Role{}, fmt.Errorf("ensure role %s: %w", title, err)
	}

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, role.ID); err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return domain.Role{}, domain.ErrUserNotFound
		}
		return domain.Role{}, fmt.Errorf("grant role %s: %w", title, err)
	}
	return role, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
