package domain

import "time"

const (
	// RoleAdmin — единственная роль, которую проверяют бизнес-операции.
	RoleAdmin = "admin"
	// RoleCustomer назначается при регистрации.
	RoleCustomer = "customer"
)

// Role — именованная роль пользователя.
type Role struct {
	ID    int64
	Title string
}

// User — учётная запись клиента или администратора.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

// HasRole проверяет наличие роли у пользователя.
func (u *User) HasRole(title string) bool {
	for _, role := range u.Roles {
		if role.Title == title {
			return true
		}
	}
	return false
}

// RoleTitles возвращает названия ролей в исходном порядке.
func (u *User) RoleTitles() []string {
	titles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		titles = append(titles, role.Title)
	}
	return titles
}

// MinPasswordLength — минимальная длина пароля при регистрации.
const MinPasswordLength = 8
