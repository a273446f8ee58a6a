// Package auth регистрирует пользователей и выдаёт им токены доступа.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// bcrypt учитывает только первые 72 байта пароля.
const maxPasswordBytes = 72

// Token — выданный access-токен.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Profile — публичное представление пользователя.
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// Service реализует регистрацию, вход и проверку токенов.
type Service struct {
	store  domain.Store
	tokens *TokenIssuer
	logger *log.Entry
	cost   int
}

// Option настраивает Service.
type Option func(*Service)

// WithBcryptCost меняет стоимость хеширования (в тестах bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService конструирует сервис аутентификации.
func NewService(store domain.Store, tokens *TokenIssuer, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "auth")
	}
	s := &Service{store: store, tokens: tokens, logger: logger, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создаёт пользователя с ролью customer.
func (s *Service) Register(ctx context.Context, email, name, password string) (Profile, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Profile{}, domain.ErrEmailInvalid
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return Profile{}, domain.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return Profile{}, &domain.FieldError{Field: "password", Reason: "must be at most 72 bytes"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Profile{}, domain.NewInternalError("hash password", err)
	}

	var user domain.User
	err = s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		user, err = uow.Users().Create(ctx, domain.User{
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: string(hash),
			Roles:        []domain.Role{{Title: domain.RoleCustomer}},
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.logger.WithField("email", email).Warn("registration with taken email")
			return Profile{}, err
		}
		return Profile{}, s.internal("register", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return toProfile(user), nil
}

// Login проверяет пару email/пароль и выдаёт токен.
// Неизвестный email и неверный пароль дают одинаковую ошибку.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	email = normalizeEmail(email)

	var user domain.User
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		user, err = uow.Users().GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Token{}, domain.ErrInvalidCredentials
		}
		return Token{}, s.internal("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("login with wrong password")
		return Token{}, domain.ErrInvalidCredentials
	}

	signed, expires, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Token{}, domain.NewInternalError("issue token", err)
	}

	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expires}, nil
}

// Authenticate проверяет токен и возвращает пользователя с ролями.
func (s *Service) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	userID, err := s.tokens.Parse(raw)
	if err != nil {
		s.logger.WithError(err).Debug("token rejected")
		return domain.User{}, domain.ErrTokenInvalid
	}

	var user domain.User
	err = s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		user, err = uow.Users().GetWithRoles(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUserUnresolved
		}
		return domain.User{}, s.internal("authenticate", err)
	}
	return user, nil
}

// Me возвращает профиль текущего пользователя.
func (s *Service) Me(ctx context.Context, userID int64) (Profile, error) {
	var user domain.User
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		user, err = uow.Users().GetWithRoles(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Profile{}, domain.ErrUserUnresolved
		}
		return Profile{}, s.internal("me", err)
	}
	return toProfile(user), nil
}

// GrantRole выдаёт роль пользователю по email (используется shopctl).
func (s *Service) GrantRole(ctx context.Context, email, role string) (Profile, error) {
	email = normalizeEmail(email)

	var user domain.User
	err := s.store.InTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		found, err := uow.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := uow.Users().AddRole(ctx, found.ID, role); err != nil {
			return err
		}
		user, err = uow.Users().GetWithRoles(ctx, found.ID)
		return err
	})
	if err != nil {
		return Profile{}, s.internal("grant role", err)
	}

	s.logger.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    role,
	}).Info("role granted")
	return toProfile(user), nil
}

func (s *Service) internal(op string, err error) error {
	if domain.IsKind(err) {
		return err
	}
	s.logger.WithError(err).WithField("op", op).Error("storage failure")
	return domain.NewInternalError(op, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toProfile(u domain.User) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     u.RoleTitles(),
		CreatedAt: u.CreatedAt,
	}
}
