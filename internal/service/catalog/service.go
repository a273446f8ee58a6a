// Package catalog управляет товарами и поставщиками.
package catalog

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// AdminGate проверяет роль admin перед изменением каталога.
type AdminGate interface {
	RequireAdmin(ctx context.Context, userID int64) (domain.User, error)
}

// ProductInput — данные нового товара.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
}

// ProductView — товар в ответе API.
type ProductView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
}

// SupplierInput — данные нового поставщика.
type SupplierInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// SupplierView — поставщик в ответе API.
type SupplierView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	IsActive   bool   `json:"is_active"`
}

// Service реализует операции каталога.
type Service struct {
	store  domain.Store
	gate   AdminGate
	logger *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(store domain.Store, gate AdminGate, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{store: store, gate: gate, logger: logger}
}

// CreateProduct добавляет товар в каталог.
func (s *Service) CreateProduct(ctx context.Context, adminID int64, in ProductInput) (ProductView, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return ProductView{}, err
	}

	product := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceMinor:  in.PriceMinor,
		Stock:       in.Stock,
		SupplierID:  in.SupplierID,
	}
	if errs := product.Validate(); len(errs) > 0 {
		return ProductView{}, errors.Join(errs...)
	}

	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		product, err = uow.Products().Create(ctx, product)
		return err
	})
	if err != nil {
		return ProductView{}, s.internal("create product", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"admin_id":   adminID,
	}).Info("product created")
	return toProductView(product), nil
}

// GetProduct возвращает товар или ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, id int64) (ProductView, error) {
	var product domain.Product
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		product, err = uow.Products().Get(ctx, id)
		return err
	})
	if err != nil {
		return ProductView{}, s.internal("get product", err)
	}
	return toProductView(product), nil
}

// ListProducts возвращает страницу каталога; пустая страница не ошибка.
func (s *Service) ListProducts(ctx context.Context, nameContains string, page domain.PageRequest) (domain.Page[ProductView], error) {
	if err := page.Validate(); err != nil {
		return domain.Page[ProductView]{}, err
	}

	var (
		items []domain.Product
		total int
	)
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		items, total, err = uow.Products().List(ctx, domain.ProductFilter{NameContains: strings.TrimSpace(nameContains)}, page)
		return err
	})
	if err != nil {
		return domain.Page[ProductView]{}, s.internal("list products", err)
	}
	return domain.MapPage(domain.NewPage(page, items, total), toProductView), nil
}

// CreateSupplier регистрирует поставщика.
func (s *Service) CreateSupplier(ctx context.Context, adminID int64, in SupplierInput) (SupplierView, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return SupplierView{}, err
	}

	supplier := domain.Supplier{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Country:    strings.TrimSpace(in.Country),
		PostalCode: strings.TrimSpace(in.PostalCode),
		IsActive:   true,
	}
	if errs := supplier.Validate(); len(errs) > 0 {
		return SupplierView{}, errors.Join(errs...)
	}

	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		supplier, err = uow.Suppliers().Create(ctx, supplier)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrSupplierExists) {
			s.logger.WithField("name", supplier.Name).Warn("duplicate supplier")
			return SupplierView{}, err
		}
		return SupplierView{}, s.internal("create supplier", err)
	}

	s.logger.WithFields(log.Fields{
		"supplier_id": supplier.ID,
		"admin_id":    adminID,
	}).Info("supplier created")
	return toSupplierView(supplier), nil
}

// GetSupplier возвращает поставщика или ErrSupplierNotFound.
func (s *Service) GetSupplier(ctx context.Context, id int64) (SupplierView, error) {
	var supplier domain.Supplier
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		supplier, err = uow.Suppliers().Get(ctx, id)
		return err
	})
	if err != nil {
		return SupplierView{}, s.internal("get supplier", err)
	}
	return toSupplierView(supplier), nil
}

// ListSuppliers возвращает страницу поставщиков.
func (s *Service) ListSuppliers(ctx context.Context, nameContains string, page domain.PageRequest) (domain.Page[SupplierView], error) {
	if err := page.Validate(); err != nil {
		return domain.Page[SupplierView]{}, err
	}

	var (
		items []domain.Supplier
		total int
	)
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		items, total, err = uow.Suppliers().List(ctx, domain.SupplierFilter{NameContains: strings.TrimSpace(nameContains)}, page)
		return err
	})
	if err != nil {
		return domain.Page[SupplierView]{}, s.internal("list suppliers", err)
	}
	return domain.MapPage(domain.NewPage(page, items, total), toSupplierView), nil
}

func (s *Service) internal(op string, err error) error {
	if domain.IsKind(err) {
		return err
	}
	s.logger.WithError(err).WithField("op", op).Error("storage failure")
	return domain.NewInternalError(op, err)
}

func toProductView(p domain.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		Stock:       p.Stock,
		SupplierID:  p.SupplierID,
	}
}

func toSupplierView(s domain.Supplier) SupplierView {
	return SupplierView{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Phone:      s.Phone,
		Address:    s.Address,
		City:       s.City,
		State:      s.State,
		Country:    s.Country,
		PostalCode: s.PostalCode,
		IsActive:   s.IsActive,
	}
}
