// Package orders оформляет клиентские заказы и отдаёт их read-модели.
package orders

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

const (
	minCustomNameLength        = 3
	minCustomDescriptionLength = 5
)

// AdminGate проверяет роль admin перед административными операциями.
type AdminGate interface {
	RequireAdmin(ctx context.Context, userID int64) (domain.User, error)
}

// PurchaseItem — позиция запроса на покупку.
type PurchaseItem struct {
	ProductID int64 `json:"product_id"`
	Amount    int32 `json:"amount"`
}

// Service реализует сценарии заказов поверх единиц работы хранилища.
type Service struct {
	store   domain.Store
	gate    AdminGate
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// Option настраивает Service.
type Option func(*Service)

// WithMetrics включает запись метрик оформления заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService конструирует сервис заказов.
func NewService(store domain.Store, gate AdminGate, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	s := &Service{store: store, gate: gate, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePurchaseOrder оформляет покупку в одной транзакции: проверка остатков,
// заказ, позиции по снимку цены и условное списание. Любая ошибка откатывает всё.
func (s *Service) CreatePurchaseOrder(ctx context.Context, clientID int64, items []PurchaseItem) (OrderCreated, error) {
	start := time.Now()
	defer func() { s.metrics.RecordCreateDuration(time.Since(start)) }()

	if err := validatePurchase(clientID, items); err != nil {
		s.reject(err, clientID)
		return OrderCreated{}, err
	}

	var (
		created OrderCreated
		units   int64
	)
	err := s.store.InTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		products, err := loadProducts(ctx, uow, items)
		if err != nil {
			return err
		}

		order := domain.ClientOrder{
			ClientID: clientID,
			Status:   domain.OrderStatusConfirmed,
			Kind:     domain.OrderKindStandard,
		}
		order.Lines, order.TotalPriceMinor, err = buildLines(items, products)
		if err != nil {
			return err
		}
		if errs := order.ValidateInvariants(); len(errs) > 0 {
			return domain.NewInternalError("create purchase order", errors.Join(errs...))
		}

		stored, err := uow.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		for _, line := range order.Lines {
			line.OrderID = stored.ID
			if _, err := uow.Orders().AddLine(ctx, line); err != nil {
				return err
			}
		}

		for _, item := range items {
			ok, err := uow.Products().DecrementStock(ctx, item.ProductID, item.Amount)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientAfterRace(ctx, uow, item, products[item.ProductID])
			}
			units += int64(item.Amount)
		}

		created = OrderCreated{OrderID: stored.ID}
		return nil
	})
	if err != nil {
		err = s.internal("create purchase order", err)
		s.reject(err, clientID)
		return OrderCreated{}, err
	}

	s.metrics.RecordOrderCreated(string(domain.OrderKindStandard), units)
	s.logger.WithFields(log.Fields{
		"order_id":  created.OrderID,
		"client_id": clientID,
		"lines":     len(items),
	}).Info("purchase order created")

	return created, nil
}

// CreateCustomOrder оформляет запрос цены: товар-заглушка, заказ и одна позиция.
func (s *Service) CreateCustomOrder(ctx context.Context, clientID int64, name, description string) (OrderCreated, error) {
	start := time.Now()
	defer func() { s.metrics.RecordCreateDuration(time.Since(start)) }()

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateCustom(clientID, name, description); err != nil {
		s.reject(err, clientID)
		return OrderCreated{}, err
	}

	var created OrderCreated
	err := s.store.InTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		product, err := uow.Products().Create(ctx, domain.Product{
			Name:        name,
			Description: description,
			PriceMinor:  0,
			Stock:       1,
		})
		if err != nil {
			return err
		}
		if product.ID == 0 {
			return domain.NewInternalError("create custom order", errors.New("custom product id was not assigned"))
		}

		order, err := uow.Orders().Create(ctx, domain.ClientOrder{
			ClientID: clientID,
			Status:   domain.OrderStatusCustomPending,
			Kind:     domain.OrderKindCustom,
		})
		if err != nil {
			return err
		}

		if _, err := uow.Orders().AddLine(ctx, domain.OrderLine{
			OrderID:        order.ID,
			ProductID:      product.ID,
			Amount:         1,
			UnitPriceMinor: 0,
			Kind:           domain.OrderKindCustom,
		}); err != nil {
			return err
		}

		created = OrderCreated{OrderID: order.ID}
		return nil
	})
	if err != nil {
		err = s.internal("create custom order", err)
		s.reject(err, clientID)
		return OrderCreated{}, err
	}

	s.metrics.RecordOrderCreated(string(domain.OrderKindCustom), 0)
	s.logger.WithFields(log.Fields{
		"order_id":  created.OrderID,
		"client_id": clientID,
	}).Info("custom order created")

	return created, nil
}

// GetOrder возвращает заказ клиента; чужой заказ неотличим от отсутствующего.
func (s *Service) GetOrder(ctx context.Context, clientID, orderID int64) (OrderDetail, error) {
	return s.getOrder(ctx, domain.OrderLookup{ID: orderID, OwnerID: &clientID}, false)
}

// ListOrders возвращает страницу заказов клиента, опционально по статусу.
func (s *Service) ListOrders(ctx context.Context, clientID int64, status domain.OrderStatus, page domain.PageRequest) (domain.Page[OrderSummary], error) {
	return s.listOrders(ctx, domain.OrderFilter{ClientID: &clientID, Status: status}, page)
}

// ListAllOrders возвращает заказы всех клиентов.
func (s *Service) ListAllOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[OrderSummary], error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return domain.Page[OrderSummary]{}, err
	}
	return s.listOrders(ctx, domain.OrderFilter{}, page)
}

// GetAnyOrder возвращает заказ без фильтра по владельцу.
func (s *Service) GetAnyOrder(ctx context.Context, adminID, orderID int64) (OrderDetail, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return OrderDetail{}, err
	}
	return s.getOrder(ctx, domain.OrderLookup{ID: orderID}, false)
}

// ListCustomOrders возвращает заказы, где есть хотя бы одна индивидуальная позиция.
func (s *Service) ListCustomOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[OrderSummary], error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return domain.Page[OrderSummary]{}, err
	}
	return s.listOrders(ctx, domain.OrderFilter{CustomOnly: true}, page)
}

// GetCustomOrder возвращает индивидуальный заказ, для обычного заказа ErrOrderNotCustom.
func (s *Service) GetCustomOrder(ctx context.Context, adminID, orderID int64) (OrderDetail, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return OrderDetail{}, err
	}
	return s.getOrder(ctx, domain.OrderLookup{ID: orderID}, true)
}

// ListSupplierOrders возвращает страницу заказов поставщикам.
func (s *Service) ListSupplierOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[SupplierOrderView], error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return domain.Page[SupplierOrderView]{}, err
	}
	if err := page.Validate(); err != nil {
		return domain.Page[SupplierOrderView]{}, err
	}

	var (
		items []domain.SupplierOrder
		total int
	)
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		items, total, err = uow.SupplierOrders().List(ctx, page)
		return err
	})
	if err != nil {
		return domain.Page[SupplierOrderView]{}, s.internal("list supplier orders", err)
	}

	return domain.MapPage(domain.NewPage(page, items, total), toSupplierOrderView), nil
}

// GetSupplierOrder возвращает заказ поставщику.
func (s *Service) GetSupplierOrder(ctx context.Context, adminID, id int64) (SupplierOrderView, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return SupplierOrderView{}, err
	}

	var order domain.SupplierOrder
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		order, err = uow.SupplierOrders().Get(ctx, id)
		return err
	})
	if err != nil {
		return SupplierOrderView{}, s.internal("get supplier order", err)
	}
	return toSupplierOrderView(order), nil
}

// CreateSupplierOrder фиксирует закупку у поставщика. Остаток товара не меняется:
// поступление на склад оформляется отдельно.
func (s *Service) CreateSupplierOrder(ctx context.Context, adminID, supplierID, productID int64, amount int32, totalMinor int64) (SupplierOrderView, error) {
	if _, err := s.gate.RequireAdmin(ctx, adminID); err != nil {
		return SupplierOrderView{}, err
	}

	switch {
	case supplierID <= 0:
		return SupplierOrderView{}, &domain.FieldError{Field: "supplier_id", Reason: "must be positive"}
	case productID <= 0:
		return SupplierOrderView{}, domain.ErrItemProductInvalid
	case amount <= 0:
		return SupplierOrderView{}, domain.ErrItemAmountInvalid
	case totalMinor < 0:
		return SupplierOrderView{}, domain.ErrAmountNegative
	}

	var order domain.SupplierOrder
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		order, err = uow.SupplierOrders().Create(ctx, domain.SupplierOrder{
			SupplierID:      supplierID,
			ProductID:       productID,
			Amount:          amount,
			TotalPriceMinor: totalMinor,
			Status:          domain.SupplierOrderStatusPlaced,
		})
		return err
	})
	if err != nil {
		return SupplierOrderView{}, s.internal("create supplier order", err)
	}

	s.logger.WithFields(log.Fields{
		"supplier_order_id": order.ID,
		"supplier_id":       supplierID,
		"product_id":        productID,
	}).Info("supplier order placed")

	return toSupplierOrderView(order), nil
}

func (s *Service) getOrder(ctx context.Context, lookup domain.OrderLookup, customOnly bool) (OrderDetail, error) {
	var order domain.ClientOrder
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		order, err = uow.Orders().Get(ctx, lookup)
		return err
	})
	if err != nil {
		return OrderDetail{}, s.internal("get order", err)
	}
	if customOnly && !order.HasCustomLine() {
		return OrderDetail{}, domain.ErrOrderNotCustom
	}
	return toDetail(order), nil
}

func (s *Service) listOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[OrderSummary], error) {
	if err := page.Validate(); err != nil {
		return domain.Page[OrderSummary]{}, err
	}

	var (
		items []domain.ClientOrder
		total int
	)
	err := s.store.Do(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		var err error
		items, total, err = uow.Orders().List(ctx, filter, page)
		return err
	})
	if err != nil {
		return domain.Page[OrderSummary]{}, s.internal("list orders", err)
	}

	return domain.MapPage(domain.NewPage(page, items, total), toSummary), nil
}

// internal пропускает доменные ошибки как есть, остальное превращает в InternalError.
func (s *Service) internal(op string, err error) error {
	if domain.IsKind(err) {
		return err
	}
	s.logger.WithError(err).WithField("op", op).Error("storage failure")
	return domain.NewInternalError(op, err)
}

func (s *Service) reject(err error, clientID int64) {
	reason := metrics.RejectInternal
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		reason = metrics.RejectInvalid
	case errors.Is(err, domain.ErrNotFound):
		reason = metrics.RejectNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = metrics.RejectInsufficient
	}
	s.metrics.RecordOrderRejected(reason)

	if reason == metrics.RejectInternal {
		return
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"client_id": clientID,
		"reason":    reason,
	}).Warn("order rejected")
}

func validatePurchase(clientID int64, items []PurchaseItem) error {
	if clientID <= 0 {
		return domain.ErrClientRequired
	}
	if len(items) == 0 {
		return domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return domain.ErrItemProductInvalid
		}
		if item.Amount <= 0 {
			return domain.ErrItemAmountInvalid
		}
	}
	return nil
}

func validateCustom(clientID int64, name, description string) error {
	if clientID <= 0 {
		return domain.ErrClientRequired
	}
	if utf8.RuneCountInString(name) < minCustomNameLength {
		return &domain.FieldError{Field: "name", Reason: "must be at least 3 characters"}
	}
	if utf8.RuneCountInString(description) < minCustomDescriptionLength {
		return &domain.FieldError{Field: "description", Reason: "must be at least 5 characters"}
	}
	return nil
}
