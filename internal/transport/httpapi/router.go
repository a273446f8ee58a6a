// Package httpapi — REST-интерфейс магазина поверх chi.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/auth"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
)

// AuthService — операции учётных записей, нужные API.
type AuthService interface {
	Authenticator
	Register(ctx context.Context, email, name, password string) (auth.Profile, error)
	Login(ctx context.Context, email, password string) (auth.Token, error)
	Me(ctx context.Context, userID int64) (auth.Profile, error)
}

// CatalogService — операции каталога, нужные API.
type CatalogService interface {
	CreateProduct(ctx context.Context, adminID int64, in catalog.ProductInput) (catalog.ProductView, error)
	GetProduct(ctx context.Context, id int64) (catalog.ProductView, error)
	ListProducts(ctx context.Context, nameContains string, page domain.PageRequest) (domain.Page[catalog.ProductView], error)
	CreateSupplier(ctx context.Context, adminID int64, in catalog.SupplierInput) (catalog.SupplierView, error)
	GetSupplier(ctx context.Context, id int64) (catalog.SupplierView, error)
	ListSuppliers(ctx context.Context, nameContains string, page domain.PageRequest) (domain.Page[catalog.SupplierView], error)
}

// OrderService — операции заказов, нужные API.
type OrderService interface {
	CreatePurchaseOrder(ctx context.Context, clientID int64, items []orders.PurchaseItem) (orders.OrderCreated, error)
	CreateCustomOrder(ctx context.Context, clientID int64, name, description string) (orders.OrderCreated, error)
	GetOrder(ctx context.Context, clientID, orderID int64) (orders.OrderDetail, error)
	ListOrders(ctx context.Context, clientID int64, status domain.OrderStatus, page domain.PageRequest) (domain.Page[orders.OrderSummary], error)
	ListAllOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[orders.OrderSummary], error)
	GetAnyOrder(ctx context.Context, adminID, orderID int64) (orders.OrderDetail, error)
	ListCustomOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[orders.OrderSummary], error)
	GetCustomOrder(ctx context.Context, adminID, orderID int64) (orders.OrderDetail, error)
	ListSupplierOrders(ctx context.Context, adminID int64, page domain.PageRequest) (domain.Page[orders.SupplierOrderView], error)
	GetSupplierOrder(ctx context.Context, adminID, id int64) (orders.SupplierOrderView, error)
	CreateSupplierOrder(ctx context.Context, adminID, supplierID, productID int64, amount int32, totalMinor int64) (orders.SupplierOrderView, error)
}

// Deps — зависимости REST API.
type Deps struct {
	Auth    AuthService
	Catalog CatalogService
	Orders  OrderService
	Logger  *log.Entry
	Metrics *metrics.HTTPMetrics
}

// NewRouter собирает маршруты API. Всё, кроме регистрации, входа и чтения
// каталога, требует bearer-токен.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	h := &handlers{auth: deps.Auth, catalog: deps.Catalog, orders: deps.Orders}
	authenticated := requireUser(deps.Auth)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(logger, deps.Metrics))
	r.Use(recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Error: errorBody{Code: "not_found", Message: "route not found"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Error: errorBody{Code: "method_not_allowed", Message: "method not allowed"}})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(authenticated).Get("/me", h.me)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.With(authenticated).Post("/", h.createProduct)
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Get("/{id}", h.getSupplier)
		r.With(authenticated).Post("/", h.createSupplier)
	})

	r.Route("/order", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/all", h.listOwnOrders)
		r.Post("/purchase", h.createPurchase)
		r.Post("/custom", h.createCustom)

		r.Get("/purchases/all", h.listAllOrders)
		r.Get("/purchases/{id}", h.getAnyOrder)

		r.Get("/custom/all", h.listCustomOrders)
		r.Get("/custom/{id}", h.getCustomOrder)

		r.Get("/sales/all", h.listSupplierOrders)
		r.Get("/sales/{id}", h.getSupplierOrder)
		r.Post("/sales", h.createSupplierOrder)

		// Статический сегмент /all выигрывает у параметра при матчинге chi.
		r.Get("/{id}", h.getOwnOrder)
	})

	return r
}

type handlers struct {
	auth    AuthService
	catalog CatalogService
	orders  OrderService
}

// currentUser достаёт пользователя из контекста; без него отвечает 401.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrTokenInvalid)
	}
	return user, ok
}
