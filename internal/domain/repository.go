package domain

import "context"

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет товар и возвращает его с присвоенным ID.
	Create(ctx context.Context, product Product) (Product, error)
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// GetMany возвращает найденные товары одним запросом; отсутствующие ID пропускаются.
	GetMany(ctx context.Context, ids []int64) ([]Product, error)
	// List возвращает страницу каталога и общее число подходящих товаров.
	List(ctx context.Context, filter ProductFilter, page PageRequest) ([]Product, int, error)
	// DecrementStock атомарно уменьшает остаток, только если его хватает.
	// false без ошибки означает, что остатка недостаточно (или товара нет).
	DecrementStock(ctx context.Context, id int64, amount int32) (bool, error)
}

// SupplierRepository описывает требования к хранилищу поставщиков.
type SupplierRepository interface {
	// Create сохраняет поставщика; при нарушении уникальности ErrSupplierExists.
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	// Get возвращает поставщика или ErrSupplierNotFound.
	Get(ctx context.Context, id int64) (Supplier, error)
	// List возвращает страницу поставщиков.
	List(ctx context.Context, filter SupplierFilter, page PageRequest) ([]Supplier, int, error)
}

// UserRepository описывает требования к хранилищу пользователей и ролей.
type UserRepository interface {
	// Create сохраняет пользователя вместе с ролями (роли создаются по названию при необходимости).
	// Занятый email даёт ErrEmailTaken.
	Create(ctx context.Context, user User) (User, error)
	// GetWithRoles возвращает пользователя с ролями или ErrUserNotFound.
	GetWithRoles(ctx context.Context, id int64) (User, error)
	// GetByEmail возвращает пользователя с ролями или ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
	// AddRole выдаёт роль пользователю; повторная выдача не ошибка.
	AddRole(ctx context.Context, userID int64, title string) error
}

// OrderRepository описывает требования к хранилищу клиентских заказов.
type OrderRepository interface {
	// Create сохраняет заказ без позиций и возвращает его с ID и временем создания.
	Create(ctx context.Context, order ClientOrder) (ClientOrder, error)
	// AddLine сохраняет позицию заказа.
	AddLine(ctx context.Context, line OrderLine) (OrderLine, error)
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, lookup OrderLookup) (ClientOrder, error)
	// List возвращает страницу заказов без позиций и общее число подходящих заказов.
	// Подсчёт использует тот же фильтр, что и выборка.
	List(ctx context.Context, filter OrderFilter, page PageRequest) ([]ClientOrder, int, error)
}

// SupplierOrderRepository описывает требования к хранилищу заказов поставщикам.
type SupplierOrderRepository interface {
	Create(ctx context.Context, order SupplierOrder) (SupplierOrder, error)
	// Get возвращает заказ с именами поставщика и товара или ErrSupplierOrderNotFound.
	Get(ctx context.Context, id int64) (SupplierOrder, error)
	List(ctx context.Context, page PageRequest) ([]SupplierOrder, int, error)
}

// UnitOfWork даёт доступ к репозиториям в рамках одной единицы работы.
// Экземпляр живёт только внутри колбэка Store.Do/Store.InTx.
type UnitOfWork interface {
	Products() ProductRepository
	Suppliers() SupplierRepository
	Users() UserRepository
	Orders() OrderRepository
	SupplierOrders() SupplierOrderRepository
}

// Store открывает единицы работы над хранилищем.
type Store interface {
	// Do выполняет fn без транзакции: каждая запись фиксируется сразу.
	Do(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
	// InTx выполняет fn в транзакции: ошибка fn откатывает все записи.
	InTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
