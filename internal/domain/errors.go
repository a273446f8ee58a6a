package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок. Конкретные ошибки ниже оборачивают один из них,
// транспорт выбирает код ответа через errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrClientRequired = newKindError(ErrInvalidArgument, "client_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = newKindError(ErrInvalidArgument, "order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = newKindError(ErrInvalidArgument, "total_price must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemAmountInvalid = newKindError(ErrInvalidArgument, "item amount must be greater than zero")
	// Ошибка некорректного идентификатора товара.
	ErrItemProductInvalid = newKindError(ErrInvalidArgument, "item product_id must be positive")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = newKindError(ErrInvalidArgument, "price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = newKindError(ErrInvalidArgument, "order total does not match items sum")
	// Ошибка переполнения суммы заказа.
	ErrTotalOutOfRange = newKindError(ErrInvalidArgument, "order total is out of range")
	// Ошибка отрицательного остатка.
	ErrStockNegative = newKindError(ErrInvalidArgument, "stock must be non-negative")
	// Ошибка пустого названия товара.
	ErrProductNameRequired = newKindError(ErrInvalidArgument, "product name is required")
	// Ошибка неизвестного статуса заказа.
	ErrOrderStatusInvalid = newKindError(ErrInvalidArgument, "unknown order status")
	// Ошибка номера страницы (< 1).
	ErrPageInvalid = newKindError(ErrInvalidArgument, "page must be >= 1")
	// Ошибка размера страницы вне [1, MaxPageSize].
	ErrPageSizeInvalid = newKindError(ErrInvalidArgument, fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	// Ошибка слабого пароля.
	ErrPasswordTooShort = newKindError(ErrInvalidArgument, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	// Ошибка некорректного email.
	ErrEmailInvalid = newKindError(ErrInvalidArgument, "email is invalid")

	// ErrOrderNotFound возвращается, если заказ не найден или принадлежит другому клиенту.
	ErrOrderNotFound = newKindError(ErrNotFound, "order not found")
	// ErrOrderNotCustom — заказ существует, но не содержит индивидуальных позиций.
	ErrOrderNotCustom = newKindError(ErrNotFound, "order is not custom")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = newKindError(ErrNotFound, "product not found")
	// ErrSupplierNotFound возвращается, если поставщик не найден.
	ErrSupplierNotFound = newKindError(ErrNotFound, "supplier not found")
	// ErrSupplierOrderNotFound возвращается, если заказ поставщику не найден.
	ErrSupplierOrderNotFound = newKindError(ErrNotFound, "supplier order not found")
	// ErrUserNotFound возвращается репозиторием пользователей.
	ErrUserNotFound = newKindError(ErrNotFound, "user not found")

	// ErrUserUnresolved — идентификатор из токена не соответствует пользователю.
	ErrUserUnresolved = newKindError(ErrUnauthorized, "user not found")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = newKindError(ErrUnauthorized, "incorrect email or password")
	// ErrTokenInvalid — токен не прошёл проверку подписи или срока.
	ErrTokenInvalid = newKindError(ErrUnauthorized, "could not validate credentials")
	// ErrAdminRequired — у пользователя нет роли admin.
	ErrAdminRequired = newKindError(ErrForbidden, "admin privileges required")

	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = newKindError(ErrConflict, "email already registered")
	// ErrSupplierExists — нарушена уникальность имени/email/телефона поставщика.
	ErrSupplierExists = newKindError(ErrConflict, "supplier with the same name, email or phone already exists")
	// ErrLineExists — позиция с таким товаром уже есть в заказе.
	ErrLineExists = newKindError(ErrConflict, "order already contains this product")
)

type kindError struct {
	msg  string
	kind error
}

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// FieldError описывает нарушение правила для конкретного поля запроса.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

func (e *FieldError) Unwrap() error { return ErrInvalidArgument }

// ProductsNotFoundError перечисляет запрошенные, но отсутствующие товары.
type ProductsNotFoundError struct {
	IDs []int64
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %v", e.IDs)
}

func (e *ProductsNotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError сообщает, какого товара не хватило.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InternalError оборачивает неожиданный сбой: хранилище, нарушенный инвариант.
type InternalError struct {
	Op  string
	Err error
}

// NewInternalError помечает err как внутреннюю ошибку операции op.
func NewInternalError(op string, err error) error {
	if err == nil {
		err = errors.New("unexpected state")
	}
	return &InternalError{Op: op, Err: err}
}

func (e *InternalError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *InternalError) Unwrap() []error { return []error{ErrInternal, e.Err} }

// IsKind сообщает, относится ли err к одному из видов ошибок домена.
func IsKind(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrInsufficientStock, ErrUnauthorized,
		ErrForbidden, ErrInvalidArgument, ErrConflict, ErrInternal,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
