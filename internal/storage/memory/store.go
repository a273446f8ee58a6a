package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// state — полный снимок данных in-memory хранилища.
type state struct {
	products       map[int64]domain.Product
	suppliers      map[int64]domain.Supplier
	users          map[int64]domain.User
	roles          map[string]int64
	orders         map[int64]domain.ClientOrder
	lines          map[int64][]domain.OrderLine
	supplierOrders map[int64]domain.SupplierOrder
	seq            map[string]int64
}

func newState() *state {
	return &state{
		products:       make(map[int64]domain.Product),
		suppliers:      make(map[int64]domain.Supplier),
		users:          make(map[int64]domain.User),
		roles:          make(map[string]int64),
		orders:         make(map[int64]domain.ClientOrder),
		lines:          make(map[int64][]domain.OrderLine),
		supplierOrders: make(map[int64]domain.SupplierOrder),
		seq:            make(map[string]int64),
	}
}

// clone копирует снимок так, чтобы изменения черновика не затрагивали оригинал.
func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		if p.SupplierID != nil {
			supplierID := *p.SupplierID
			p.SupplierID = &supplierID
		}
		c.products[id] = p
	}
	for id, sup := range s.suppliers {
		c.suppliers[id] = sup
	}
	for id, u := range s.users {
		u.Roles = append([]domain.Role(nil), u.Roles...)
		c.users[id] = u
	}
	for title, id := range s.roles {
		c.roles[title] = id
	}
	for id, o := range s.orders {
		c.orders[id] = o
	}
	for id, l := range s.lines {
		c.lines[id] = append([]domain.OrderLine(nil), l...)
	}
	for id, so := range s.supplierOrders {
		c.supplierOrders[id] = so
	}
	for name, v := range s.seq {
		c.seq[name] = v
	}
	return c
}

func (s *state) next(name string) int64 {
	s.seq[name]++
	return s.seq[name]
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store — in-memory реализация domain.Store для локальной разработки и тестов.
// Единицы работы выполняются последовательно; InTx пишет в копию снимка
// и подменяет её только при успешном завершении колбэка.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore(opts ...Option) *Store {
	s := &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Do выполняет fn над текущим снимком: записи видны сразу.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, uow domain.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(ctx, &unitOfWork{st: s.st, now: s.now})
}

// InTx выполняет fn над черновиком и фиксирует его, только если fn вернул nil.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, uow domain.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(ctx, &unitOfWork{st: draft, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = draft
	return nil
}

// EditProduct правит товар напрямую, в обход репозиториев. ID не меняется.
// Нужен для подготовки данных в тестах, где интерфейс каталога не даёт обновлений.
func (s *Store) EditProduct(id int64, edit func(p *domain.Product)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.st.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	edit(&product)
	product.ID = id
	s.st.products[id] = product
	return nil
}

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (s *Store) Ping(context.Context) error {
	return nil
}

type unitOfWork struct {
	st  *state
	now func() time.Time
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return &productRepository{st: u.st}
}

func (u *unitOfWork) Suppliers() domain.SupplierRepository {
	return &supplierRepository{st: u.st}
}

func (u *unitOfWork) Users() domain.UserRepository {
	return &userRepository{st: u.st, now: u.now}
}

func (u *unitOfWork) Orders() domain.OrderRepository {
	return &orderRepository{st: u.st, now: u.now}
}

func (u *unitOfWork) SupplierOrders() domain.SupplierOrderRepository {
	return &supplierOrderRepository{st: u.st, now: u.now}
}

// paginate вырезает страницу из уже отсортированного среза.
func paginate[T any](items []T, page domain.PageRequest) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var (
	_ domain.Store      = (*Store)(nil)
	_ domain.UnitOfWork = (*unitOfWork)(nil)
)
