package domain

const (
	// DefaultPageSize применяется, если размер страницы не передан.
	DefaultPageSize = 10
	// MaxPageSize ограничивает размер страницы сверху.
	MaxPageSize = 100
)

// PageRequest — номер страницы (с единицы) и её размер.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest подставляет значения по умолчанию для нулевых полей.
func NewPageRequest(page, pageSize int) PageRequest {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Validate проверяет границы страницы.
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return ErrPageInvalid
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return ErrPageSizeInvalid
	}
	return nil
}

// Offset возвращает число строк, которые нужно пропустить.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page — страница результатов вместе с общим количеством.
type Page[T any] struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Items      []T `json:"items"`
}

// NewPage собирает конверт страницы; total_pages = ceil(total / page_size).
func NewPage[T any](req PageRequest, items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.PageSize > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}
	return Page[T]{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: pages,
		Items:      items,
	}
}

// MapPage переводит элементы страницы в другое представление.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[R]{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Items:      items,
	}
}
