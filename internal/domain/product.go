package domain

// Product — позиция каталога.
type Product struct {
	ID          int64
	Name        string
	Description string
	// PriceMinor — цена в минимальных денежных единицах; 0 допустим.
	PriceMinor int64
	Stock      int32
	// SupplierID — необязательная ссылка на поставщика.
	SupplierID *int64
}

// Validate проверяет поля товара перед сохранением.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}

// ProductFilter задаёт условия выборки каталога.
type ProductFilter struct {
	// NameContains — подстрока в названии (без учёта регистра).
	NameContains string
}
