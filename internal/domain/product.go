package domain

import "time"

// Product описывает товар каталога.
type Product struct {
	ID   string
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (сентаво).
	PriceMinor int64
	// Quantity — доступный остаток; никогда не опускается ниже нуля.
	Quantity int32
	// ExpiresAt — срок годности партии.
	ExpiresAt time.Time
	// CategoryID — ссылка на категорию; хранится как внешний идентификатор.
	CategoryID string
	// Version нужен для optimistic locking при списании/возврате остатка.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrLinePriceInvalid)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}

// StockReservation фиксирует списание остатка под конкретную позицию заказа.
// Version — версия товара, прочитанная на валидационном проходе; списание
// применяется только если версия не изменилась.
type StockReservation struct {
	ProductID string
	Qty       int32
	Version   int64
}

// Validate проверяет, корректно ли заполнено резервирование.
func (r *StockReservation) Validate() []error {
	var errs []error

	if r.ProductID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if r.Qty <= 0 {
		errs = append(errs, ErrLineQtyInvalid)
	}

	return errs
}
