package domain

import "github.com/shopspring/decimal"

// UnknownCategory подставляется, если у товара нет категории.
const UnknownCategory = "unknown"

// Product описывает товар каталога. Неизменяем после загрузки каталога.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Brand       string
	Description string
	Price       decimal.Decimal
	Image       string // URL эталонного изображения
	Thumbnail   string
	Rating      float64
}
