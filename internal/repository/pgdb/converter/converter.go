package converter

import (
	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

// ToRecord преобразует строку таблицы в запись каталога.
// Некорректная цена помечает запись как Malformed.
func ToRecord(model *CatalogProductModel) catalog.Record {
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return catalog.Record{Malformed: true}
	}

	category := model.Category
	if category == "" {
		category = domain.UnknownCategory
	}

	return catalog.Record{
		Product: domain.Product{
			ID:          model.ID,
			Name:        model.Name,
			Category:    category,
			Brand:       model.Brand,
			Description: model.Description,
			Price:       price,
			Image:       model.Image,
			Thumbnail:   model.Thumbnail,
			Rating:      model.Rating,
		},
		Embedding: model.Embedding,
	}
}

// ToModel преобразует запись каталога в строку таблицы с заданной позицией.
func ToModel(position int, record *catalog.Record) *CatalogProductModel {
	p := record.Product

	return &CatalogProductModel{
		Position:    position,
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		Thumbnail:   p.Thumbnail,
		Rating:      p.Rating,
		Embedding:   record.Embedding,
	}
}
