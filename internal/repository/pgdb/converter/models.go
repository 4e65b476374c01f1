package converter

import "time"

// CatalogProductModel представляет запись таблицы catalog_products в PostgreSQL.
type CatalogProductModel struct {
	Position    int       `db:"position"`
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Brand       string    `db:"brand"`
	Description string    `db:"description"`
	Price       string    `db:"price"` // NUMERIC в текстовом виде
	Image       string    `db:"image"`
	Thumbnail   string    `db:"thumbnail"`
	Rating      float64   `db:"rating"`
	Embedding   []float32 `db:"embedding"`
	CreatedAt   time.Time `db:"created_at"`
}
