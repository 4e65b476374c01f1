package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/shopspring/decimal"
)

// Record - запись каталога до загрузки: товар и его сырой эмбеддинг.
type Record struct {
	Product   domain.Product
	Embedding []float32
	Malformed bool // запись не удалось разобрать, при загрузке она пропускается
}

// recordJSON - сохранённая форма записи каталога.
type recordJSON struct {
	ID          *int64    `json:"id"`
	Name        string    `json:"name"`
	Category    *string   `json:"category"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Price       price     `json:"price"`
	Image       string    `json:"image"`
	Thumbnail   string    `json:"thumbnail"`
	Rating      float64   `json:"rating"`
	Embedding   []float32 `json:"embedding"`
}

// price читается и из числа, и из строки, пишется числом.
type price struct {
	decimal.Decimal
}

func (p price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// DecodeJSON разбирает каталог - JSON-массив записей.
// Неразборчивый документ целиком даёт ErrCatalogLoad, отдельные битые записи помечаются Malformed.
func DecodeJSON(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, e.Mark(e.ErrCatalogLoad, err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		records = append(records, decodeRecord(item))
	}

	return records, nil
}

func decodeRecord(item json.RawMessage) Record {
	var rj recordJSON
	if err := json.Unmarshal(item, &rj); err != nil || rj.ID == nil {
		return Record{Malformed: true}
	}

	category := domain.UnknownCategory
	if rj.Category != nil {
		category = *rj.Category
	}

	return Record{
		Product: domain.Product{
			ID:          *rj.ID,
			Name:        rj.Name,
			Category:    category,
			Brand:       rj.Brand,
			Description: rj.Description,
			Price:       rj.Price.Decimal,
			Image:       rj.Image,
			Thumbnail:   rj.Thumbnail,
			Rating:      rj.Rating,
		},
		Embedding: rj.Embedding,
	}
}

// EncodeJSON сериализует записи в сохранённую форму каталога. Битые записи не пишутся.
func EncodeJSON(records []Record) ([]byte, error) {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		if r.Malformed {
			continue
		}

		id, category := r.Product.ID, r.Product.Category
		out = append(out, recordJSON{
			ID:          &id,
			Name:        r.Product.Name,
			Category:    &category,
			Brand:       r.Product.Brand,
			Description: r.Product.Description,
			Price:       price{r.Product.Price},
			Image:       r.Product.Image,
			Thumbnail:   r.Product.Thumbnail,
			Rating:      r.Product.Rating,
			Embedding:   r.Embedding,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	return buf.Bytes(), nil
}
