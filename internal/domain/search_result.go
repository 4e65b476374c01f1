package domain

// SearchResult - товар и его похожесть на запрос в диапазоне [0, 1].
type SearchResult struct {
	Product Product
	Score   float64
}
