package catalog

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/vecmath"
)

// Search оценивает все строки поколения относительно query и возвращает не более limit товаров
// по убыванию оценки. Оценка = (cos + 1) / 2 в [0, 1]; при равенстве сохраняется порядок каталога.
// Выдача обрывается на первой оценке ниже minScore, равная minScore оценка попадает в выдачу.
// Запрос с NaN или Inf отклоняется.
func Search(gen *Generation, query []float32, limit int, minScore float64) ([]domain.SearchResult, error) {
	n := gen.Len()
	if n == 0 || limit <= 0 {
		return []domain.SearchResult{}, nil
	}

	if len(query) != Dim {
		return nil, e.Mark(e.ErrDimensionMismatch, fmt.Errorf("query has %d values, catalog rows have %d", len(query), Dim))
	}

	for i, v := range query {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, e.Mark(e.ErrNonFiniteVector, fmt.Errorf("query value %d is %v", i, v))
		}
	}

	q := vecmath.NormalizedCopy(query)

	scores := make([]float64, n)
	order := make([]int, n)
	for i := range n {
		scores[i] = toScore(vecmath.Dot(gen.Row(i), q))
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	results := make([]domain.SearchResult, 0, min(limit, n))
	for _, i := range order {
		if scores[i] < minScore {
			break
		}

		results = append(results, domain.SearchResult{Product: gen.Product(i), Score: scores[i]})
		if len(results) >= limit {
			break
		}
	}

	return results, nil
}

// Search ищет по текущему поколению.
func (s *Store) Search(query []float32, limit int, minScore float64) ([]domain.SearchResult, error) {
	return Search(s.Snapshot(), query, limit, minScore)
}

// toScore переводит косинус из [-1, 1] в [0, 1], результат зажат в [0, 1].
func toScore(similarity float64) float64 {
	return min(max((similarity+1)/2, 0), 1)
}
