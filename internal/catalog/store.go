// Package catalog хранит товары каталога вместе с матрицей их нормализованных эмбеддингов
// и отвечает на запросы «K самых похожих на вектор».
package catalog

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/clip"
	"github.com/DRSN-tech/visual-matcher/pkg/vecmath"
)

// Dim - размерность строк матрицы каталога.
const Dim = clip.EmbeddingDim

// Generation - неизменяемый снимок каталога: товары и построчно выровненная с ними матрица.
type Generation struct {
	version    uint64
	loadedAt   time.Time
	products   []domain.Product
	matrix     []float32 // len(products) строк по Dim значений
	byID       map[int64]int
	categories []string
}

// LoadSummary - итог загрузки каталога.
type LoadSummary struct {
	Version    uint64
	Kept       int
	Skipped    int // все пропущенные записи, включая дубликаты
	Duplicates int
}

// Store держит текущее поколение каталога. Чтение без блокировок,
// загрузки сериализуются и публикуют поколение целиком.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Generation]
}

// NewStore создаёт пустой каталог.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Generation{byID: map[int64]int{}, loadedAt: time.Now()})
	return s
}

// Load заменяет каталог записями records.
// Запись сохраняется, только если у неё есть эмбеддинг не короче Dim (длинный обрезается до Dim)
// и её id ещё не встречался. Остальные пропускаются и учитываются в Skipped.
// Каждая строка нормализуется отдельно, нулевой вектор остаётся как есть.
func (s *Store) Load(records []Record) LoadSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary LoadSummary
	gen := &Generation{
		version:  s.current.Load().version + 1,
		loadedAt: time.Now(),
		products: make([]domain.Product, 0, len(records)),
		matrix:   make([]float32, 0, len(records)*Dim),
		byID:     make(map[int64]int, len(records)),
	}

	categories := make(map[string]struct{})
	for _, r := range records {
		if r.Malformed || len(r.Embedding) < Dim {
			summary.Skipped++
			continue
		}

		if _, ok := gen.byID[r.Product.ID]; ok {
			summary.Skipped++
			summary.Duplicates++
			continue
		}

		row := len(gen.products)
		gen.matrix = append(gen.matrix, r.Embedding[:Dim]...)
		vecmath.NormalizeInPlace(gen.matrix[row*Dim : (row+1)*Dim])

		gen.byID[r.Product.ID] = row
		gen.products = append(gen.products, r.Product)
		categories[r.Product.Category] = struct{}{}
	}

	gen.categories = make([]string, 0, len(categories))
	for c := range categories {
		gen.categories = append(gen.categories, c)
	}
	sort.Strings(gen.categories)

	s.current.Store(gen)

	summary.Version = gen.version
	summary.Kept = len(gen.products)
	return summary
}

// Snapshot возвращает текущее поколение. Снимок не меняется после получения.
func (s *Store) Snapshot() *Generation {
	return s.current.Load()
}

// GetByID ищет товар в текущем поколении.
func (s *Store) GetByID(id int64) (domain.Product, bool) {
	return s.Snapshot().Get(id)
}

// ListPage возвращает страницу товаров текущего поколения.
func (s *Store) ListPage(page, perPage int, category string) ([]domain.Product, int) {
	return s.Snapshot().Page(page, perPage, category)
}

// Categories возвращает отсортированные категории текущего поколения.
func (s *Store) Categories() []string {
	return s.Snapshot().Categories()
}

// Version - номер поколения, 0 у пустого каталога до первой загрузки.
func (g *Generation) Version() uint64 { return g.version }

// LoadedAt - время публикации поколения.
func (g *Generation) LoadedAt() time.Time { return g.loadedAt }

// Len - количество товаров.
func (g *Generation) Len() int { return len(g.products) }

// Dim - размерность строк, 0 у пустого каталога.
func (g *Generation) Dim() int {
	if len(g.products) == 0 {
		return 0
	}
	return Dim
}

// Product возвращает товар строки i.
func (g *Generation) Product(i int) domain.Product { return g.products[i] }

// Row возвращает нормализованный эмбеддинг строки i. Срез менять нельзя.
func (g *Generation) Row(i int) []float32 {
	return g.matrix[i*Dim : (i+1)*Dim : (i+1)*Dim]
}

// Get ищет товар по id.
func (g *Generation) Get(id int64) (domain.Product, bool) {
	i, ok := g.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return g.products[i], true
}

// Page возвращает страницу page (с единицы) по perPage товаров и общее количество подходящих товаров.
// category сравнивается без учёта регистра, пустая строка - без фильтра.
// Страница за пределами диапазона пуста.
func (g *Generation) Page(page, perPage int, category string) ([]domain.Product, int) {
	filtered := g.products
	if category != "" {
		filtered = make([]domain.Product, 0)
		for _, p := range g.products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
	}

	total := len(filtered)
	if page < 1 || perPage < 1 {
		return []domain.Product{}, total
	}

	start := (page - 1) * perPage
	if start >= total {
		return []domain.Product{}, total
	}
	end := min(start+perPage, total)

	out := make([]domain.Product, end-start)
	copy(out, filtered[start:end])
	return out, total
}

// Categories возвращает копию отсортированного списка категорий.
func (g *Generation) Categories() []string {
	out := make([]string, len(g.categories))
	copy(out, g.categories)
	return out
}
