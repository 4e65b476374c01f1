package pgdb

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CatalogRepo хранит каталог в таблице catalog_products: источник для серверов и приёмник для сборщика.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// Fetch читает каталог в порядке сохранения. Пустая таблица - e.ErrCatalogNotFound.
func (r *CatalogRepo) Fetch(ctx context.Context) ([]catalog.Record, error) {
	query := `
		SELECT position, id, name, category, brand, description, price::text,
		       image, thumbnail, rating, embedding, created_at
		FROM catalog_products
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	records := make([]catalog.Record, 0)
	for rows.Next() {
		var m converter.CatalogProductModel
		if err := rows.Scan(
			&m.Position, &m.ID, &m.Name, &m.Category, &m.Brand, &m.Description, &m.Price,
			&m.Image, &m.Thumbnail, &m.Rating, &m.Embedding, &m.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		records = append(records, converter.ToRecord(&m))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(records) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrCatalogNotFound)
	}

	return records, nil
}

// Save заменяет содержимое таблицы новым каталогом в одной транзакции.
func (r *CatalogRepo) Save(ctx context.Context, records []catalog.Record) (err error) {
	const op = "CatalogRepo.Save"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, r.pool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	if err = r.replaceAll(tr.WithTx(ctx, pgxTx), records); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (r *CatalogRepo) replaceAll(ctx context.Context, records []catalog.Record) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	insert := `
		INSERT INTO catalog_products
			(position, id, name, category, brand, description, price, image, thumbnail, rating, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	batch.Queue(`TRUNCATE catalog_products`)
	for i := range records {
		m := converter.ToModel(i, &records[i])
		batch.Queue(insert,
			m.Position, m.ID, m.Name, m.Category, m.Brand, m.Description, m.Price,
			m.Image, m.Thumbnail, m.Rating, m.Embedding,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
