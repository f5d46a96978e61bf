package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Artt4/disc-golf-equipment-price-comparator/internal/scraper"
	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
)

// upsertSQL inserts a record and, on identity conflict, refreshes only the
// mutable columns. unique_id, title and store are immutable once created.
const upsertSQL = `
INSERT INTO product_table
    (unique_id, title, price, currency, speed, glide, turn, fade, link_to_disc, image_url, store)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (unique_id) DO UPDATE SET
    price        = EXCLUDED.price,
    currency     = EXCLUDED.currency,
    speed        = EXCLUDED.speed,
    glide        = EXCLUDED.glide,
    turn         = EXCLUDED.turn,
    fade         = EXCLUDED.fade,
    link_to_disc = EXCLUDED.link_to_disc,
    image_url    = EXCLUDED.image_url`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS product_table (
    unique_id    TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    price        NUMERIC,
    currency     TEXT,
    speed        NUMERIC,
    glide        NUMERIC,
    turn         NUMERIC,
    fade         NUMERIC,
    link_to_disc TEXT,
    image_url    TEXT,
    store        TEXT NOT NULL
)`

// Gateway translates record batches into conflict-tolerant writes. A batch
// is committed atomically: any failure rolls the whole batch back and the
// error propagates to the calling scraper.
type Gateway struct {
	conn *pgx.Conn
	log  *logger.Logger
}

var _ scraper.Sink = (*Gateway)(nil)

// NewGateway creates a gateway over an open connection
func NewGateway(conn *pgx.Conn) *Gateway {
	return &Gateway{
		conn: conn,
		log:  logger.ForDatabase(),
	}
}

// UpsertBatch writes all records in one transaction and returns the number
// of affected rows
func (g *Gateway) UpsertBatch(ctx context.Context, records []scraper.ProductRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := g.conn.Begin(ctx)
	if err != nil {
		return 0, apperrors.NewDatabase("", "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(upsertSQL, upsertArgs(record)...)
	}

	results := tx.SendBatch(ctx, batch)
	var affected int64
	for range records {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, apperrors.NewDatabase("", "batch write failed", err)
		}
		affected += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, apperrors.NewDatabase("", "failed to close batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperrors.NewDatabase("", "failed to commit batch", err)
	}
	return affected, nil
}

// CountByStore returns the number of stored rows for a store
func (g *Gateway) CountByStore(ctx context.Context, store string) (int64, error) {
	var count int64
	err := g.conn.QueryRow(ctx, "SELECT count(*) FROM product_table WHERE store = $1", store).Scan(&count)
	if err != nil {
		return 0, apperrors.NewDatabase(store, "failed to count rows", err)
	}
	return count, nil
}

// EnsureSchema creates the product table if it does not exist
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.conn.Exec(ctx, schemaSQL); err != nil {
		return apperrors.NewDatabase("", "failed to ensure schema", err)
	}
	g.log.Info().Msg("Schema ensured")
	return nil
}

// Close releases the underlying connection
func (g *Gateway) Close(ctx context.Context) error {
	return g.conn.Close(ctx)
}

// upsertArgs flattens a record into statement parameters. Nil flight
// numbers become SQL NULLs; an empty price would not scan into NUMERIC, so
// it also maps to NULL (scrapers skip priceless entries before this point).
func upsertArgs(record scraper.ProductRecord) []any {
	var price any
	if record.Price != "" {
		price = record.Price
	}
	return []any{
		record.UniqueID,
		record.Title,
		price,
		record.Currency,
		record.Flight.Speed,
		record.Flight.Glide,
		record.Flight.Turn,
		record.Flight.Fade,
		record.LinkToDisc,
		record.ImageURL,
		record.Store,
	}
}
