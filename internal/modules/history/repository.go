// Package history implements the historical price archive: a sqlite-backed
// repository fronted by an in-memory layer guarded by a reader-writer lock.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/akentari/vigil/internal/domain"
)

// Repository persists price series to sqlite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a price history repository and ensures its schema.
func NewRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init price history schema: %w", err)
	}
	return repo, nil
}

func (r *Repository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			asset  TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			price  REAL    NOT NULL,
			volume REAL    NOT NULL DEFAULT 0,
			PRIMARY KEY (asset, ts)
		)
	`)
	return err
}

// Save upserts a batch of price points for an asset in one transaction.
func (r *Repository) Save(asset string, points []domain.PricePoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (asset, ts, price, volume)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset, ts) DO UPDATE SET
			price = excluded.price,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(asset, p.Timestamp.UTC().Unix(), p.Price, p.Volume); err != nil {
			return fmt.Errorf("failed to upsert price point: %w", err)
		}
	}

	return tx.Commit()
}

// LoadAsset returns the stored series for one asset, oldest first.
func (r *Repository) LoadAsset(asset string) ([]domain.PricePoint, error) {
	rows, err := r.db.Query(`
		SELECT ts, price, volume FROM price_history
		WHERE asset = ?
		ORDER BY ts ASC
	`, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// LoadAll returns every stored series keyed by asset, each oldest first.
func (r *Repository) LoadAll() (map[string][]domain.PricePoint, error) {
	rows, err := r.db.Query(`
		SELECT asset, ts, price, volume FROM price_history
		ORDER BY asset, ts ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	series := make(map[string][]domain.PricePoint)
	for rows.Next() {
		var asset string
		var ts int64
		var price, volume float64
		if err := rows.Scan(&asset, &ts, &price, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		series[asset] = append(series[asset], domain.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     price,
			Volume:    volume,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	return series, nil
}

func scanPoints(rows *sql.Rows) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	for rows.Next() {
		var ts int64
		var price, volume float64
		if err := rows.Scan(&ts, &price, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, domain.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     price,
			Volume:    volume,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price points: %w", err)
	}
	return points, nil
}
