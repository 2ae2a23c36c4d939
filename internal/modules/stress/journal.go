package stress

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Journal is an append-only record of completed simulation results, stored
// as msgpack blobs in sqlite. It exists for post-hoc analysis; write
// failures never fail the simulation that produced the result.
type Journal struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewJournal creates the journal and its schema.
func NewJournal(db *sql.DB, log zerolog.Logger) (*Journal, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS simulation_results (
		id         TEXT PRIMARY KEY,
		scenario   TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		payload    BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_created ON simulation_results(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{
		db:  db,
		log: log.With().Str("component", "result_journal").Logger(),
	}, nil
}

// Append records one result. Duplicate IDs are ignored so replays stay
// idempotent.
func (j *Journal) Append(result SimulationResult) error {
	payload, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", result.ID, err)
	}

	_, err = j.db.Exec(
		`INSERT OR IGNORE INTO simulation_results (id, scenario, created_at, payload) VALUES (?, ?, ?, ?)`,
		result.ID, result.Scenario, result.CreatedAt.Unix(), payload,
	)
	if err != nil {
		return fmt.Errorf("appending result %s: %w", result.ID, err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (j *Journal) Recent(limit int) ([]SimulationResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(
		`SELECT payload FROM simulation_results ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var results []SimulationResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		var result SimulationResult
		if err := msgpack.Unmarshal(payload, &result); err != nil {
			// A corrupt row should not hide the rest of the journal.
			j.log.Warn().Err(err).Msg("Skipping undecodable journal entry")
			continue
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
