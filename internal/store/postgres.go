package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
    id TEXT PRIMARY KEY,
    player_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    score INTEGER NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC);
`

// PostgresStore implements ScoreStore using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// SaveScores inserts all records in a single transaction.
func (s *PostgresStore) SaveScores(ctx context.Context, records []ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(
			`INSERT INTO scores (id, player_id, name, score, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.ID, r.PlayerID, r.Name, r.Score, r.RecordedAt)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert scores: %w", err)
		}
		return nil
	})
}

// TopScores returns up to limit records, highest score first.
func (s *PostgresStore) TopScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, player_id, name, score, recorded_at
		 FROM scores ORDER BY score DESC, recorded_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanScore)
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanScore(row pgx.CollectableRow) (ScoreRecord, error) {
	var r ScoreRecord
	err := row.Scan(&r.ID, &r.PlayerID, &r.Name, &r.Score, &r.RecordedAt)
	return r, err
}
