package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS voice_turns (
	id         UUID PRIMARY KEY,
	session_id TEXT        NOT NULL,
	role       TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	intent     TEXT        NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS voice_turns_session_idx ON voice_turns (session_id, created_at);
`

// PostgresStore appends turns to the voice_turns table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) ([]Record, error) {
	const q = `SELECT id::text, session_id, role, content, intent, created_at
		FROM voice_turns WHERE session_id = $1 ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec          Record
			role, intent string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &role, &rec.Content, &intent, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.Role = Role(role)
		rec.Intent = Intent(intent)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return recs, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	const q = `INSERT INTO voice_turns (id, session_id, role, content, intent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q, rec.ID, rec.SessionID, string(rec.Role), rec.Content, string(rec.Intent), rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
