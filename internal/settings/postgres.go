package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"halo-summarizer/internal/llm"
)

// settingsRowID pins the table to a single row.
const settingsRowID = 1

type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens dsn with the pgx driver and creates the table if needed.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := NewPostgresFromDB(db)
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresFromDB wraps an open handle without migrating.
func NewPostgresFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
		id INT PRIMARY KEY,
		provider TEXT NOT NULL,
		gemini_api_key TEXT NOT NULL DEFAULT '',
		groq_api_key TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) (Settings, error) {
	var (
		out      Settings
		provider string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT provider, gemini_api_key, groq_api_key FROM settings WHERE id = $1`,
		settingsRowID,
	).Scan(&provider, &out.GeminiAPIKey, &out.GroqAPIKey)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	out.Provider = llm.ProviderName(provider)
	return out.withDefaults(), nil
}

func (s *PostgresStore) Save(ctx context.Context, in Settings) error {
	in = in.withDefaults()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, provider, gemini_api_key, groq_api_key, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			provider = EXCLUDED.provider,
			gemini_api_key = EXCLUDED.gemini_api_key,
			groq_api_key = EXCLUDED.groq_api_key,
			updated_at = now()`,
		settingsRowID, string(in.Provider), in.GeminiAPIKey, in.GroqAPIKey,
	)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
