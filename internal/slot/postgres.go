package slot

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	myErr "vcc-feedback/internal/types/errors"
)

// PostgresStorage - слоты в таблице kv_slot, по строке на ключ
type PostgresStorage struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewPostgresStorage(db *sql.DB, logger *zap.SugaredLogger) *PostgresStorage {
	return &PostgresStorage{
		DB:     db,
		Logger: logger,
	}
}

// EnsureSchema - создает таблицу слотов, если ее еще нет
func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	query :=
		`
		CREATE TABLE IF NOT EXISTS kv_slot (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
		`

	if _, err := s.DB.ExecContext(ctx, query); err != nil {
		s.Logger.Error("Failed to create kv_slot table", zap.Error(err))

		return myErr.ErrDBInternal
	}

	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	query :=
		`
		SELECT value
		FROM kv_slot
		WHERE key = $1
		`

	var value string
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		s.Logger.Error(
			"Failed get slot from DB",
			zap.Error(err),
			zap.String("key", key),
		)

		return "", false, myErr.ErrDBInternal
	}

	return value, true, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key string, value string) error {
	query :=
		`
		INSERT INTO kv_slot (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`

	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		s.Logger.Error(
			"Failed save slot to DB",
			zap.Error(err),
			zap.String("key", key),
		)

		return myErr.ErrDBInternal
	}

	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
