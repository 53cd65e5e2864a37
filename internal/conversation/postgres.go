package conversation

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PostgresStore keeps one row per turn in conversation_turns, ordered by seq.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPostgresStore wraps an existing pool. Call Migrate before first use.
func NewPostgresStore(pool *pgxpool.Pool, log logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: log}
}

// OpenPostgresStore connects to databaseURL, applies pending migrations and
// returns the store.
func OpenPostgresStore(ctx context.Context, databaseURL string, log logger.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := NewPostgresStore(pool, log)
	if err := store.Migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Pool exposes the pool for readiness checks.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

// Close releases the pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// Migrate applies the embedded schema migrations.
func (s *PostgresStore) Migrate() error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("create embedded migration source: %w", err)
	}

	// Migrations run on their own connection so closing the migrator never
	// touches the serving pool.
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer func() { _ = db.Close() }()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = migrator.Close() }()

	s.logger.Info("Applying conversation store migrations")
	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Debug("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	s.logger.Info("Conversation store migrations applied")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (History, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content FROM conversation_turns WHERE conversation_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", id, err)
	}
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Turn, error) {
		var t Turn
		var role string
		if err := row.Scan(&role, &t.Content); err != nil {
			return Turn{}, err
		}
		t.Role = Role(role)
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan history %s: %w", id, err)
	}
	return History(history), nil
}

// Put replaces every row for id inside one transaction.
func (s *PostgresStore) Put(ctx context.Context, id string, history History) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM conversation_turns WHERE conversation_id = $1`, id); err != nil {
		return fmt.Errorf("clear history %s: %w", id, err)
	}

	batch := &pgx.Batch{}
	for i, t := range history {
		batch.Queue(`INSERT INTO conversation_turns (conversation_id, seq, role, content) VALUES ($1, $2, $3, $4)`,
			id, i, string(t.Role), t.Content)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert history %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit history %s: %w", id, err)
	}
	return nil
}
