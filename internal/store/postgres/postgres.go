// Package postgres implements the store.Store interface backed by
// PostgreSQL, for deployments that outgrow the gist document.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/kofid/internal/model"
	"github.com/groblegark/kofid/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// documentName is the ledger row key. One service instance owns one ledger.
const documentName = "kofi"

// PostgresStore implements store.Store backed by a PostgreSQL database.
// The ledger is stored whole as a single JSONB document, keeping the
// last-writer-wins semantics of the gist backend.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an existing database handle without running migrations.
// Used by tests.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Load reads the ledger document. A missing row decodes to an empty ledger.
func (s *PostgresStore) Load(ctx context.Context) (*model.Ledger, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM ledgers WHERE name = $1`, documentName,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return model.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return model.DecodeLedger(doc), nil
}

// Save upserts the whole ledger document.
func (s *PostgresStore) Save(ctx context.Context, l *model.Ledger) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledgers (name, document, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (name) DO UPDATE SET document = $2, updated_at = NOW()`,
		documentName, doc,
	)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
