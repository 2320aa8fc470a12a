// Package sqlite implements the store.Store interface backed by an embedded
// SQLite database file. It suits single-node deployments and the CLI's
// offline mode.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements store.Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the SQLite database at path and runs any
// pending migrations.
func New(path string) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListStations(ctx context.Context, filter model.StationFilter) ([]*model.Station, error) {
	return queryListStations(ctx, s.db, filter)
}

func (s *SQLiteStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	return queryGetStation(ctx, s.db, id)
}

func (s *SQLiteStore) GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error) {
	return queryGetStationByShortName(ctx, s.db, shortName)
}

func (s *SQLiteStore) UpsertStation(ctx context.Context, station *model.Station) error {
	return queryUpsertStation(ctx, s.db, station)
}

func (s *SQLiteStore) ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error) {
	return queryListLinks(ctx, s.db, filter)
}

func (s *SQLiteStore) GetLink(ctx context.Context, id int64) (*model.Link, error) {
	return queryGetLink(ctx, s.db, id)
}

func (s *SQLiteStore) FindLinkBetween(ctx context.Context, a, b string) (*model.Link, error) {
	return queryFindLinkBetween(ctx, s.db, a, b)
}

func (s *SQLiteStore) UpsertLink(ctx context.Context, link *model.Link) error {
	return queryUpsertLink(ctx, s.db, link)
}

func (s *SQLiteStore) CreateRoute(ctx context.Context, route *model.Route) error {
	return queryCreateRoute(ctx, s.db, route)
}

func (s *SQLiteStore) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	return queryGetRoute(ctx, s.db, id)
}

func (s *SQLiteStore) ListRoutes(ctx context.Context, filter model.RouteFilter) ([]*model.Route, error) {
	return queryListRoutes(ctx, s.db, filter)
}

// RunInTransaction runs fn inside a single transaction, committing on
// success and rolling back on error.
func (s *SQLiteStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	tx *sql.Tx
}

var _ store.Store = (*txStore)(nil)

func (s *txStore) ListStations(ctx context.Context, filter model.StationFilter) ([]*model.Station, error) {
	return queryListStations(ctx, s.tx, filter)
}

func (s *txStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	return queryGetStation(ctx, s.tx, id)
}

func (s *txStore) GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error) {
	return queryGetStationByShortName(ctx, s.tx, shortName)
}

func (s *txStore) UpsertStation(ctx context.Context, station *model.Station) error {
	return queryUpsertStation(ctx, s.tx, station)
}

func (s *txStore) ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error) {
	return queryListLinks(ctx, s.tx, filter)
}

func (s *txStore) GetLink(ctx context.Context, id int64) (*model.Link, error) {
	return queryGetLink(ctx, s.tx, id)
}

func (s *txStore) FindLinkBetween(ctx context.Context, a, b string) (*model.Link, error) {
	return queryFindLinkBetween(ctx, s.tx, a, b)
}

func (s *txStore) UpsertLink(ctx context.Context, link *model.Link) error {
	return queryUpsertLink(ctx, s.tx, link)
}

func (s *txStore) CreateRoute(ctx context.Context, route *model.Route) error {
	return queryCreateRoute(ctx, s.tx, route)
}

func (s *txStore) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	return queryGetRoute(ctx, s.tx, id)
}

func (s *txStore) ListRoutes(ctx context.Context, filter model.RouteFilter) ([]*model.Route, error) {
	return queryListRoutes(ctx, s.tx, filter)
}

func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
