package main

import (
	"fmt"

	"github.com/alfredjeanlab/trackline/internal/config"
	"github.com/alfredjeanlab/trackline/internal/store"
	"github.com/alfredjeanlab/trackline/internal/store/postgres"
	"github.com/alfredjeanlab/trackline/internal/store/sqlite"
)

// openStore opens the backend named by a postgres:// or sqlite:// URL.
func openStore(databaseURL string) (store.Store, error) {
	backend, dsn, err := config.ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case config.BackendPostgres:
		return postgres.New(dsn)
	case config.BackendSQLite:
		return sqlite.New(dsn)
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}
