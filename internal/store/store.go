package store

import (
	"context"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// Store defines the persistence interface for the station catalog, the link
// catalog and recorded routes. Lookups that find nothing return
// sql.ErrNoRows.
type Store interface {
	// Stations
	ListStations(ctx context.Context, filter model.StationFilter) ([]*model.Station, error)
	GetStation(ctx context.Context, id int64) (*model.Station, error)
	GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error)
	UpsertStation(ctx context.Context, station *model.Station) error

	// Links
	ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error)
	GetLink(ctx context.Context, id int64) (*model.Link, error)
	FindLinkBetween(ctx context.Context, a, b string) (*model.Link, error) // either orientation, lightest first
	UpsertLink(ctx context.Context, link *model.Link) error

	// Routes (append-only)
	CreateRoute(ctx context.Context, route *model.Route) error
	GetRoute(ctx context.Context, id string) (*model.Route, error)
	ListRoutes(ctx context.Context, filter model.RouteFilter) ([]*model.Route, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
