// Package client provides a transport-agnostic interface for the trackline
// service, with HTTP/JSON and gRPC implementations.
package client

import (
	"context"

	"github.com/alfredjeanlab/trackline/internal/model"
	tlsync "github.com/alfredjeanlab/trackline/internal/sync"
)

// Client is the interface that all tl CLI commands use to talk to the
// server. It is implemented by HTTPClient (default) and GRPCClient.
type Client interface {
	// Routes
	CreateRoute(ctx context.Context, req model.RouteRequest) (*model.Route, error)
	GetRoute(ctx context.Context, id string) (*model.Route, error)
	ListRoutes(ctx context.Context, from, to string) ([]*model.Route, error)

	// Statistics
	DistanceStats(ctx context.Context, req StatsRequest) (*model.DistanceReport, error)

	// Catalog
	ListStations(ctx context.Context, search string) ([]*model.Station, error)
	GetStation(ctx context.Context, id int64) (*model.Station, error)
	GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error)
	ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error)
	DistanceBetween(ctx context.Context, from, to string) (*model.Link, error)

	// Health
	Health(ctx context.Context) (*HealthResponse, error)

	// Lifecycle
	Close() error
}

// StatsRequest holds the raw distance statistics query. Dates are
// YYYY-MM-DD; empty values are open.
type StatsRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	GroupBy string `json:"groupBy,omitempty"`
}

// HealthResponse is the server's health report.
type HealthResponse struct {
	Status string         `json:"status"`
	Sync   *tlsync.Status `json:"sync,omitempty"`
}

type routeList struct {
	Routes []*model.Route `json:"routes"`
	Total  int            `json:"total"`
}

type stationList struct {
	Stations []*model.Station `json:"stations"`
}

type linkList struct {
	Links []*model.Link `json:"links"`
}
