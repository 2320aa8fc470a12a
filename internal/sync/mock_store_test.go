package sync

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// mockSource is a minimal in-memory export source for sync tests.
type mockSource struct {
	stations []*model.Station
	links    []*model.Link
	routes   []*model.Route
	err      error
}

func (m *mockSource) ListStations(_ context.Context, _ model.StationFilter) ([]*model.Station, error) {
	return m.stations, m.err
}

func (m *mockSource) ListLinks(_ context.Context, _ model.LinkFilter) ([]*model.Link, error) {
	return m.links, m.err
}

func (m *mockSource) ListRoutes(_ context.Context, _ model.RouteFilter) ([]*model.Route, error) {
	return m.routes, m.err
}

var errExport = errors.New("export source unavailable")
