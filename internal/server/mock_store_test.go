package server

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/store"
)

// mockStore is an in-memory store.Store for handler tests.
type mockStore struct {
	mu       sync.Mutex
	stations []*model.Station
	links    []*model.Link
	routes   []*model.Route

	listLinksCalls int
	listLinksErr   error
	createRouteErr error
	listRoutesErr  error
}

func newMockStore() *mockStore {
	return &mockStore{}
}

func (m *mockStore) addStation(id int64, short, long string) {
	m.stations = append(m.stations, &model.Station{ID: id, ShortName: short, LongName: long})
}

func (m *mockStore) addLink(network, parent, child string, distance float64) {
	m.links = append(m.links, &model.Link{
		ID:       int64(len(m.links) + 1),
		Network:  network,
		Parent:   parent,
		Child:    child,
		Distance: distance,
	})
}

func (m *mockStore) ListStations(_ context.Context, filter model.StationFilter) ([]*model.Station, error) {
	var out []*model.Station
	search := strings.ToLower(filter.Search)
	for _, st := range m.stations {
		if search != "" &&
			!strings.Contains(strings.ToLower(st.ShortName), search) &&
			!strings.Contains(strings.ToLower(st.LongName), search) {
			continue
		}
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b *model.Station) int { return strings.Compare(a.ShortName, b.ShortName) })
	return out, nil
}

func (m *mockStore) GetStation(_ context.Context, id int64) (*model.Station, error) {
	for _, st := range m.stations {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) GetStationByShortName(_ context.Context, shortName string) (*model.Station, error) {
	for _, st := range m.stations {
		if st.ShortName == shortName {
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) UpsertStation(_ context.Context, st *model.Station) error {
	m.stations = append(m.stations, st)
	return nil
}

func (m *mockStore) ListLinks(_ context.Context, filter model.LinkFilter) ([]*model.Link, error) {
	m.mu.Lock()
	m.listLinksCalls++
	m.mu.Unlock()
	if m.listLinksErr != nil {
		return nil, m.listLinksErr
	}
	var out []*model.Link
	for _, l := range m.links {
		if filter.Network != "" && l.Network != filter.Network {
			continue
		}
		if filter.From != "" && l.Parent != filter.From {
			continue
		}
		if filter.To != "" && l.Child != filter.To {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *mockStore) GetLink(_ context.Context, id int64) (*model.Link, error) {
	for _, l := range m.links {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) FindLinkBetween(_ context.Context, a, b string) (*model.Link, error) {
	var best *model.Link
	for _, l := range m.links {
		if (l.Parent == a && l.Child == b) || (l.Parent == b && l.Child == a) {
			if best == nil || l.Distance < best.Distance {
				best = l
			}
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

func (m *mockStore) UpsertLink(_ context.Context, l *model.Link) error {
	m.links = append(m.links, l)
	return nil
}

func (m *mockStore) CreateRoute(_ context.Context, r *model.Route) error {
	if m.createRouteErr != nil {
		return m.createRouteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, r)
	return nil
}

func (m *mockStore) GetRoute(_ context.Context, id string) (*model.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.routes {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListRoutes(_ context.Context, filter model.RouteFilter) ([]*model.Route, error) {
	if m.listRoutesErr != nil {
		return nil, m.listRoutesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Route
	for _, r := range m.routes {
		if filter.Matches(r.CreatedAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
