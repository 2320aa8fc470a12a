package catalog

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/store"
)

// mockStore is a minimal in-memory store for catalog tests.
type mockStore struct {
	stations map[int64]*model.Station
	links    map[[3]string]*model.Link
	nextID   int64
	failLink error
}

func newMockStore() *mockStore {
	return &mockStore{
		stations: make(map[int64]*model.Station),
		links:    make(map[[3]string]*model.Link),
	}
}

func (m *mockStore) ListStations(_ context.Context, _ model.StationFilter) ([]*model.Station, error) {
	var out []*model.Station
	for _, st := range m.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

func (m *mockStore) GetStation(_ context.Context, id int64) (*model.Station, error) {
	st, ok := m.stations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
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
	if st.ID == 0 {
		m.nextID++
		st.ID = 1000 + m.nextID
	}
	m.stations[st.ID] = st
	return nil
}

func (m *mockStore) ListLinks(_ context.Context, _ model.LinkFilter) ([]*model.Link, error) {
	var out []*model.Link
	for _, l := range m.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
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

func (m *mockStore) FindLinkBetween(_ context.Context, _, _ string) (*model.Link, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) UpsertLink(_ context.Context, l *model.Link) error {
	if m.failLink != nil {
		return m.failLink
	}
	key := [3]string{l.Network, l.Parent, l.Child}
	if existing, ok := m.links[key]; ok {
		l.ID = existing.ID
	} else {
		l.ID = int64(len(m.links) + 1)
	}
	m.links[key] = l
	return nil
}

func (m *mockStore) CreateRoute(_ context.Context, _ *model.Route) error {
	return errors.New("not supported")
}

func (m *mockStore) GetRoute(_ context.Context, _ string) (*model.Route, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListRoutes(_ context.Context, _ model.RouteFilter) ([]*model.Route, error) {
	return nil, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
