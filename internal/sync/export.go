package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// Source is the read side of the store an export needs.
type Source interface {
	ListStations(ctx context.Context, filter model.StationFilter) ([]*model.Station, error)
	ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error)
	ListRoutes(ctx context.Context, filter model.RouteFilter) ([]*model.Route, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	StationCount int       `json:"station_count"`
	LinkCount    int       `json:"link_count"`
	RouteCount   int       `json:"route_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes a header followed by every station (by short name),
// link (by id) and route (by creation time) as JSONL to w.
func ExportJSONL(ctx context.Context, s Source, w io.Writer) error {
	stations, err := s.ListStations(ctx, model.StationFilter{})
	if err != nil {
		return fmt.Errorf("list stations: %w", err)
	}
	links, err := s.ListLinks(ctx, model.LinkFilter{})
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}
	routes, err := s.ListRoutes(ctx, model.RouteFilter{})
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		StationCount: len(stations),
		LinkCount:    len(links),
		RouteCount:   len(routes),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, st := range stations {
		if err := enc.Encode(record{Type: "station", Data: st}); err != nil {
			return fmt.Errorf("encode station %s: %w", st.ShortName, err)
		}
	}
	for _, l := range links {
		if err := enc.Encode(record{Type: "link", Data: l}); err != nil {
			return fmt.Errorf("encode link %d: %w", l.ID, err)
		}
	}
	for _, r := range routes {
		if err := enc.Encode(record{Type: "route", Data: r}); err != nil {
			return fmt.Errorf("encode route %s: %w", r.ID, err)
		}
	}

	return nil
}
