package routing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/trackline/internal/graph"
	"github.com/alfredjeanlab/trackline/internal/model"
)

// LinkSource is the slice of the store the planner reads the graph from.
type LinkSource interface {
	ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error)
}

// SearchObserver is notified after every shortest-path search.
type SearchObserver interface {
	ObserveSearch(links int, elapsed time.Duration)
}

// Planner answers routing requests. It keeps no graph between requests, so
// every request sees the catalog as it is at that moment.
type Planner struct {
	links    LinkSource
	recorder *Recorder
	observer SearchObserver
}

// Option configures a Planner.
type Option func(*Planner)

// WithObserver reports search timings to o.
func WithObserver(o SearchObserver) Option {
	return func(p *Planner) { p.observer = o }
}

// NewPlanner returns a Planner reading links from links and recording
// results through recorder.
func NewPlanner(links LinkSource, recorder *Recorder, opts ...Option) *Planner {
	p := &Planner{links: links, recorder: recorder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates req, finds the shortest path between its endpoints over a
// fresh link snapshot and persists the result.
//
// Errors: *model.ValidationError, ErrSameEndpoints, *graph.UnknownNodeError,
// *graph.NoPathError, *PersistenceError, or a wrapped store error when the
// links cannot be loaded.
func (p *Planner) Plan(ctx context.Context, req model.RouteRequest) (*model.Route, error) {
	req.SourceCode = strings.TrimSpace(req.SourceCode)
	req.DestinationCode = strings.TrimSpace(req.DestinationCode)
	req.AnalyticTag = strings.TrimSpace(req.AnalyticTag)

	if err := model.ValidateRouteRequest(&req); err != nil {
		return nil, err
	}
	if req.SourceCode == req.DestinationCode {
		return nil, ErrSameEndpoints
	}

	links, err := p.links.ListLinks(ctx, model.LinkFilter{})
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	g := graph.Build(links)
	start := time.Now()
	distance, path, err := graph.ShortestPath(g, req.SourceCode, req.DestinationCode)
	if p.observer != nil {
		p.observer.ObserveSearch(g.LinkCount(), time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	return p.recorder.Record(ctx, req.SourceCode, req.DestinationCode, req.AnalyticTag, distance, path)
}
