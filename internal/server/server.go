// Package server exposes route planning, distance statistics and the
// catalog read surface over HTTP and gRPC.
package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/trackline/internal/events"
	"github.com/alfredjeanlab/trackline/internal/graph"
	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/routing"
	"github.com/alfredjeanlab/trackline/internal/stats"
	"github.com/alfredjeanlab/trackline/internal/store"
	tlsync "github.com/alfredjeanlab/trackline/internal/sync"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"
)

const (
	msgUnknownStation = "one or both stations unknown in distances graph"
	msgNoPath         = "no path found between stations (network may be disconnected)"
	msgPersistFailed  = "failed to persist route"
	msgGraphFailed    = "failed to load distances graph"
)

// Server holds the state shared by the HTTP and gRPC transports.
type Server struct {
	store      store.Store
	publisher  events.Publisher
	planner    *routing.Planner
	stats      *stats.Engine
	sseHub     *sseHub
	metrics    *Metrics
	syncStatus func() tlsync.Status
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records into m instead of a private registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSyncStatus reports the export scheduler's last run on the health
// endpoint.
func WithSyncStatus(fn func() tlsync.Status) Option {
	return func(s *Server) { s.syncStatus = fn }
}

// New returns a Server backed by the given store and publisher.
func New(s store.Store, p events.Publisher, opts ...Option) *Server {
	srv := &Server{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.metrics == nil {
		srv.metrics = NewMetrics(prometheus.NewRegistry())
	}
	srv.planner = routing.NewPlanner(s, routing.NewRecorder(s), routing.WithObserver(srv.metrics))
	srv.stats = stats.NewEngine(s)
	return srv
}

// publish sends an event to NATS and to SSE clients. Failures are logged
// and never reach the caller.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates a missing or malformed request parameter.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// queryError indicates request values that parse but cannot be served.
// Transport layers map this to 422 / InvalidArgument.
type queryError struct{ err error }

func (e queryError) Error() string { return e.err.Error() }
func (e queryError) Unwrap() error { return e.err }

// routeFailure is how a failed route request is reported on each transport.
type routeFailure struct {
	status  int
	code    codes.Code
	result  string // trackline_routes_total label
	message string
	fields  []model.FieldError
}

func classifyRouteError(err error) routeFailure {
	var (
		ve      *model.ValidationError
		unknown *graph.UnknownNodeError
		noPath  *graph.NoPathError
		persist *routing.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return routeFailure{422, codes.InvalidArgument, resultInvalid, ve.Error(), ve.Errors}
	case errors.Is(err, routing.ErrSameEndpoints):
		return routeFailure{422, codes.InvalidArgument, resultInvalid, err.Error(), nil}
	case errors.As(err, &unknown):
		return routeFailure{422, codes.InvalidArgument, resultUnknownStation, msgUnknownStation, nil}
	case errors.As(err, &noPath):
		return routeFailure{422, codes.InvalidArgument, resultNoPath, msgNoPath, nil}
	case errors.As(err, &persist):
		return routeFailure{500, codes.Internal, resultError, msgPersistFailed, nil}
	default:
		return routeFailure{500, codes.Internal, resultError, msgGraphFailed, nil}
	}
}

// createRoute plans and records a route, counts the outcome and announces
// successful routes.
func (s *Server) createRoute(ctx context.Context, req model.RouteRequest) (*model.Route, error) {
	route, err := s.planner.Plan(ctx, req)
	if err != nil {
		f := classifyRouteError(err)
		s.metrics.countRoute(f.result)
		if f.status >= 500 {
			slog.Error("route request failed",
				"source", req.SourceCode,
				"destination", req.DestinationCode,
				"error", err,
			)
		}
		return nil, err
	}

	s.metrics.countRoute(resultCreated)
	slog.Info("route created", "route_id", route.ID, "distance", route.TotalDistance, "hops", len(route.Path)-1)
	s.publish(ctx, events.TopicRouteCreated, events.RouteCreated{Route: route})
	return route, nil
}

type routeList struct {
	Routes []*model.Route `json:"routes"`
	Total  int            `json:"total"`
}

// listRoutes returns recorded routes created on a UTC date within [from, to].
func (s *Server) listRoutes(ctx context.Context, from, to string) (*routeList, error) {
	q, err := model.ParseStatsQuery(from, to, "")
	if err != nil {
		return nil, queryError{err}
	}
	routes, err := s.store.ListRoutes(ctx, q.RouteFilter())
	if err != nil {
		return nil, err
	}
	if routes == nil {
		routes = []*model.Route{}
	}
	return &routeList{Routes: routes, Total: len(routes)}, nil
}

// distanceReport aggregates recorded distances for the raw query values.
func (s *Server) distanceReport(ctx context.Context, from, to, groupBy string) (*model.DistanceReport, error) {
	q, err := model.ParseStatsQuery(from, to, groupBy)
	if err != nil {
		return nil, queryError{err}
	}
	rows, err := s.stats.Aggregate(ctx, q)
	if err != nil {
		return nil, err
	}
	s.metrics.countStatsQuery(q.GroupBy)
	report := stats.Report(q, rows)
	return &report, nil
}

type stationList struct {
	Stations []*model.Station `json:"stations"`
}

func (s *Server) listStations(ctx context.Context, search string) (*stationList, error) {
	stations, err := s.store.ListStations(ctx, model.StationFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, err
	}
	if stations == nil {
		stations = []*model.Station{}
	}
	return &stationList{Stations: stations}, nil
}

type linkList struct {
	Links []*model.Link `json:"links"`
}

func (s *Server) listLinks(ctx context.Context, filter model.LinkFilter) (*linkList, error) {
	links, err := s.store.ListLinks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []*model.Link{}
	}
	return &linkList{Links: links}, nil
}

// distanceBetween returns the lightest direct link joining two stations in
// either orientation.
func (s *Server) distanceBetween(ctx context.Context, from, to string) (*model.Link, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, inputError("from and to are required")
	}
	return s.store.FindLinkBetween(ctx, from, to)
}

type healthStatus struct {
	Status string         `json:"status"`
	Sync   *tlsync.Status `json:"sync,omitempty"`
}

func (s *Server) health() *healthStatus {
	h := &healthStatus{Status: "ok"}
	if s.syncStatus != nil {
		st := s.syncStatus()
		h.Sync = &st
	}
	return h
}

// isNotFound reports whether err is the store's not-found signal.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
