package server

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/trackline/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ RoutingServiceServer = (*Server)(nil)

// Request shapes decoded from the incoming Struct.
type (
	idRequest struct {
		ID string `json:"id"`
	}
	rangeRequest struct {
		From    string `json:"from"`
		To      string `json:"to"`
		GroupBy string `json:"groupBy"`
	}
	stationRequest struct {
		ID        int64  `json:"id"`
		ShortName string `json:"shortName"`
		Search    string `json:"search"`
	}
	linkRequest struct {
		Network string `json:"network"`
		From    string `json:"from"`
		To      string `json:"to"`
	}
)

// CreateRoute plans and records a route.
func (s *Server) CreateRoute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.RouteRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	route, err := s.createRoute(ctx, req)
	if err != nil {
		f := classifyRouteError(err)
		return nil, status.Error(f.code, f.message)
	}
	return toStruct(route)
}

// GetRoute fetches a recorded route by id.
func (s *Server) GetRoute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	route, err := s.store.GetRoute(ctx, req.ID)
	if err != nil {
		return nil, lookupStatus(err, "route")
	}
	return toStruct(route)
}

// ListRoutes lists recorded routes by creation date range.
func (s *Server) ListRoutes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rangeRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	list, err := s.listRoutes(ctx, req.From, req.To)
	if err != nil {
		return nil, queryStatus(err, "failed to list routes")
	}
	return toStruct(list)
}

// DistanceStats aggregates recorded distances.
func (s *Server) DistanceStats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rangeRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	report, err := s.distanceReport(ctx, req.From, req.To, req.GroupBy)
	if err != nil {
		return nil, queryStatus(err, "failed to aggregate distances")
	}
	return toStruct(report)
}

// ListStations lists stations, optionally filtered by search text.
func (s *Server) ListStations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req stationRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	list, err := s.listStations(ctx, req.Search)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list stations: %v", err)
	}
	return toStruct(list)
}

// GetStation fetches a station by id or, when id is absent, by short name.
func (s *Server) GetStation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req stationRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	var (
		st  *model.Station
		err error
	)
	switch {
	case req.ID > 0:
		st, err = s.store.GetStation(ctx, req.ID)
	case req.ShortName != "":
		st, err = s.store.GetStationByShortName(ctx, req.ShortName)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or shortName is required")
	}
	if err != nil {
		return nil, lookupStatus(err, "station")
	}
	return toStruct(st)
}

// ListLinks lists links filtered by network and endpoints.
func (s *Server) ListLinks(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req linkRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	list, err := s.listLinks(ctx, model.LinkFilter{Network: req.Network, From: req.From, To: req.To})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list distances: %v", err)
	}
	return toStruct(list)
}

// DistanceBetween returns the direct link between two stations.
func (s *Server) DistanceBetween(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req linkRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	link, err := s.distanceBetween(ctx, req.From, req.To)
	if isNotFound(err) {
		return nil, status.Error(codes.NotFound, "no direct distance between stations")
	}
	if err != nil {
		return nil, lookupStatus(err, "distance")
	}
	return toStruct(link)
}

// Health returns the service health status.
func (s *Server) Health(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.health())
}

// lookupStatus is the gRPC counterpart of writeLookupError.
func lookupStatus(err error, resource string) error {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		return status.Error(codes.InvalidArgument, ie.Error())
	case isNotFound(err):
		return status.Error(codes.NotFound, resource+" not found")
	default:
		return status.Errorf(codes.Internal, "failed to get %s: %v", resource, err)
	}
}

// queryStatus is the gRPC counterpart of writeQueryError.
func queryStatus(err error, message string) error {
	var qe queryError
	if errors.As(err, &qe) {
		return status.Error(codes.InvalidArgument, qe.Error())
	}
	return status.Errorf(codes.Internal, "%s: %v", message, err)
}
