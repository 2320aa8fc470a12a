package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient implements Client using the gRPC transport.
type GRPCClient struct {
	conn *grpc.ClientConn
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient connects to the given gRPC address. When token is non-empty
// it is sent as a Bearer token on every call.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(bearerInterceptor(token)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn}, nil
}

func bearerInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if token != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// call invokes a RoutingService method with in as the request object and
// decodes the response object into out.
func (c *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	req, err := encodeStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+server.RoutingServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	return decodeStruct(resp, out)
}

// --- Routes ---

func (c *GRPCClient) CreateRoute(ctx context.Context, req model.RouteRequest) (*model.Route, error) {
	var route model.Route
	if err := c.call(ctx, "CreateRoute", req, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *GRPCClient) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	var route model.Route
	if err := c.call(ctx, "GetRoute", map[string]string{"id": id}, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *GRPCClient) ListRoutes(ctx context.Context, from, to string) ([]*model.Route, error) {
	var resp routeList
	if err := c.call(ctx, "ListRoutes", StatsRequest{From: from, To: to}, &resp); err != nil {
		return nil, err
	}
	return resp.Routes, nil
}

// --- Statistics ---

func (c *GRPCClient) DistanceStats(ctx context.Context, req StatsRequest) (*model.DistanceReport, error) {
	var report model.DistanceReport
	if err := c.call(ctx, "DistanceStats", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// --- Catalog ---

func (c *GRPCClient) ListStations(ctx context.Context, search string) ([]*model.Station, error) {
	var resp stationList
	if err := c.call(ctx, "ListStations", map[string]string{"search": search}, &resp); err != nil {
		return nil, err
	}
	return resp.Stations, nil
}

func (c *GRPCClient) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	var st model.Station
	if err := c.call(ctx, "GetStation", map[string]int64{"id": id}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *GRPCClient) GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error) {
	var st model.Station
	if err := c.call(ctx, "GetStation", map[string]string{"shortName": shortName}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *GRPCClient) ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error) {
	in := map[string]string{"network": filter.Network, "from": filter.From, "to": filter.To}
	var resp linkList
	if err := c.call(ctx, "ListLinks", in, &resp); err != nil {
		return nil, err
	}
	return resp.Links, nil
}

func (c *GRPCClient) DistanceBetween(ctx context.Context, from, to string) (*model.Link, error) {
	var link model.Link
	if err := c.call(ctx, "DistanceBetween", map[string]string{"from": from, "to": to}, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// --- Health ---

func (c *GRPCClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call(ctx, "Health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// encodeStruct converts a JSON object value into a Struct. nil becomes an
// empty Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	out := &structpb.Struct{}
	if v == nil {
		return out, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return out, nil
}

func decodeStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
