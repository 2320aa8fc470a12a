package server

import (
	"context"
	"net"
	"testing"

	"github.com/alfredjeanlab/trackline/internal/events"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// startGRPC serves the routing service over an in-memory listener and
// returns a connected client.
func startGRPC(t *testing.T, ms *mockStore, token string) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(New(ms, events.NoopPublisher{}), token)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+RoutingServiceName+"/"+method, req, out)
	return out, err
}

// requireCode asserts that err is a gRPC error with the given status code.
func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected gRPC error with code %v, got nil", code)
	}
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected gRPC status error, got %v", err)
	}
	if st.Code() != code {
		t.Fatalf("expected code=%v, got %v (%s)", code, st.Code(), st.Message())
	}
}

func TestGRPCCreateRoute(t *testing.T) {
	ms := newMockStore()
	seedNetwork(ms)
	conn := startGRPC(t, ms, "")
	ctx := context.Background()

	out, err := invoke(ctx, conn, "CreateRoute", map[string]any{
		"sourceCode": "A", "destinationCode": "C", "analyticTag": "ops",
	})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	fields := out.GetFields()
	if d := fields["totalDistance"].GetNumberValue(); d != 7 {
		t.Errorf("totalDistance = %v", d)
	}
	path := fields["path"].GetListValue().AsSlice()
	if len(path) != 3 || path[1] != "D" {
		t.Errorf("path = %v", path)
	}

	id := fields["id"].GetStringValue()
	got, err := invoke(ctx, conn, "GetRoute", map[string]any{"id": id})
	if err != nil {
		t.Fatalf("GetRoute: %v", err)
	}
	if got.GetFields()["id"].GetStringValue() != id {
		t.Fatalf("GetRoute returned %v", got)
	}
}

func TestGRPCErrorCodes(t *testing.T) {
	ms := newMockStore()
	seedNetwork(ms)
	conn := startGRPC(t, ms, "")
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		in     map[string]any
		code   codes.Code
	}{
		{"same endpoints", "CreateRoute", map[string]any{"sourceCode": "A", "destinationCode": "A", "analyticTag": "x"}, codes.InvalidArgument},
		{"unknown station", "CreateRoute", map[string]any{"sourceCode": "A", "destinationCode": "Q", "analyticTag": "x"}, codes.InvalidArgument},
		{"no path", "CreateRoute", map[string]any{"sourceCode": "A", "destinationCode": "E", "analyticTag": "x"}, codes.InvalidArgument},
		{"missing fields", "CreateRoute", map[string]any{}, codes.InvalidArgument},
		{"wrong field type", "CreateRoute", map[string]any{"sourceCode": 3.0}, codes.InvalidArgument},
		{"route not found", "GetRoute", map[string]any{"id": "rt-nope"}, codes.NotFound},
		{"route id required", "GetRoute", map[string]any{}, codes.InvalidArgument},
		{"bad groupBy", "DistanceStats", map[string]any{"groupBy": "week"}, codes.InvalidArgument},
		{"bad date", "ListRoutes", map[string]any{"from": "tomorrow"}, codes.InvalidArgument},
		{"station not found", "GetStation", map[string]any{"shortName": "NOPE"}, codes.NotFound},
		{"station key required", "GetStation", map[string]any{}, codes.InvalidArgument},
		{"no direct link", "DistanceBetween", map[string]any{"from": "A", "to": "C"}, codes.NotFound},
		{"between needs both", "DistanceBetween", map[string]any{"from": "A"}, codes.InvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := invoke(ctx, conn, tc.method, tc.in)
			requireCode(t, err, tc.code)
		})
	}
}

func TestGRPCPersistenceFailure(t *testing.T) {
	ms := newMockStore()
	seedNetwork(ms)
	ms.createRouteErr = context.DeadlineExceeded
	conn := startGRPC(t, ms, "")

	_, err := invoke(context.Background(), conn, "CreateRoute", map[string]any{
		"sourceCode": "A", "destinationCode": "B", "analyticTag": "x",
	})
	requireCode(t, err, codes.Internal)
	if msg := status.Convert(err).Message(); msg != msgPersistFailed {
		t.Fatalf("message = %q", msg)
	}
}

func TestGRPCCatalogReads(t *testing.T) {
	ms := newMockStore()
	seedNetwork(ms)
	conn := startGRPC(t, ms, "")
	ctx := context.Background()

	stations, err := invoke(ctx, conn, "ListStations", map[string]any{"search": "station a"})
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if n := len(stations.GetFields()["stations"].GetListValue().GetValues()); n != 1 {
		t.Fatalf("stations = %d, want 1", n)
	}

	st, err := invoke(ctx, conn, "GetStation", map[string]any{"id": 3.0})
	if err != nil {
		t.Fatalf("GetStation: %v", err)
	}
	if st.GetFields()["shortName"].GetStringValue() != "C" {
		t.Fatalf("station = %v", st)
	}

	links, err := invoke(ctx, conn, "ListLinks", map[string]any{"network": "branch"})
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if n := len(links.GetFields()["links"].GetListValue().GetValues()); n != 1 {
		t.Fatalf("links = %d, want 1", n)
	}

	between, err := invoke(ctx, conn, "DistanceBetween", map[string]any{"from": "F", "to": "E"})
	if err != nil {
		t.Fatalf("DistanceBetween: %v", err)
	}
	if between.GetFields()["distance"].GetNumberValue() != 8 {
		t.Fatalf("between = %v", between)
	}
}

func TestGRPCDistanceStats(t *testing.T) {
	ms := newMockStore()
	seedNetwork(ms)
	conn := startGRPC(t, ms, "")
	ctx := context.Background()

	for _, to := range []string{"B", "C", "D"} {
		if _, err := invoke(ctx, conn, "CreateRoute", map[string]any{
			"sourceCode": "A", "destinationCode": to, "analyticTag": "ops",
		}); err != nil {
			t.Fatalf("CreateRoute %s: %v", to, err)
		}
	}

	out, err := invoke(ctx, conn, "DistanceStats", map[string]any{})
	if err != nil {
		t.Fatalf("DistanceStats: %v", err)
	}
	items := out.GetFields()["items"].GetListValue().GetValues()
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}
	item := items[0].GetStructValue().GetFields()
	// A-B 10, A-C 7, A-D 3
	if item["totalDistanceKm"].GetNumberValue() != 20 || item["analyticCode"].GetStringValue() != "ops" {
		t.Fatalf("item = %v", item)
	}
	if _, isNull := item["group"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Fatalf("group = %v, want null", item["group"])
	}
}

func TestGRPCAuth(t *testing.T) {
	conn := startGRPC(t, newMockStore(), "secret")

	// Health is exempt.
	out, err := invoke(context.Background(), conn, "Health", nil)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if out.GetFields()["status"].GetStringValue() != "ok" {
		t.Fatalf("health = %v", out)
	}

	_, err = invoke(context.Background(), conn, "ListStations", nil)
	requireCode(t, err, codes.Unauthenticated)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer secret")
	if _, err := invoke(ctx, conn, "ListStations", nil); err != nil {
		t.Fatalf("authorized ListStations: %v", err)
	}
}
