// Package routing turns a routing request into a persisted route: it loads a
// fresh link snapshot, runs the shortest-path search and records the result.
package routing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/alfredjeanlab/trackline/internal/idgen"
	"github.com/alfredjeanlab/trackline/internal/model"
)

// ErrSameEndpoints is returned when a request names the same station as
// source and destination.
var ErrSameEndpoints = errors.New("from and to must be different")

// PersistenceError wraps a failed route write. Nothing is persisted when it
// is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist route: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RouteWriter is the slice of the store the recorder needs.
type RouteWriter interface {
	CreateRoute(ctx context.Context, route *model.Route) error
}

// Recorder persists computed routes.
type Recorder struct {
	routes RouteWriter
	newID  idgen.Func
	now    func() time.Time
}

// NewRecorder returns a Recorder writing to routes with nanoid identifiers
// and wall-clock timestamps.
func NewRecorder(routes RouteWriter) *Recorder {
	return &Recorder{routes: routes, newID: idgen.NewRouteID, now: time.Now}
}

// Record assigns an ID and creation time to a search result and writes it.
// The distance is rounded to the stored precision; the path is not checked
// against the distance.
func (r *Recorder) Record(ctx context.Context, source, destination, tag string, distance float64, path []string) (*model.Route, error) {
	id, err := r.newID()
	if err != nil {
		return nil, &PersistenceError{Err: fmt.Errorf("generate route id: %w", err)}
	}

	route := &model.Route{
		ID:              id,
		SourceCode:      source,
		DestinationCode: destination,
		AnalyticTag:     tag,
		TotalDistance:   model.RoundDistance(distance),
		Path:            slices.Clone(path),
		CreatedAt:       r.now().UTC(),
	}
	if err := r.routes.CreateRoute(ctx, route); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return route, nil
}
