// Package events carries route notifications to other processes over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// Event topic constants
const (
	TopicRouteCreated  = "trackline.route.created"
	TopicCatalogSeeded = "trackline.catalog.seeded"

	// TopicAll matches every trackline subject.
	TopicAll = "trackline.>"
)

// RouteCreated is emitted once a route has been persisted.
type RouteCreated struct {
	Route *model.Route `json:"route"`
}

// CatalogSeeded is emitted after a seed run commits.
type CatalogSeeded struct {
	Stations int `json:"stations"`
	Links    int `json:"links"`
}

// DecodeRouteCreated parses a TopicRouteCreated payload.
func DecodeRouteCreated(data []byte) (*model.Route, error) {
	var ev RouteCreated
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode route event: %w", err)
	}
	if ev.Route == nil {
		return nil, fmt.Errorf("decode route event: missing route")
	}
	return ev.Route, nil
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
