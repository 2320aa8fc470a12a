package model

import (
	"math"
	"time"
)

// Route is a persisted shortest-path result. Routes are append-only.
type Route struct {
	ID              string    `json:"id"`
	SourceCode      string    `json:"sourceCode"`
	DestinationCode string    `json:"destinationCode"`
	AnalyticTag     string    `json:"analyticTag"`
	TotalDistance   float64   `json:"totalDistance"`
	Path            []string  `json:"path"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RouteRequest is the input to a routing computation.
type RouteRequest struct {
	SourceCode      string `json:"sourceCode" validate:"required"`
	DestinationCode string `json:"destinationCode" validate:"required"`
	AnalyticTag     string `json:"analyticTag" validate:"required"`
}

// RouteFilter selects routes by creation time. CreatedFrom is inclusive and
// CreatedBefore is exclusive; nil bounds are open.
type RouteFilter struct {
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// Matches reports whether t falls inside the filter bounds.
func (f RouteFilter) Matches(t time.Time) bool {
	if f.CreatedFrom != nil && t.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedBefore != nil && !t.Before(*f.CreatedBefore) {
		return false
	}
	return true
}

// DistancePrecision is the number of decimal places distances are stored with.
const DistancePrecision = 3

// RoundDistance rounds d to DistancePrecision decimal places.
func RoundDistance(d float64) float64 {
	p := math.Pow10(DistancePrecision)
	return math.Round(d*p) / p
}
