package model

import "time"

// Station is a named waypoint in the network. ShortName is the routing key.
type Station struct {
	ID        int64     `json:"id"`
	ShortName string    `json:"shortName"`
	LongName  string    `json:"longName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StationFilter narrows a station listing. Search matches short or long
// name, case-insensitively.
type StationFilter struct {
	Search string
}
