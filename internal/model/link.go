package model

import "time"

// Link is a weighted connection between two stations, identified by their
// short codes. Links are traversable in both directions at the same weight.
type Link struct {
	ID              int64     `json:"id"`
	Network         string    `json:"network"`
	Parent          string    `json:"parent"`
	Child           string    `json:"child"`
	ParentStationID *int64    `json:"parentStationId,omitempty"`
	ChildStationID  *int64    `json:"childStationId,omitempty"`
	Distance        float64   `json:"distance"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LinkFilter narrows a link listing. From matches the parent code and To
// matches the child code, as stored.
type LinkFilter struct {
	Network string
	From    string
	To      string
}
