package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanStation scans a single row into a model.Station.
// The row must contain columns in the order defined by stationColumns.
func scanStation(row scannable) (*model.Station, error) {
	var st model.Station
	var longName sql.NullString
	err := row.Scan(&st.ID, &st.ShortName, &longName, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	st.LongName = longName.String
	return &st, nil
}

func scanStations(rows *sql.Rows) ([]*model.Station, error) {
	var stations []*model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// scanLink scans a single row into a model.Link.
// The row must contain columns in the order defined by linkColumns.
func scanLink(row scannable) (*model.Link, error) {
	var l model.Link
	var parentID, childID sql.NullInt64
	err := row.Scan(
		&l.ID,
		&l.Network,
		&l.Parent,
		&l.Child,
		&parentID,
		&childID,
		&l.Distance,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.ParentStationID = int64Ptr(parentID)
	l.ChildStationID = int64Ptr(childID)
	return &l, nil
}

func scanLinks(rows *sql.Rows) ([]*model.Link, error) {
	var links []*model.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// scanRoute scans a single row into a model.Route.
// The row must contain columns in the order defined by routeColumns.
func scanRoute(row scannable) (*model.Route, error) {
	var r model.Route
	var path []byte
	err := row.Scan(
		&r.ID,
		&r.SourceCode,
		&r.DestinationCode,
		&r.AnalyticTag,
		&r.TotalDistance,
		&path,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(path) > 0 {
		if err := json.Unmarshal(path, &r.Path); err != nil {
			return nil, fmt.Errorf("decode path of route %s: %w", r.ID, err)
		}
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func scanRoutes(rows *sql.Rows) ([]*model.Route, error) {
	var routes []*model.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return routes, nil
}

// nullInt64Ptr converts a *int64 to a sql.NullInt64.
func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// int64Ptr converts a sql.NullInt64 back to a *int64; null is nil.
func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
