package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
)

type scannable interface {
	Scan(dest ...any) error
}

func scanStation(row scannable) (*model.Station, error) {
	var st model.Station
	var createdAt, updatedAt string
	if err := row.Scan(&st.ID, &st.ShortName, &st.LongName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := parseStamps(createdAt, updatedAt, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

func scanLink(row scannable) (*model.Link, error) {
	var l model.Link
	var (
		parentID, childID    sql.NullInt64
		createdAt, updatedAt string
	)
	err := row.Scan(
		&l.ID,
		&l.Network,
		&l.Parent,
		&l.Child,
		&parentID,
		&childID,
		&l.Distance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := parseStamps(createdAt, updatedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.ParentStationID = int64Ptr(parentID)
	l.ChildStationID = int64Ptr(childID)
	return &l, nil
}

func scanRoute(row scannable) (*model.Route, error) {
	var r model.Route
	var path, createdAt string
	err := row.Scan(
		&r.ID,
		&r.SourceCode,
		&r.DestinationCode,
		&r.AnalyticTag,
		&r.TotalDistance,
		&path,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(path), &r.Path); err != nil {
		return nil, fmt.Errorf("decode path of route %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of route %s: %w", r.ID, err)
	}
	return &r, nil
}

// scanStamps reads the id and timestamps returned by an upsert.
func scanStamps(row scannable, id *int64, createdAt, updatedAt *time.Time) error {
	var c, u string
	if err := row.Scan(id, &c, &u); err != nil {
		return err
	}
	return parseStamps(c, u, createdAt, updatedAt)
}

func parseStamps(c, u string, createdAt, updatedAt *time.Time) error {
	var err error
	if *createdAt, err = parseTime(c); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if *updatedAt, err = parseTime(u); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
