// Package catalog loads station and link seed files into the store.
//
// Seed files are JSON or YAML. A stations file is a list of
// {id, shortName, longName}; a distances file is a list of networks, each
// {name, distances: [{parent, child, distance}]}.
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/store"
)

// StationRecord is one entry of a stations seed file.
type StationRecord struct {
	ID        int64  `json:"id" yaml:"id"`
	ShortName string `json:"shortName" yaml:"shortName"`
	LongName  string `json:"longName" yaml:"longName"`
}

// NetworkRecord groups the links of one named network.
type NetworkRecord struct {
	Name      string           `json:"name" yaml:"name"`
	Distances []DistanceRecord `json:"distances" yaml:"distances"`
}

// DistanceRecord is one link of a network.
type DistanceRecord struct {
	Parent   string  `json:"parent" yaml:"parent"`
	Child    string  `json:"child" yaml:"child"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Result summarises a seeding run.
type Result struct {
	Stations int `json:"stations"`
	Links    int `json:"links"`
	// Unresolved counts link endpoints with no matching station.
	Unresolved int `json:"unresolved"`
}

// DecodeStations reads a stations seed document in JSON or YAML.
func DecodeStations(r io.Reader) ([]StationRecord, error) {
	var out []StationRecord
	if err := decode(r, &out); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	return out, nil
}

// DecodeNetworks reads a distances seed document.
func DecodeNetworks(r io.Reader) ([]NetworkRecord, error) {
	var out []NetworkRecord
	if err := decode(r, &out); err != nil {
		return nil, fmt.Errorf("decode distances: %w", err)
	}
	return out, nil
}

// decode sniffs the document: JSON arrays and objects go through
// encoding/json, anything else through yaml.v3. Tab-indented JSON is not
// valid YAML, so JSON cannot simply be fed to the YAML decoder.
func decode(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		return json.Unmarshal(trimmed, v)
	}
	return yaml.Unmarshal(trimmed, v)
}

// ReadStationsFile opens and decodes a stations seed file.
func ReadStationsFile(path string) ([]StationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeStations(f)
}

// ReadNetworksFile opens and decodes a distances seed file.
func ReadNetworksFile(path string) ([]NetworkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeNetworks(f)
}

// Seed upserts stations by ID and links by (network, parent, child) in one
// transaction. Stations are written first so that link endpoints can be
// resolved to station IDs; an endpoint with no station keeps a nil ID.
// Any invalid link aborts the whole run.
func Seed(ctx context.Context, s store.Store, stations []StationRecord, networks []NetworkRecord) (Result, error) {
	var res Result
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		res = Result{}
		for i, rec := range stations {
			if rec.ShortName == "" {
				return fmt.Errorf("station %d: shortName is required", i)
			}
			st := &model.Station{ID: rec.ID, ShortName: rec.ShortName, LongName: rec.LongName}
			if err := tx.UpsertStation(ctx, st); err != nil {
				return fmt.Errorf("upsert station %s: %w", rec.ShortName, err)
			}
			res.Stations++
		}

		for _, network := range networks {
			for i, rec := range network.Distances {
				link := &model.Link{
					Network:  network.Name,
					Parent:   rec.Parent,
					Child:    rec.Child,
					Distance: rec.Distance,
				}
				if err := model.ValidateLink(link); err != nil {
					return fmt.Errorf("network %q link %d: %w", network.Name, i, err)
				}

				var err error
				if link.ParentStationID, err = resolve(ctx, tx, rec.Parent); err != nil {
					return err
				}
				if link.ChildStationID, err = resolve(ctx, tx, rec.Child); err != nil {
					return err
				}
				if link.ParentStationID == nil {
					res.Unresolved++
				}
				if link.ChildStationID == nil {
					res.Unresolved++
				}

				if err := tx.UpsertLink(ctx, link); err != nil {
					return fmt.Errorf("upsert link %s-%s: %w", rec.Parent, rec.Child, err)
				}
				res.Links++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	slog.Info("catalog seeded", "stations", res.Stations, "links", res.Links, "unresolved", res.Unresolved)
	return res, nil
}

func resolve(ctx context.Context, tx store.Store, shortName string) (*int64, error) {
	st, err := tx.GetStationByShortName(ctx, shortName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve station %s: %w", shortName, err)
	}
	id := st.ID
	return &id, nil
}
