// Package export renders entity listings for operator tooling, either as
// JSON with full snapshots or as flat CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/core/model"
)

// Record is one listing row for a tracked entity. LastSeen is the timestamp
// of the snapshot that produced it, zero when the snapshot carries none.
type Record struct {
	Class    string    `json:"class"`
	EntityID string    `json:"entity_id"`
	LastSeen time.Time `json:"last_seen"`
	Snapshot any       `json:"snapshot,omitempty"`
}

// Records flattens coordinator entities into listing rows.
func Records(entities []coordinator.Entity) []Record {
	out := make([]Record, 0, len(entities))
	for _, e := range entities {
		rec := Record{Class: e.Class.String(), EntityID: e.ID, Snapshot: e.Snapshot}
		switch s := e.Snapshot.(type) {
		case model.CAM:
			rec.LastSeen = s.Timestamp.Time
		case model.V2I:
			rec.LastSeen = s.Timestamp.Time
		}
		out = append(out, rec)
	}
	return out
}

// WriteJSON writes the entity listing to w in JSON format.
func WriteJSON(w io.Writer, entities []coordinator.Entity) error {
	enc := json.NewEncoder(w)
	return enc.Encode(Records(entities))
}

// WriteCSV writes the entity listing to w in CSV format. Snapshots are not
// flattened into columns; the row carries class, identifier and last seen.
func WriteCSV(w io.Writer, entities []coordinator.Entity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"class", "entity_id", "last_seen"}); err != nil {
		return err
	}
	for _, rec := range Records(entities) {
		seen := ""
		if !rec.LastSeen.IsZero() {
			seen = rec.LastSeen.Format(time.RFC3339)
		}
		if err := cw.Write([]string{rec.Class, rec.EntityID, seen}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
