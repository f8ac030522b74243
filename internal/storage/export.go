package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Times       []float64 `json:"times"`
	Compression []float64 `json:"compression"`
}

// ExportJSON writes a run with its full trace as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, compression, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Times: times, Compression: compression})
}
