package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Points []ExportPoint `json:"points"`
}

type ExportPoint struct {
	Param   float64           `json:"param"`
	Status  string            `json:"status"`
	Metrics map[string]Number `json:"metrics"`
}

// Number is a metric value that encodes infinities and NaN as the strings
// "+Inf", "-Inf" and "NaN", which JSON numbers cannot hold.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// ExportJSON writes a stored run and its points to w as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	points, err := s.LoadPoints(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Points: make([]ExportPoint, len(points))}
	for i, p := range points {
		metrics := make(map[string]Number, len(p.Metrics))
		for k, v := range p.Metrics {
			metrics[k] = Number(v)
		}
		data.Points[i] = ExportPoint{Param: p.Param, Status: p.Status, Metrics: metrics}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
