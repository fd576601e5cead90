package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sysid/internal/sweep"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Param     string            `json:"param"`
	Scenario  string            `json:"scenario"`
	Estimator string            `json:"estimator,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Seed      int64             `json:"seed"`
	Elapsed   float64           `json:"elapsed_seconds"`
	Points    int               `json:"points"`
	Statuses  map[string]int    `json:"statuses"`
	Settings  map[string]string `json:"settings,omitempty"`
}

// PointRecord is one row of a stored sweep.
type PointRecord struct {
	Param   float64            `json:"param"`
	Status  string             `json:"status"`
	Metrics map[string]float64 `json:"metrics"`
}

// Records flattens a sweep result into storable rows.
func Records(res *sweep.Result) []PointRecord {
	recs := make([]PointRecord, 0, len(res.Points))
	for _, p := range res.Points {
		rec := PointRecord{Param: p.Param, Status: p.Status.String(), Metrics: map[string]float64{}}
		if p.Outcome != nil {
			for k, v := range p.Outcome.Metrics {
				rec.Metrics[k] = v
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

// SaveSweep writes meta and the points of res under a new run directory and
// returns the run ID. ID, Timestamp, Points and Statuses are filled in.
func (s *Store) SaveSweep(meta RunMetadata, res *sweep.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	recs := Records(res)
	meta.ID = runID
	meta.Timestamp = now
	meta.Elapsed = res.Elapsed.Seconds()
	meta.Points = len(recs)
	meta.Statuses = make(map[string]int)
	for _, r := range recs {
		meta.Statuses[r.Status]++
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writePoints(filepath.Join(runDir, "points.csv"), recs); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func metricNames(recs []PointRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range recs {
		for k := range r.Metrics {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

func writePoints(path string, recs []PointRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := metricNames(recs)
	if err := w.Write(append([]string{"param", "status"}, names...)); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{strconv.FormatFloat(r.Param, 'g', -1, 64), r.Status}
		for _, n := range names {
			v, ok := r.Metrics[n]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadPoints(runID string) ([]PointRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "points.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []PointRecord{}, nil
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: malformed points header %v", runID, header)
	}
	points := make([]PointRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		param, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: param %q: %w", runID, record[0], err)
		}
		p := PointRecord{Param: param, Status: record[1], Metrics: make(map[string]float64)}
		for j := 2; j < len(record) && j < len(header); j++ {
			if record[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %s %q: %w", runID, header[j], record[j], err)
			}
			p.Metrics[header[j]] = v
		}
		points = append(points, p)
	}
	return points, nil
}
