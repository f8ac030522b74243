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

	"github.com/san-kum/springlattice/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "compression.csv"
)

// Store archives runs as one directory each: metadata.json plus the
// compression trace as compression.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID             string             `json:"id"`
	Preset         string             `json:"preset,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	Size           int                `json:"size"`
	Spacing        float64            `json:"spacing"`
	SpringConstant float64            `json:"spring_constant"`
	StepRate       float64            `json:"step_rate"`
	Damping        float64            `json:"damping"`
	Duration       float64            `json:"duration"`
	Integrator     string             `json:"integrator"`
	Workers        int                `json:"workers"`
	Steps          int                `json:"steps"`
	Metrics        map[string]float64 `json:"metrics"`
}

// NewRunMetadata fills the physical parameters from cfg.
func NewRunMetadata(cfg dynamo.Config, integrator string, duration float64) RunMetadata {
	return RunMetadata{
		Size:           cfg.Size,
		Spacing:        cfg.Spacing,
		SpringConstant: cfg.SpringConstant,
		StepRate:       cfg.StepRate,
		Damping:        cfg.Damping,
		Duration:       duration,
		Integrator:     integrator,
		Workers:        cfg.Workers,
	}
}

// Save writes meta and the trace of result. ID and Timestamp are assigned
// here; the new run ID is returned.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("lattice%d_%d", meta.Size, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "compression"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Compression[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrace reads the compression trace of a run.
func (s *Store) LoadTrace(runID string) (times, compression []float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times = make([]float64, 0, len(records)-1)
	compression = make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		c, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		times = append(times, t)
		compression = append(compression, c)
	}
	return times, compression, nil
}
