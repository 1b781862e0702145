// Package storage keeps finished runs on disk, one directory per run holding
// metadata.json, config.yaml and telemetry.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/sailsim/internal/config"
	"github.com/san-kum/sailsim/internal/sim"
	"github.com/san-kum/sailsim/internal/telemetry"
)

const (
	metadataFile  = "metadata.json"
	configFile    = "config.yaml"
	telemetryFile = "telemetry.csv"
)

// ErrRunNotFound is returned when a run ID has no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Frames      int                `json:"frames"`
	Substeps    int                `json:"substeps"`
	Backend     string             `json:"backend"`
	Workers     int                `json:"workers"`
	Particles   int                `json:"particles"`
	Bonds       int                `json:"bonds"`
	Ticks       uint64             `json:"ticks"`
	Broken      int                `json:"broken"`
	ActiveBonds int                `json:"active_bonds"`
	ElapsedSec  float64            `json:"elapsed_sec"`
	Metrics     map[string]float64 `json:"metrics"`
	Summary     telemetry.Summary  `json:"summary"`
}

// Run is everything Save persists about a finished run.
type Run struct {
	Preset    string
	Config    *config.Config
	Result    *sim.Result
	Particles int
	Bonds     int
	Records   []telemetry.Record
}

// Save writes the run into a fresh directory and returns its ID.
func (s *Store) Save(run Run) (string, error) {
	if run.Config == nil || run.Result == nil {
		return "", fmt.Errorf("storage: run needs a config and a result")
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	ts := s.now()
	runID, runDir, err := s.allocate(run.Config.Scenario, ts)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    run.Config.Scenario,
		Preset:      run.Preset,
		Timestamp:   ts,
		Seed:        run.Config.Scene.Seed,
		Dt:          float64(run.Config.Tick.Dt),
		Frames:      run.Config.Frames,
		Substeps:    run.Config.Substeps,
		Backend:     run.Config.Backend,
		Workers:     run.Config.Workers,
		Particles:   run.Particles,
		Bonds:       run.Bonds,
		Ticks:       run.Result.Ticks,
		Broken:      run.Result.Broken,
		ActiveBonds: run.Result.ActiveBonds,
		ElapsedSec:  run.Result.Elapsed.Seconds(),
		Metrics:     run.Result.Metrics,
		Summary:     telemetry.Summarize(run.Records),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := run.Config.WriteYAML(filepath.Join(runDir, configFile)); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, telemetryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := telemetry.NewCSVWriter(csvFile).Write(run.Records...); err != nil {
		return "", err
	}

	return runID, nil
}

// allocate creates a run directory named after the scenario and time,
// adding a suffix when two runs land on the same millisecond.
func (s *Store) allocate(scenario string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", scenario, ts.UnixMilli())
	for n := 0; n < 100; n++ {
		id := base
		if n > 0 {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("storage: could not allocate a directory for %s", base)
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

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads back the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path := filepath.Join(s.baseDir, runID, configFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return config.Load(path)
}

func (s *Store) LoadTelemetry(runID string) ([]telemetry.Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []telemetry.Record{}, nil
	}
	return telemetry.ReadCSV(f)
}
