package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "states.csv"
)

var csvHeader = []string{"time", "mx", "my", "mz", "sx", "sy"}

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (s *Store) WithLogger(l *slog.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ParamsMetadata struct {
	M0            float64 `json:"m0"`
	T1            float64 `json:"t1"`
	T2            float64 `json:"t2"`
	FrequencyHz   float64 `json:"frequency_hz"`
	Phi0          float64 `json:"phi0"`
	THold         float64 `json:"t_hold"`
	Handedness    string  `json:"handedness"`
	PulseDuration float64 `json:"pulse_duration"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Params    ParamsMetadata     `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// BlochParams rebuilds the physics parameters a run was recorded with.
func (m *RunMetadata) BlochParams() (bloch.Params, error) {
	h, err := bloch.ParseHandedness(m.Params.Handedness)
	if err != nil {
		return bloch.Params{}, err
	}
	return bloch.Params{
		M0:            m.Params.M0,
		T1:            m.Params.T1,
		T2:            m.Params.T2,
		Omega0:        2 * math.Pi * m.Params.FrequencyHz,
		Phi0:          m.Params.Phi0,
		THold:         m.Params.THold,
		Handedness:    h,
		PulseDuration: m.Params.PulseDuration,
	}, nil
}

// Samples is the column view of states.csv.
type Samples struct {
	Times []float64
	Mx    []float64
	My    []float64
	Mz    []float64
	Sx    []float64
	Sy    []float64
}

func (s *Samples) Len() int { return len(s.Times) }

func newRunID(preset string) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%s_%s", preset, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes a run directory holding metadata.json and states.csv and
// returns the run id.
func (s *Store) Save(preset string, cfg sim.Config, result *sim.Result) (string, error) {
	runID := newRunID(preset)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	p := result.Params
	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.StepsTaken,
		Params: ParamsMetadata{
			M0:            p.M0,
			T1:            p.T1,
			T2:            p.T2,
			FrequencyHz:   p.Frequency(),
			Phi0:          p.Phi0,
			THold:         p.THold,
			Handedness:    p.Handedness.String(),
			PulseDuration: p.PulseDuration,
		},
		Metrics: result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	s.logger.Info("run saved", "id", runID, "dir", runDir, "samples", len(result.Times))
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

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSamples(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i := range result.Times {
		m := bloch.FromState(result.States[i])
		sig := result.Signals[i]
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(m.X), formatFloat(m.Y), formatFloat(m.Z),
			formatFloat(sig.Sx), formatFloat(sig.Sy),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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
			s.logger.Debug("skipping unreadable run", "dir", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) (*Samples, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s samples: %w", runID, err)
	}

	out := &Samples{}
	if len(records) < 2 {
		return out, nil
	}

	cols := []*[]float64{&out.Times, &out.Mx, &out.My, &out.Mz, &out.Sx, &out.Sy}
	for _, c := range cols {
		*c = make([]float64, 0, len(records)-1)
	}
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", runID, i+1, csvHeader[j], err)
			}
			*cols[j] = append(*cols[j], v)
		}
	}
	return out, nil
}
