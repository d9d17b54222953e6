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

	"github.com/google/uuid"

	"github.com/san-kum/blocksim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var stateHeader = []string{
	"tick", "time",
	"px", "py", "pz",
	"qw", "qx", "qy", "qz",
	"fx", "fy", "fz",
	"tx", "ty", "tz",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Name       string  `json:"name"`
	Integrator string  `json:"integrator"`
	Dt         float64 `json:"dt"`
	Ticks      int     `json:"ticks"`
	Blocks     int     `json:"blocks"`
	Mass       float64 `json:"mass"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
	RunInfo
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", info.Name, now.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
		RunInfo:   info,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
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

func writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stateHeader); err != nil {
		return err
	}

	for i, x := range result.States {
		row := make([]string, 0, len(stateHeader))
		row = append(row, strconv.Itoa(i), formatFloat(timeAt(result, i)))
		row = appendFloats(row, x.Position[:]...)
		q := x.Orientation
		row = appendFloats(row, q.W, q.X, q.Y, q.Z)

		// the last state has no loads acting on it yet
		var l dynamo.Loads
		if i < len(result.Loads) {
			l = result.Loads[i]
		}
		row = appendFloats(row, l.Force[:]...)
		row = appendFloats(row, l.Torque[:]...)

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func timeAt(result *dynamo.Result, i int) float64 {
	if i < len(result.Times) {
		return result.Times[i]
	}
	return 0
}

func appendFloats(row []string, vals ...float64) []string {
	for _, v := range vals {
		row = append(row, formatFloat(v))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns all runs, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads back the recorded trajectory.
func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	rows, err := s.readRows(runID)
	if err != nil {
		return nil, nil, err
	}

	states := make([]dynamo.State, len(rows))
	times := make([]float64, len(rows))
	for i, row := range rows {
		states[i], times[i] = row.state, row.time
	}
	return states, times, nil
}

// LoadResult rebuilds a run as the simulator returned it. The final state
// carries no loads and is not counted among Loads.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.readRows(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		States:     make([]dynamo.State, len(rows)),
		Loads:      make([]dynamo.Loads, 0, len(rows)),
		Times:      make([]float64, len(rows)),
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	for i, row := range rows {
		result.States[i], result.Times[i] = row.state, row.time
		if i < meta.Steps {
			result.Loads = append(result.Loads, row.loads)
		}
	}
	return meta, result, nil
}

type stateRow struct {
	time  float64
	state dynamo.State
	loads dynamo.Loads
}

func (s *Store) readRows(runID string) ([]stateRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(stateHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []stateRow{}, nil
	}

	rows := make([]stateRow, 0, len(records)-1)
	for line, record := range records[1:] {
		var v [14]float64
		for k, field := range record[1:] {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, line+2, err)
			}
			v[k] = f
		}
		rows = append(rows, stateRow{
			time: v[0],
			state: dynamo.State{
				Position:    dynamo.Vec3{v[1], v[2], v[3]},
				Orientation: dynamo.Quaternion{W: v[4], X: v[5], Y: v[6], Z: v[7]},
			},
			loads: dynamo.Loads{
				Force:  dynamo.Vec3{v[8], v[9], v[10]},
				Torque: dynamo.Vec3{v[11], v[12], v[13]},
			},
		})
	}
	return rows, nil
}
