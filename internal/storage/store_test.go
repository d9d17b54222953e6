package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/blocksim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			dynamo.NewState(dynamo.Vec3{}),
			{Position: dynamo.Vec3{0.1, 0, 0}, Orientation: dynamo.Quaternion{W: 0.8, Z: 0.6}},
		},
		Loads: []dynamo.Loads{
			{Force: dynamo.Vec3{5, 0, 0}, Torque: dynamo.Vec3{0, 0, -1}, Mass: 5},
		},
		Times:      []float64{0.0, 0.1},
		Metrics:    map[string]float64{"norm_drift": 1e-16},
		StepsTaken: 1,
	}
}

var info = RunInfo{Name: "line5", Integrator: "euler", Dt: 0.1, Ticks: 1, Blocks: 5, Mass: 5}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "line5" || meta.Blocks != 5 || meta.Steps != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["norm_drift"] != 1e-16 {
		t.Errorf("expected norm_drift 1e-16, got %g", meta.Metrics["norm_drift"])
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 states, got %d/%d", len(states), len(times))
	}
	if states[1] != sampleResult().States[1] {
		t.Errorf("state not round-tripped exactly: %v", states[1])
	}
	if times[1] != 0.1 {
		t.Errorf("expected t=0.1, got %g", times[1])
	}
}

func TestStoreLoadResult(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, result, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %s, got %s", runID, meta.ID)
	}
	if len(result.States) != 2 || len(result.Loads) != 1 {
		t.Fatalf("expected 2 states and 1 load, got %d/%d", len(result.States), len(result.Loads))
	}
	want := sampleResult().Loads[0]
	if result.Loads[0].Force != want.Force || result.Loads[0].Torque != want.Torque {
		t.Errorf("loads not round-tripped: %+v", result.Loads[0])
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	a, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("run ids collide: %s", a)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(info, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, statesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, info, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Name != "line5" || len(data.Positions) != 2 || len(data.Forces) != 1 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Orientation[1] != [4]float64{0.8, 0, 0, 0.6} {
		t.Errorf("orientation lost: %v", data.Orientation[1])
	}
}
