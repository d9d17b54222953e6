package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/blocksim/internal/dynamo"
)

type ExportData struct {
	RunInfo
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Positions   [][3]float64       `json:"positions"`
	Orientation [][4]float64       `json:"orientations"`
	Forces      [][3]float64       `json:"forces"`
	Torques     [][3]float64       `json:"torques"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(info RunInfo, result *dynamo.Result) ExportData {
	data := ExportData{
		RunInfo:     info,
		Steps:       result.StepsTaken,
		Times:       result.Times,
		Positions:   make([][3]float64, len(result.States)),
		Orientation: make([][4]float64, len(result.States)),
		Forces:      make([][3]float64, len(result.Loads)),
		Torques:     make([][3]float64, len(result.Loads)),
		Metrics:     result.Metrics,
	}

	for i, x := range result.States {
		q := x.Orientation
		data.Positions[i] = x.Position
		data.Orientation[i] = [4]float64{q.W, q.X, q.Y, q.Z}
	}
	for i, l := range result.Loads {
		data.Forces[i] = l.Force
		data.Torques[i] = l.Torque
	}
	return data
}

// ExportJSON writes the run as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *dynamo.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(info, result))
}
