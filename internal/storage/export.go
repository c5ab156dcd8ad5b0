package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Times   []float64   `json:"times"`
	Mx      []float64   `json:"mx"`
	My      []float64   `json:"my"`
	Mz      []float64   `json:"mz"`
	Sx      []float64   `json:"sx"`
	Sy      []float64   `json:"sy"`
	Samples int         `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples *Samples) error {
	data := ExportData{
		Run:     *meta,
		Times:   samples.Times,
		Mx:      samples.Mx,
		My:      samples.My,
		Mz:      samples.Mz,
		Sx:      samples.Sx,
		Sy:      samples.Sy,
		Samples: samples.Len(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
