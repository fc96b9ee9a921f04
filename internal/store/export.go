package store

import (
	"encoding/json"
	"io"
	"os"
)

// Solution is the serialized result of one solve.
type Solution struct {
	Problem    string             `json:"problem"`
	Horizon    int                `json:"horizon"`
	Dt         float64            `json:"dt"`
	Iterations int                `json:"iterations"`
	Converged  bool               `json:"converged"`
	Cost       float64            `json:"cost"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes the solution to path, creating or truncating the file.
func ExportJSON(path string, sol *Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, sol)
}

// ExportJSONTo streams the solution to an arbitrary writer.
func ExportJSONTo(w io.Writer, sol *Solution) error {
	return writeJSON(w, sol)
}

func writeJSON(w io.Writer, sol *Solution) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sol)
}

// LoadJSON reads a solution back, for inspection or warm starting.
func LoadJSON(path string) (*Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sol := &Solution{}
	if err := json.Unmarshal(data, sol); err != nil {
		return nil, err
	}
	return sol, nil
}
