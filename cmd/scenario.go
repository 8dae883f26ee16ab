// Loads a YAML scenario file into a sim.SimulationConfig, applying the
// documented defaults for omitted fields (variability defaults to
// deterministic, grade_pct to 100).

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stitchsim/stitchsim/sim"
)

// operationSpec mirrors sim.Operation with pointer fields where an omitted
// value must be distinguishable from an explicit zero.
type operationSpec struct {
	Product     string   `yaml:"product"`
	Step        int      `yaml:"step"`
	Description string   `yaml:"description"`
	MachineTool string   `yaml:"machine_tool"`
	SAMMin      float64  `yaml:"sam_min"`
	Operators   int      `yaml:"operators"`
	Variability string   `yaml:"variability"`
	ReworkPct   float64  `yaml:"rework_pct"`
	GradePct    *float64 `yaml:"grade_pct"`
	FPDPct      float64  `yaml:"fpd_pct"`
}

// scenarioFile is the on-disk shape of a scenario.
type scenarioFile struct {
	Mode        string          `yaml:"mode"`
	HorizonDays int             `yaml:"horizon_days"`
	TotalDemand *float64        `yaml:"total_demand"`
	Schedule    sim.Schedule    `yaml:"schedule"`
	Operations  []operationSpec `yaml:"operations"`
	Demands     []sim.Demand    `yaml:"demands"`
	Breakdowns  []sim.Breakdown `yaml:"breakdowns"`
}

// LoadScenario reads and decodes a scenario file. Field-range checking is
// left to sim.Execute; unknown YAML keys are rejected here so typos surface
// early.
func LoadScenario(path string) (*sim.SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file scenarioFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	mode := sim.Mode(file.Mode)
	if file.Mode == "" {
		mode = sim.ModeDemandDriven
	}
	if file.HorizonDays == 0 {
		file.HorizonDays = 1
	}

	cfg := &sim.SimulationConfig{
		Mode:        mode,
		HorizonDays: file.HorizonDays,
		TotalDemand: file.TotalDemand,
		Schedule:    file.Schedule,
		Demands:     file.Demands,
		Breakdowns:  file.Breakdowns,
	}
	for _, spec := range file.Operations {
		op := sim.Operation{
			Product:     spec.Product,
			Step:        spec.Step,
			Description: spec.Description,
			MachineTool: spec.MachineTool,
			SAMMin:      spec.SAMMin,
			Operators:   spec.Operators,
			Variability: sim.VariabilityMode(spec.Variability),
			ReworkPct:   spec.ReworkPct,
			GradePct:    100,
			FPDPct:      spec.FPDPct,
		}
		if spec.Variability == "" {
			op.Variability = sim.VariabilityDeterministic
		}
		if spec.GradePct != nil {
			op.GradePct = *spec.GradePct
		}
		cfg.Operations = append(cfg.Operations, op)
	}
	return cfg, nil
}
