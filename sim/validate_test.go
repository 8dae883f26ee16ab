package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func issueMessages(issues []Issue) string {
	var sb strings.Builder
	for _, i := range issues {
		sb.WriteString(i.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestValidate_CleanConfigProceeds(t *testing.T) {
	report := Validate(twoStationConfig())

	assert.True(t, report.CanProceed)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.Products)
	assert.Equal(t, 2, report.Operations)
	assert.Equal(t, 2, report.MachineGroups)
}

func TestValidate_SequenceGap(t *testing.T) {
	// GIVEN a product whose steps are {1, 3}
	cfg := twoStationConfig()
	cfg.Operations[1].Step = 3

	// WHEN validating
	report := Validate(cfg)

	// THEN a sequence error names the product and the missing step
	assert.False(t, report.CanProceed)
	msgs := issueMessages(report.Errors)
	assert.Contains(t, msgs, `"TEST"`)
	assert.Contains(t, msgs, "[2]")
}

func TestValidate_SequenceDuplicate(t *testing.T) {
	// GIVEN a product whose steps are {1, 1, 2}
	cfg := twoStationConfig()
	cfg.Operations = append(cfg.Operations, Operation{
		Product: "TEST", Step: 1, MachineTool: "M3", SAMMin: 1.0, Operators: 1,
		Variability: VariabilityDeterministic, GradePct: 100,
	})

	report := Validate(cfg)

	assert.False(t, report.CanProceed)
	msgs := issueMessages(report.Errors)
	assert.Contains(t, msgs, "duplicated step")
	assert.Contains(t, msgs, `"TEST"`)
}

func TestValidate_ContiguousSequencePasses(t *testing.T) {
	// Steps {1,2,3} and again starting at an offset {4,5,6}.
	cfg := twoStationConfig()
	cfg.Operations = append(cfg.Operations, Operation{
		Product: "TEST", Step: 3, MachineTool: "M3", SAMMin: 1.0, Operators: 1,
		Variability: VariabilityDeterministic, GradePct: 100,
	})
	assert.True(t, Validate(cfg).CanProceed)

	for i := range cfg.Operations {
		cfg.Operations[i].Step += 3
	}
	assert.True(t, Validate(cfg).CanProceed)
}

func TestValidate_DemandWithoutOperations(t *testing.T) {
	cfg := twoStationConfig()
	cfg.Demands = append(cfg.Demands, Demand{Product: "GHOST", BundleSize: 1, DailyQty: floatPtr(5)})

	report := Validate(cfg)

	assert.False(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Errors), `"GHOST"`)
}

func TestValidate_OperationsWithoutDemandWarns(t *testing.T) {
	cfg := twoStationConfig()
	cfg.Operations = append(cfg.Operations, Operation{
		Product: "ORPHAN", Step: 1, MachineTool: "M9", SAMMin: 1.0, Operators: 1,
		Variability: VariabilityDeterministic, GradePct: 100,
	})

	report := Validate(cfg)

	assert.True(t, report.CanProceed, "a missing demand must not block execution")
	assert.Contains(t, issueMessages(report.Warnings), `"ORPHAN"`)
}

func TestValidate_MachineNameNearDuplicate(t *testing.T) {
	// GIVEN two machine names one character apart
	cfg := twoStationConfig()
	cfg.Operations[0].MachineTool = "OVERLOCK"
	cfg.Operations[1].MachineTool = "OVERL0CK"

	report := Validate(cfg)

	assert.True(t, report.CanProceed)
	msgs := issueMessages(report.Warnings)
	assert.Contains(t, msgs, "OVERLOCK")
	assert.Contains(t, msgs, "OVERL0CK")
}

func TestValidate_DistinctMachineNamesNoWarning(t *testing.T) {
	report := Validate(twoStationConfig()) // M1 vs M2: 50% similar

	for _, w := range report.Warnings {
		assert.NotEqual(t, "machine-name-typo", w.Check)
	}
}

func TestValidate_MixShareSum(t *testing.T) {
	mixConfig := func(shares ...float64) *SimulationConfig {
		cfg := twoStationConfig()
		cfg.Mode = ModeMixDriven
		cfg.TotalDemand = floatPtr(100)
		cfg.Demands = nil
		for i, share := range shares {
			product := "TEST"
			if i > 0 {
				product = "ALT"
				cfg.Operations = append(cfg.Operations, Operation{
					Product: product, Step: 1, MachineTool: "M1", SAMMin: 1.0, Operators: 1,
					Variability: VariabilityDeterministic, GradePct: 100,
				})
			}
			cfg.Demands = append(cfg.Demands, Demand{Product: product, BundleSize: 1, MixSharePct: share})
		}
		return cfg
	}

	// Shares {40,40} (sum 80) fail.
	report := Validate(mixConfig(40, 40))
	assert.False(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Errors), "mix shares")

	// Shares {60,40} (sum 100) pass.
	assert.True(t, Validate(mixConfig(60, 40)).CanProceed)
}

func TestValidate_MixModeRequiresTotalDemand(t *testing.T) {
	cfg := twoStationConfig()
	cfg.Mode = ModeMixDriven
	cfg.TotalDemand = nil
	cfg.Demands[0].MixSharePct = 100

	report := Validate(cfg)

	assert.False(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Errors), "total_demand")
}

func TestValidate_DailyWeeklyCrossCheck(t *testing.T) {
	// GIVEN daily 10 x 5 work days = 50 vs weekly 60 (>5% apart)
	cfg := twoStationConfig()
	cfg.Demands[0].WeeklyQty = floatPtr(60)

	report := Validate(cfg)

	// THEN a warning, not an error
	assert.True(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Warnings), "weekly value wins")

	// AND no warning when they agree within 5%
	cfg.Demands[0].WeeklyQty = floatPtr(50)
	report = Validate(cfg)
	for _, w := range report.Warnings {
		assert.NotContains(t, w.Message, "weekly value wins")
	}
}

func TestValidate_OvertimeFeasibility(t *testing.T) {
	cfg := twoStationConfig()
	cfg.Schedule.ShiftHours = [3]float64{14, 0, 0}
	cfg.Schedule.OvertimeEnabled = true
	cfg.Schedule.WeekdayOvertimeHours = 11

	report := Validate(cfg)

	assert.False(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Errors), "exceeds 24 hours")
}

func TestValidate_BreakdownReferentialCheck(t *testing.T) {
	cfg := twoStationConfig()
	cfg.Breakdowns = []Breakdown{{MachineTool: "UNKNOWN", BreakdownPct: 5}}

	report := Validate(cfg)

	// A dangling breakdown is a no-op warning, not an error.
	assert.True(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Warnings), `"UNKNOWN"`)
}

func TestValidate_TheoreticalCapacityWarning(t *testing.T) {
	// GIVEN demand whose ideal workload far exceeds planned hours:
	// 2 min adjusted SAM x 1000/day = 33.3h vs 8h planned.
	cfg := twoStationConfig()
	cfg.Demands[0].DailyQty = floatPtr(1000)

	report := Validate(cfg)

	assert.True(t, report.CanProceed)
	assert.Contains(t, issueMessages(report.Warnings), "may be unachievable")
}

func TestValidate_Idempotent(t *testing.T) {
	// GIVEN a config that produces both errors and warnings
	cfg := twoStationConfig()
	cfg.Operations[1].Step = 3
	cfg.Breakdowns = []Breakdown{{MachineTool: "UNKNOWN", BreakdownPct: 5}}

	// WHEN validating twice without modification
	first := Validate(cfg)
	second := Validate(cfg)

	// THEN the reports are identical
	assert.Equal(t, first, second)
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("SEW", "SEW"))
	assert.Equal(t, 0.0, similarityRatio("AB", "XY"))
	assert.InDelta(t, 0.875, similarityRatio("OVERLOCK", "OVERL0CK"), 1e-9)
}
