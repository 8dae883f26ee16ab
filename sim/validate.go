// Domain validator: cross-field checks that gate simulation execution.
// Every check always runs, even after an earlier one fails, so the caller
// sees the complete picture in one pass.

package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError blocks execution.
	SeverityError Severity = "error"
	// SeverityWarning lets execution proceed but should reach the user.
	SeverityWarning Severity = "warning"
	// SeverityInfo is purely informational.
	SeverityInfo Severity = "info"
)

// Issue is one finding from a validation check.
type Issue struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Message  string   `json:"message"`
}

// ValidationReport is the aggregate result of all domain checks.
type ValidationReport struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Info     []Issue `json:"info"`

	Products      int `json:"products"`
	Operations    int `json:"operations"`
	MachineGroups int `json:"machine_groups"`

	// CanProceed is true iff there are zero errors.
	CanProceed bool `json:"can_proceed"`
}

func (r *ValidationReport) add(sev Severity, check, format string, args ...any) {
	issue := Issue{Severity: sev, Check: check, Message: fmt.Sprintf(format, args...)}
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, issue)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		r.Info = append(r.Info, issue)
	}
}

// similarityRatio is the normalized edit-distance similarity of two names:
// 1.0 for identical strings, 0.0 for entirely different ones.
func similarityRatio(a, b string) float64 {
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// Validate runs the seven domain checks against a field-valid config and
// returns the full report. It never mutates the config and is idempotent.
func Validate(cfg *SimulationConfig) *ValidationReport {
	report := &ValidationReport{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Info:     []Issue{},
	}

	routes := cfg.OperationsByProduct()
	groups := cfg.MachineGroups()
	report.Products = len(cfg.Products())
	report.Operations = len(cfg.Operations)
	report.MachineGroups = len(groups)

	checkSequences(cfg, routes, report)
	checkProductConsistency(cfg, routes, report)
	checkMachineNameTypos(cfg, report)
	checkDemandMode(cfg, report)
	checkScheduleFeasibility(cfg, report)
	checkBreakdownReferences(cfg, groups, report)
	checkTheoreticalCapacity(cfg, routes, report)

	report.CanProceed = len(report.Errors) == 0
	return report
}

// Check 1: per product, steps must be duplicate-free and contiguous.
func checkSequences(cfg *SimulationConfig, routes map[string][]Operation, report *ValidationReport) {
	for _, product := range cfg.Products() {
		route := routes[product]
		if len(route) == 0 {
			continue
		}
		counts := make(map[int]int)
		lowest, highest := route[0].Step, route[0].Step
		for _, op := range route {
			counts[op.Step]++
			if op.Step < lowest {
				lowest = op.Step
			}
			if op.Step > highest {
				highest = op.Step
			}
		}
		var duplicated, missing []int
		for step, n := range counts {
			if n > 1 {
				duplicated = append(duplicated, step)
			}
		}
		for step := lowest; step <= highest; step++ {
			if counts[step] == 0 {
				missing = append(missing, step)
			}
		}
		sort.Ints(duplicated)
		sort.Ints(missing)
		if len(duplicated) > 0 {
			report.add(SeverityError, "sequence-integrity",
				"product %q: duplicated step(s) %v", product, duplicated)
		}
		if len(missing) > 0 {
			report.add(SeverityError, "sequence-integrity",
				"product %q: missing step(s) %v in sequence %d-%d", product, missing, lowest, highest)
		}
	}
}

// Check 2: demands must reference products with operations; products with
// operations but no demand are excluded from the run with a warning.
func checkProductConsistency(cfg *SimulationConfig, routes map[string][]Operation, report *ValidationReport) {
	for _, d := range cfg.Demands {
		if len(routes[d.Product]) == 0 {
			report.add(SeverityError, "product-consistency",
				"demand for product %q has no operations defined", d.Product)
		}
	}
	for _, product := range cfg.Products() {
		if len(routes[product]) == 0 {
			continue
		}
		if _, ok := cfg.DemandFor(product); !ok {
			report.add(SeverityWarning, "product-consistency",
				"product %q has operations but no demand; it is excluded from the run", product)
		}
	}
}

// Check 3: pairwise near-duplicate machine/tool names suggest typos.
func checkMachineNameTypos(cfg *SimulationConfig, report *ValidationReport) {
	usage := make(map[string]int)
	var names []string
	for _, op := range cfg.Operations {
		if usage[op.MachineTool] == 0 {
			names = append(names, op.MachineTool)
		}
		usage[op.MachineTool]++
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			ratio := similarityRatio(names[i], names[j])
			if ratio > 0.8 && ratio < 1.0 {
				report.add(SeverityWarning, "machine-name-typo",
					"machine/tool names %q (%d uses) and %q (%d uses) are %.0f%% similar; possible typo",
					names[i], usage[names[i]], names[j], usage[names[j]], ratio*100)
			}
		}
	}
}

// Check 4: mode-specific demand consistency.
func checkDemandMode(cfg *SimulationConfig, report *ValidationReport) {
	if cfg.Mode == ModeMixDriven {
		var sum float64
		for _, d := range cfg.Demands {
			sum += d.MixSharePct
		}
		if math.Abs(sum-100) > 0.1 {
			report.add(SeverityError, "demand-mode",
				"mix-driven mode: mix shares must sum to 100 (±0.1), got %.2f", sum)
		}
		if cfg.TotalDemand == nil {
			report.add(SeverityError, "demand-mode",
				"mix-driven mode: total_demand is required")
		}
		return
	}
	for _, d := range cfg.Demands {
		if d.DailyQty == nil || d.WeeklyQty == nil {
			continue
		}
		implied := *d.DailyQty * float64(cfg.Schedule.WorkDays)
		if *d.WeeklyQty == 0 {
			if implied != 0 {
				report.add(SeverityWarning, "demand-mode",
					"product %q: daily_qty × work_days = %.1f but weekly_qty = 0; weekly value wins", d.Product, implied)
			}
			continue
		}
		if math.Abs(implied-*d.WeeklyQty)/(*d.WeeklyQty) > 0.05 {
			report.add(SeverityWarning, "demand-mode",
				"product %q: daily_qty × work_days = %.1f disagrees with weekly_qty = %.1f by more than 5%%; weekly value wins",
				d.Product, implied, *d.WeeklyQty)
		}
	}
}

// Check 5: with overtime enabled, the longest shift plus weekday overtime
// must still fit in a day.
func checkScheduleFeasibility(cfg *SimulationConfig, report *ValidationReport) {
	if !cfg.Schedule.OvertimeEnabled {
		return
	}
	total := cfg.Schedule.MaxShiftHours() + cfg.Schedule.WeekdayOvertimeHours
	if total > 24 {
		report.add(SeverityError, "schedule-feasibility",
			"largest shift (%.1fh) plus weekday overtime (%.1fh) exceeds 24 hours",
			cfg.Schedule.MaxShiftHours(), cfg.Schedule.WeekdayOvertimeHours)
	}
}

// Check 6: a breakdown naming a machine absent from all operations is inert.
func checkBreakdownReferences(cfg *SimulationConfig, groups map[string]int, report *ValidationReport) {
	for _, b := range cfg.Breakdowns {
		if _, ok := groups[b.MachineTool]; !ok {
			report.add(SeverityWarning, "breakdown-reference",
				"breakdown rule for machine/tool %q matches no operation; it has no effect", b.MachineTool)
		}
	}
}

// Check 7: deterministic upper-bound sanity check on demand vs planned hours.
func checkTheoreticalCapacity(cfg *SimulationConfig, routes map[string][]Operation, report *ValidationReport) {
	plannedHours := cfg.Schedule.DailyPlannedHours()
	for _, product := range cfg.Products() {
		route := routes[product]
		if len(route) == 0 {
			continue
		}
		daily, ok := cfg.DailyDemand(product)
		if !ok || daily <= 0 {
			continue
		}
		var adjustedSAM float64
		for _, op := range route {
			adjustedSAM += op.AdjustedSAM()
		}
		hoursNeeded := adjustedSAM * daily / 60
		if hoursNeeded > plannedHours*1.10 {
			report.add(SeverityWarning, "theoretical-capacity",
				"product %q: ideal-conditions workload of %.1fh/day exceeds planned %.1fh/day by more than 10%%; demand may be unachievable",
				product, hoursNeeded, plannedHours)
		}
	}
}
