// Defines the scenario model for a simulation run: operations, schedule,
// demands, and optional breakdown rules. CheckFields performs the
// construction-time range checks; cross-field consistency lives in validate.go.

package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// VariabilityMode selects how per-piece processing time varies around SAM.
type VariabilityMode string

const (
	// VariabilityDeterministic disables variability: every piece takes the
	// adjusted SAM exactly.
	VariabilityDeterministic VariabilityMode = "deterministic"
	// VariabilityTriangular draws a symmetric triangular factor in
	// [-10%, +10%] with mode 0 per piece.
	VariabilityTriangular VariabilityMode = "triangular"
)

// Mode selects how per-product volume is derived.
type Mode string

const (
	// ModeDemandDriven takes quantities directly from each product's Demand.
	ModeDemandDriven Mode = "demand-driven"
	// ModeMixDriven splits TotalDemand across products by mix_share_pct.
	ModeMixDriven Mode = "mix-driven"
)

// Operation is one manufacturing step for one product. Many operations may
// name the same machine_tool; their operator counts pool into one shared
// resource for the run.
type Operation struct {
	Product     string          `yaml:"product" json:"product"`
	Step        int             `yaml:"step" json:"step"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	MachineTool string          `yaml:"machine_tool" json:"machine_tool"`
	SAMMin      float64         `yaml:"sam_min" json:"sam_min"`
	Operators   int             `yaml:"operators" json:"operators"`
	Variability VariabilityMode `yaml:"variability" json:"variability"`
	ReworkPct   float64         `yaml:"rework_pct" json:"rework_pct"`
	GradePct    float64         `yaml:"grade_pct" json:"grade_pct"`
	FPDPct      float64         `yaml:"fpd_pct" json:"fpd_pct"`
}

// AdjustedSAM is the deterministic per-piece time with grade and FPD
// penalties applied but no variability. Used by the theoretical-capacity
// pre-check; the engine applies the same formula plus the sampled
// variability factor.
func (o Operation) AdjustedSAM() float64 {
	return o.SAMMin * (1 + o.FPDPct/100 + (100-o.GradePct)/100)
}

// Schedule is the shift configuration for the line.
type Schedule struct {
	ShiftsEnabled        int        `yaml:"shifts_enabled" json:"shifts_enabled"`
	ShiftHours           [3]float64 `yaml:"shift_hours,flow" json:"shift_hours"`
	WorkDays             int        `yaml:"work_days" json:"work_days"`
	OvertimeEnabled      bool       `yaml:"overtime_enabled" json:"overtime_enabled"`
	WeekdayOvertimeHours float64    `yaml:"weekday_overtime_hours" json:"weekday_overtime_hours"`
}

// DailyPlannedHours sums the hours of the enabled shifts only.
func (s Schedule) DailyPlannedHours() float64 {
	var total float64
	for i := 0; i < s.ShiftsEnabled && i < len(s.ShiftHours); i++ {
		total += s.ShiftHours[i]
	}
	return total
}

// WeeklyBaseHours is DailyPlannedHours scaled by the working days per week.
func (s Schedule) WeeklyBaseHours() float64 {
	return s.DailyPlannedHours() * float64(s.WorkDays)
}

// MaxShiftHours returns the largest enabled single-shift duration.
func (s Schedule) MaxShiftHours() float64 {
	var longest float64
	for i := 0; i < s.ShiftsEnabled && i < len(s.ShiftHours); i++ {
		if s.ShiftHours[i] > longest {
			longest = s.ShiftHours[i]
		}
	}
	return longest
}

// Demand is the per-product target output. DailyQty and WeeklyQty are
// pointers so "not given" is distinguishable from an explicit zero; when both
// are set the weekly value wins (the validator cross-checks them).
type Demand struct {
	Product     string   `yaml:"product" json:"product"`
	BundleSize  int      `yaml:"bundle_size" json:"bundle_size"`
	DailyQty    *float64 `yaml:"daily_qty,omitempty" json:"daily_qty,omitempty"`
	WeeklyQty   *float64 `yaml:"weekly_qty,omitempty" json:"weekly_qty,omitempty"`
	MixSharePct float64  `yaml:"mix_share_pct" json:"mix_share_pct"`
}

// Breakdown is an optional per-machine-tool unreliability rule. The engine
// currently assumes perfect equipment reliability (see the assumption log);
// the rule is still validated referentially.
type Breakdown struct {
	MachineTool  string  `yaml:"machine_tool" json:"machine_tool"`
	BreakdownPct float64 `yaml:"breakdown_pct" json:"breakdown_pct"`
}

// SimulationConfig is the aggregate root for one run request. It is never
// mutated after validation begins and is discarded after the run completes.
type SimulationConfig struct {
	Mode        Mode        `yaml:"mode" json:"mode"`
	HorizonDays int         `yaml:"horizon_days" json:"horizon_days"`
	TotalDemand *float64    `yaml:"total_demand,omitempty" json:"total_demand,omitempty"`
	Schedule    Schedule    `yaml:"schedule" json:"schedule"`
	Operations  []Operation `yaml:"operations" json:"operations"`
	Demands     []Demand    `yaml:"demands" json:"demands"`
	Breakdowns  []Breakdown `yaml:"breakdowns,omitempty" json:"breakdowns,omitempty"`
}

func pctInRange(v float64) bool { return v >= 0 && v <= 100 }

// CheckFields rejects a scenario whose individual fields violate their
// numeric range or type constraints. All violations are collected and
// reported together; relationships between valid fields are the domain
// validator's job.
func (c *SimulationConfig) CheckFields() error {
	var errs []error

	switch c.Mode {
	case ModeDemandDriven, ModeMixDriven:
	default:
		errs = append(errs, fmt.Errorf("mode: must be %q or %q, got %q", ModeDemandDriven, ModeMixDriven, c.Mode))
	}
	if c.HorizonDays < 1 {
		errs = append(errs, fmt.Errorf("horizon_days: must be >= 1, got %d", c.HorizonDays))
	}
	if c.TotalDemand != nil && *c.TotalDemand < 0 {
		errs = append(errs, fmt.Errorf("total_demand: must be >= 0, got %v", *c.TotalDemand))
	}

	if len(c.Operations) == 0 {
		errs = append(errs, errors.New("operations: at least one operation is required"))
	}
	for i, op := range c.Operations {
		at := fmt.Sprintf("operations[%d]", i)
		if op.Product == "" {
			errs = append(errs, fmt.Errorf("%s.product: must not be empty", at))
		}
		if op.Step < 1 {
			errs = append(errs, fmt.Errorf("%s.step: must be a positive integer, got %d", at, op.Step))
		}
		if op.MachineTool == "" {
			errs = append(errs, fmt.Errorf("%s.machine_tool: must not be empty", at))
		}
		if op.SAMMin <= 0 {
			errs = append(errs, fmt.Errorf("%s.sam_min: must be > 0, got %v", at, op.SAMMin))
		}
		if op.Operators < 1 {
			errs = append(errs, fmt.Errorf("%s.operators: must be >= 1, got %d", at, op.Operators))
		}
		switch op.Variability {
		case VariabilityDeterministic, VariabilityTriangular:
		default:
			errs = append(errs, fmt.Errorf("%s.variability: must be %q or %q, got %q",
				at, VariabilityDeterministic, VariabilityTriangular, op.Variability))
		}
		if !pctInRange(op.ReworkPct) {
			errs = append(errs, fmt.Errorf("%s.rework_pct: must be in [0,100], got %v", at, op.ReworkPct))
		}
		if !pctInRange(op.GradePct) {
			errs = append(errs, fmt.Errorf("%s.grade_pct: must be in [0,100], got %v", at, op.GradePct))
		}
		if !pctInRange(op.FPDPct) {
			errs = append(errs, fmt.Errorf("%s.fpd_pct: must be in [0,100], got %v", at, op.FPDPct))
		}
	}

	s := c.Schedule
	if s.ShiftsEnabled < 1 || s.ShiftsEnabled > 3 {
		errs = append(errs, fmt.Errorf("schedule.shifts_enabled: must be in 1-3, got %d", s.ShiftsEnabled))
	} else {
		for i := 0; i < s.ShiftsEnabled; i++ {
			if s.ShiftHours[i] <= 0 || s.ShiftHours[i] > 24 {
				errs = append(errs, fmt.Errorf("schedule.shift_hours[%d]: enabled shift must be in (0,24], got %v", i, s.ShiftHours[i]))
			}
		}
		if s.DailyPlannedHours() > 24 {
			errs = append(errs, fmt.Errorf("schedule.shift_hours: total planned hours must not exceed 24, got %v", s.DailyPlannedHours()))
		}
	}
	if s.WorkDays < 1 || s.WorkDays > 7 {
		errs = append(errs, fmt.Errorf("schedule.work_days: must be in 1-7, got %d", s.WorkDays))
	}
	if s.WeekdayOvertimeHours < 0 {
		errs = append(errs, fmt.Errorf("schedule.weekday_overtime_hours: must be >= 0, got %v", s.WeekdayOvertimeHours))
	}

	if len(c.Demands) == 0 {
		errs = append(errs, errors.New("demands: at least one demand is required"))
	}
	seen := make(map[string]bool, len(c.Demands))
	for i, d := range c.Demands {
		at := fmt.Sprintf("demands[%d]", i)
		if d.Product == "" {
			errs = append(errs, fmt.Errorf("%s.product: must not be empty", at))
		}
		if seen[d.Product] {
			errs = append(errs, fmt.Errorf("%s.product: duplicate demand for product %q, exactly one allowed", at, d.Product))
		}
		seen[d.Product] = true
		if d.BundleSize < 1 {
			errs = append(errs, fmt.Errorf("%s.bundle_size: must be >= 1, got %d", at, d.BundleSize))
		}
		if d.DailyQty != nil && *d.DailyQty < 0 {
			errs = append(errs, fmt.Errorf("%s.daily_qty: must be >= 0, got %v", at, *d.DailyQty))
		}
		if d.WeeklyQty != nil && *d.WeeklyQty < 0 {
			errs = append(errs, fmt.Errorf("%s.weekly_qty: must be >= 0, got %v", at, *d.WeeklyQty))
		}
		if !pctInRange(d.MixSharePct) {
			errs = append(errs, fmt.Errorf("%s.mix_share_pct: must be in [0,100], got %v", at, d.MixSharePct))
		}
		if c.Mode == ModeDemandDriven && d.DailyQty == nil && d.WeeklyQty == nil {
			errs = append(errs, fmt.Errorf("%s: either daily_qty or weekly_qty is required in demand-driven mode", at))
		}
	}

	for i, b := range c.Breakdowns {
		at := fmt.Sprintf("breakdowns[%d]", i)
		if b.MachineTool == "" {
			errs = append(errs, fmt.Errorf("%s.machine_tool: must not be empty", at))
		}
		if !pctInRange(b.BreakdownPct) {
			errs = append(errs, fmt.Errorf("%s.breakdown_pct: must be in [0,100], got %v", at, b.BreakdownPct))
		}
	}

	return errors.Join(errs...)
}

// Products returns the distinct product names in first-appearance order
// across Operations, then Demands. The stable order keeps runs and reports
// deterministic.
func (c *SimulationConfig) Products() []string {
	var out []string
	seen := make(map[string]bool)
	for _, op := range c.Operations {
		if !seen[op.Product] {
			seen[op.Product] = true
			out = append(out, op.Product)
		}
	}
	for _, d := range c.Demands {
		if !seen[d.Product] {
			seen[d.Product] = true
			out = append(out, d.Product)
		}
	}
	return out
}

// OperationsByProduct groups operations per product, sorted by step
// ascending. Input order between equal steps is preserved (a duplicate step
// is a validation error anyway).
func (c *SimulationConfig) OperationsByProduct() map[string][]Operation {
	routes := make(map[string][]Operation)
	for _, op := range c.Operations {
		routes[op.Product] = append(routes[op.Product], op)
	}
	for product := range routes {
		route := routes[product]
		sort.SliceStable(route, func(i, j int) bool { return route[i].Step < route[j].Step })
		routes[product] = route
	}
	return routes
}

// MachineGroups sums operator counts per distinct machine_tool name. The sum
// becomes that resource's concurrent-service capacity for the run.
func (c *SimulationConfig) MachineGroups() map[string]int {
	groups := make(map[string]int)
	for _, op := range c.Operations {
		groups[op.MachineTool] += op.Operators
	}
	return groups
}

// DemandFor returns the demand entry for a product, if any.
func (c *SimulationConfig) DemandFor(product string) (Demand, bool) {
	for _, d := range c.Demands {
		if d.Product == product {
			return d, true
		}
	}
	return Demand{}, false
}

// DailyDemand resolves a product's target output per day under the
// configured mode. In demand-driven mode the weekly quantity wins when both
// are given; in mix-driven mode the product's share of TotalDemand is used.
// The second return is false when the product has no demand entry.
func (c *SimulationConfig) DailyDemand(product string) (float64, bool) {
	d, ok := c.DemandFor(product)
	if !ok {
		return 0, false
	}
	if c.Mode == ModeMixDriven {
		if c.TotalDemand == nil {
			return 0, true
		}
		return *c.TotalDemand * d.MixSharePct / 100, true
	}
	if d.WeeklyQty != nil {
		return *d.WeeklyQty / float64(c.Schedule.WorkDays), true
	}
	if d.DailyQty != nil {
		return *d.DailyQty, true
	}
	return 0, true
}

// HorizonMinutes is the simulated time window in minutes.
func (c *SimulationConfig) HorizonMinutes() float64 {
	return c.Schedule.DailyPlannedHours() * 60 * float64(c.HorizonDays)
}

// BundleCount is the number of bundles needed to cover a day-scaled demand
// quantity at the given bundle size.
func BundleCount(totalQty float64, bundleSize int) int {
	if totalQty <= 0 || bundleSize < 1 {
		return 0
	}
	return int(math.Ceil(totalQty / float64(bundleSize)))
}
