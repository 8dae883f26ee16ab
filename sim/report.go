// Output aggregator: transforms the raw Metrics of a finished run into the
// eight decision-support report blocks.

package sim

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Coverage status thresholds (percent).
const (
	coverageOKPct    = 110
	coverageTightPct = 90
)

// Station classification thresholds (percent utilization).
const (
	bottleneckUtilPct = 95 // inclusive
	donorUtilPct      = 70 // inclusive, requires >1 operator
)

// CoverageStatus classifies capacity against demand.
type CoverageStatus string

const (
	StatusOK        CoverageStatus = "OK"        // coverage >= 110%
	StatusTight     CoverageStatus = "Tight"     // 90% <= coverage < 110%
	StatusShortfall CoverageStatus = "Shortfall" // coverage < 90%
)

func coverageStatus(pct float64) CoverageStatus {
	switch {
	case pct >= coverageOKPct:
		return StatusOK
	case pct >= coverageTightPct:
		return StatusTight
	default:
		return StatusShortfall
	}
}

// ProductCapacity is block 1: weekly demand vs. capacity for one product.
type ProductCapacity struct {
	Product        string         `json:"product"`
	WeeklyDemand   float64        `json:"weekly_demand"`
	WeeklyCapacity float64        `json:"weekly_capacity"`
	CoveragePct    float64        `json:"coverage_pct"`
	Status         CoverageStatus `json:"status"`
}

// DailySummary is block 2: line-wide daily aggregates.
type DailySummary struct {
	ThroughputPerDay float64 `json:"throughput_per_day"`
	DemandPerDay     float64 `json:"demand_per_day"`
	CoveragePct      float64 `json:"coverage_pct"`
	MeanCycleTimeMin float64 `json:"mean_cycle_time_min"`
	MeanWIP          float64 `json:"mean_wip"`
	BundlesPerDay    float64 `json:"bundles_per_day"`
	BundleSize       string  `json:"bundle_size"` // single value, or "mixed"
}

// StationPerformance is block 3: one row per operation.
type StationPerformance struct {
	Product          string  `json:"product"`
	Step             int     `json:"step"`
	Description      string  `json:"description,omitempty"`
	MachineTool      string  `json:"machine_tool"`
	Operators        int     `json:"operators"`
	Pieces           int     `json:"pieces"`
	BusyMinutes      float64 `json:"busy_minutes"`
	MeanPieceMinutes float64 `json:"mean_piece_minutes"`
	UtilizationPct   float64 `json:"utilization_pct"`
	MeanQueueWaitMin float64 `json:"mean_queue_wait_min"`
	IsBottleneck     bool    `json:"is_bottleneck"`
	IsDonor          bool    `json:"is_donor"`
}

// FreeCapacity is block 4: free hours derived from the highest station
// utilization found in block 3.
type FreeCapacity struct {
	BottleneckStation         string  `json:"bottleneck_station"`
	MaxUtilizationPct         float64 `json:"max_utilization_pct"`
	FreeCapacityPct           float64 `json:"free_capacity_pct"`
	FreeLineHoursPerDay       float64 `json:"free_line_hours_per_day"`
	FreeBottleneckHoursPerDay float64 `json:"free_bottleneck_hours_per_day"`
}

// BundleBehavior is block 5: per-product bundle flow metrics. The in-system
// breakdowns are deliberately left absent.
type BundleBehavior struct {
	Product            string   `json:"product"`
	BundlesPerDay      float64  `json:"bundles_per_day"`
	BundleSize         int      `json:"bundle_size"`
	AvgBundlesInSystem *float64 `json:"avg_bundles_in_system,omitempty"`
	MaxWIP             *float64 `json:"max_wip,omitempty"`
}

// ProductSummary is block 6: demand vs. throughput vs. coverage, product-scoped.
type ProductSummary struct {
	Product          string         `json:"product"`
	DailyDemand      float64        `json:"daily_demand"`
	WeeklyDemand     float64        `json:"weekly_demand"`
	DailyThroughput  float64        `json:"daily_throughput"`
	WeeklyThroughput float64        `json:"weekly_throughput"`
	CoveragePct      float64        `json:"coverage_pct"`
	Status           CoverageStatus `json:"status"`
}

// RebalancingSuggestion is block 7: move one operator from a donor station
// to a bottleneck station. Pairing is positional in discovery order, not
// cost-optimized.
type RebalancingSuggestion struct {
	DonorStation           string  `json:"donor_station"`
	BottleneckStation      string  `json:"bottleneck_station"`
	MoveOperators          int     `json:"move_operators"`
	DonorUtilPct           float64 `json:"donor_util_pct"`
	DonorProjectedPct      float64 `json:"donor_projected_pct"`
	BottleneckUtilPct      float64 `json:"bottleneck_util_pct"`
	BottleneckProjectedPct float64 `json:"bottleneck_projected_pct"`
}

// AssumptionLog is block 8: a verbatim echo of the configuration surface,
// the formulas used, and the model's stated limitations.
type AssumptionLog struct {
	Mode        Mode        `json:"mode"`
	HorizonDays int         `json:"horizon_days"`
	Schedule    Schedule    `json:"schedule"`
	Products    []string    `json:"products"`
	Breakdowns  []Breakdown `json:"breakdowns,omitempty"`

	ProcessingTimeFormula string `json:"processing_time_formula"`
	TransitionRule        string `json:"transition_rule"`
	UtilizationFormula    string `json:"utilization_formula"`

	Limitations []string `json:"limitations"`
}

// ResultSet bundles the eight report blocks returned to the caller.
type ResultSet struct {
	Capacity     []ProductCapacity       `json:"weekly_capacity"`
	Daily        DailySummary            `json:"daily_summary"`
	Stations     []StationPerformance    `json:"station_performance"`
	FreeCapacity FreeCapacity            `json:"free_capacity"`
	Bundles      []BundleBehavior        `json:"bundle_behavior"`
	Products     []ProductSummary        `json:"product_summary"`
	Rebalancing  []RebalancingSuggestion `json:"rebalancing_suggestions"`
	Assumptions  AssumptionLog           `json:"assumption_log"`
	ReworkCount  int                     `json:"rework_count"`
}

func meanOrZero(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// participatingProducts returns products that have both operations and a
// demand entry, in stable order.
func participatingProducts(cfg *SimulationConfig) []string {
	routes := cfg.OperationsByProduct()
	var out []string
	for _, p := range cfg.Products() {
		if len(routes[p]) == 0 {
			continue
		}
		if _, ok := cfg.DemandFor(p); ok {
			out = append(out, p)
		}
	}
	return out
}

// BuildReport aggregates a finished run's metrics into the eight report
// blocks. The metrics must not be mutated afterwards.
func BuildReport(cfg *SimulationConfig, m *Metrics) *ResultSet {
	horizonDays := float64(cfg.HorizonDays)
	horizonMinutes := cfg.HorizonMinutes()
	workDays := float64(cfg.Schedule.WorkDays)
	products := participatingProducts(cfg)

	rs := &ResultSet{ReworkCount: m.ReworkCount}

	// Block 3 first: classification feeds blocks 4 and 7.
	for _, key := range m.StationOrder {
		st := m.Stations[key]
		row := StationPerformance{
			Product:     st.Product,
			Step:        st.Step,
			Description: st.Description,
			MachineTool: st.MachineTool,
			Operators:   st.Operators,
			Pieces:      st.Pieces,
			BusyMinutes: st.BusyMinutes,
		}
		if st.Pieces > 0 {
			row.MeanPieceMinutes = st.BusyMinutes / float64(st.Pieces)
		}
		if horizonMinutes > 0 && st.Operators > 0 {
			row.UtilizationPct = st.BusyMinutes / (horizonMinutes * float64(st.Operators)) * 100
		}
		row.MeanQueueWaitMin = meanOrZero(st.Waits)
		row.IsBottleneck = row.UtilizationPct >= bottleneckUtilPct
		row.IsDonor = row.UtilizationPct <= donorUtilPct && st.Operators > 1
		rs.Stations = append(rs.Stations, row)
	}

	// Blocks 1, 5, 6: per-product views.
	var totalDailyDemand, totalDailyThroughput, totalDailyBundles float64
	sizes := make(map[int]bool)
	for _, p := range products {
		daily, _ := cfg.DailyDemand(p)
		demand, _ := cfg.DemandFor(p)
		sizes[demand.BundleSize] = true

		dailyThroughput := float64(m.CompletedPieces[p]) / horizonDays
		weeklyDemand := daily * workDays
		weeklyCapacity := dailyThroughput * workDays
		coverage := 100.0
		if weeklyDemand > 0 {
			coverage = weeklyCapacity / weeklyDemand * 100
		}

		rs.Capacity = append(rs.Capacity, ProductCapacity{
			Product:        p,
			WeeklyDemand:   weeklyDemand,
			WeeklyCapacity: weeklyCapacity,
			CoveragePct:    coverage,
			Status:         coverageStatus(coverage),
		})
		rs.Bundles = append(rs.Bundles, BundleBehavior{
			Product:       p,
			BundlesPerDay: float64(m.CompletedBundles[p]) / horizonDays,
			BundleSize:    demand.BundleSize,
		})
		rs.Products = append(rs.Products, ProductSummary{
			Product:          p,
			DailyDemand:      daily,
			WeeklyDemand:     weeklyDemand,
			DailyThroughput:  dailyThroughput,
			WeeklyThroughput: weeklyCapacity,
			CoveragePct:      coverage,
			Status:           coverageStatus(coverage),
		})

		totalDailyDemand += daily
		totalDailyThroughput += dailyThroughput
		totalDailyBundles += float64(m.CompletedBundles[p]) / horizonDays
	}

	// Block 2: daily summary.
	wip := make([]float64, len(m.WIPSamples))
	for i, v := range m.WIPSamples {
		wip[i] = float64(v)
	}
	lineCoverage := 100.0
	if totalDailyDemand > 0 {
		lineCoverage = totalDailyThroughput / totalDailyDemand * 100
	}
	bundleSize := "mixed"
	if len(sizes) == 1 {
		for size := range sizes {
			bundleSize = strconv.Itoa(size)
		}
	}
	rs.Daily = DailySummary{
		ThroughputPerDay: totalDailyThroughput,
		DemandPerDay:     totalDailyDemand,
		CoveragePct:      lineCoverage,
		MeanCycleTimeMin: meanOrZero(m.CycleTimes),
		MeanWIP:          meanOrZero(wip),
		BundlesPerDay:    totalDailyBundles,
		BundleSize:       bundleSize,
	}

	// Block 4: free capacity at the binding station.
	var peak *StationPerformance
	for i := range rs.Stations {
		if peak == nil || rs.Stations[i].UtilizationPct > peak.UtilizationPct {
			peak = &rs.Stations[i]
		}
	}
	if peak != nil {
		freePct := 100 - peak.UtilizationPct
		if freePct < 0 {
			freePct = 0
		}
		freeLineHours := cfg.Schedule.DailyPlannedHours() * freePct / 100
		rs.FreeCapacity = FreeCapacity{
			BottleneckStation:         stationLabel(*peak),
			MaxUtilizationPct:         peak.UtilizationPct,
			FreeCapacityPct:           freePct,
			FreeLineHoursPerDay:       freeLineHours,
			FreeBottleneckHoursPerDay: freeLineHours * float64(peak.Operators),
		}
	}

	// Block 7: positional bottleneck/donor pairing.
	var bottlenecks, donors []StationPerformance
	for _, row := range rs.Stations {
		if row.IsBottleneck {
			bottlenecks = append(bottlenecks, row)
		}
		if row.IsDonor {
			donors = append(donors, row)
		}
	}
	for i := 0; i < len(bottlenecks) && i < len(donors); i++ {
		bn, donor := bottlenecks[i], donors[i]
		rs.Rebalancing = append(rs.Rebalancing, RebalancingSuggestion{
			DonorStation:           stationLabel(donor),
			BottleneckStation:      stationLabel(bn),
			MoveOperators:          1,
			DonorUtilPct:           donor.UtilizationPct,
			DonorProjectedPct:      projectUtilization(donor.UtilizationPct, donor.Operators, donor.Operators-1),
			BottleneckUtilPct:      bn.UtilizationPct,
			BottleneckProjectedPct: projectUtilization(bn.UtilizationPct, bn.Operators, bn.Operators+1),
		})
	}

	// Block 8: assumption log.
	rs.Assumptions = AssumptionLog{
		Mode:        cfg.Mode,
		HorizonDays: cfg.HorizonDays,
		Schedule:    cfg.Schedule,
		Products:    products,
		Breakdowns:  cfg.Breakdowns,
		ProcessingTimeFormula: "actual_min = max(sam_min x (1 + variability + fpd_pct/100 + (100 - grade_pct)/100), 0.01); " +
			"variability = 0 (deterministic) or triangular(-0.10, 0.10, mode 0)",
		TransitionRule:     "1s before and after each operation for bundle_size <= 5, else 5s",
		UtilizationFormula: "utilization_pct = busy_minutes / (horizon_minutes x operators) x 100",
		Limitations: []string{
			"single replication per run; no confidence intervals",
			"perfect equipment reliability assumed; breakdown_pct is not applied during the run",
			"perfect material availability assumed",
			"no operator learning curves",
			"bundles still in progress at the horizon are not counted as completed",
			"operators within a machine/tool group are fully interchangeable",
		},
	}

	return rs
}

// projectUtilization applies new_util = old_util x old_operators / new_operators.
func projectUtilization(oldUtil float64, oldOperators, newOperators int) float64 {
	if newOperators < 1 {
		return oldUtil
	}
	return oldUtil * float64(oldOperators) / float64(newOperators)
}

func stationLabel(row StationPerformance) string {
	return fmt.Sprintf("%s step %d (%s)", row.Product, row.Step, row.MachineTool)
}
