// Tracks raw per-station and per-product measurements accumulated during a
// run. One Metrics instance is owned exclusively by one Simulator; it is
// mutated only between event executions on the single logical thread of
// control and becomes read-only once the run ends.

package sim

import "fmt"

// StationMetrics holds the raw measurements for one operation row.
type StationMetrics struct {
	Product     string
	Step        int
	Description string
	MachineTool string
	Operators   int

	BusyMinutes float64   // cumulative service time, rework included
	Pieces      int       // pieces processed (rework passes not re-counted)
	Waits       []float64 // arrival-to-grant queue waits, zero waits included
}

// StationKey identifies an operation row in the Stations map.
func StationKey(product string, step int) string {
	return fmt.Sprintf("%s#%d", product, step)
}

// Metrics is the run-wide accumulator handed to the aggregator.
type Metrics struct {
	Stations     map[string]*StationMetrics
	StationOrder []string // insertion order of Stations, for deterministic reports

	CompletedPieces  map[string]int // per-product completed piece counts
	CompletedBundles map[string]int // per-product completed bundle counts

	CycleTimes  []float64 // journey end - start, completed bundles only
	WIPSamples  []int     // periodic snapshots of CurrentWIP
	CurrentWIP  int       // pieces currently inside the line
	ReworkCount int       // total rework occurrences across all stations

	SimEndedMinutes float64 // simulated clock when the run stopped
}

// NewMetrics creates an empty accumulator.
func NewMetrics() *Metrics {
	return &Metrics{
		Stations:         make(map[string]*StationMetrics),
		CompletedPieces:  make(map[string]int),
		CompletedBundles: make(map[string]int),
	}
}

// AddStation registers an operation row so it appears in reports even when
// no work reaches it. Registration order is preserved.
func (m *Metrics) AddStation(op Operation) {
	key := StationKey(op.Product, op.Step)
	if _, ok := m.Stations[key]; ok {
		return
	}
	m.Stations[key] = &StationMetrics{
		Product:     op.Product,
		Step:        op.Step,
		Description: op.Description,
		MachineTool: op.MachineTool,
		Operators:   op.Operators,
	}
	m.StationOrder = append(m.StationOrder, key)
}

func (m *Metrics) station(product string, step int) *StationMetrics {
	return m.Stations[StationKey(product, step)]
}

func (m *Metrics) recordWait(product string, step int, wait float64) {
	if st := m.station(product, step); st != nil {
		st.Waits = append(st.Waits, wait)
	}
}

func (m *Metrics) recordService(product string, step int, minutes float64, rework bool) {
	st := m.station(product, step)
	if st == nil {
		return
	}
	st.BusyMinutes += minutes
	if !rework {
		st.Pieces++
	}
}

func (m *Metrics) recordCompletion(product string, pieces int, cycleMinutes float64) {
	m.CompletedPieces[product] += pieces
	m.CompletedBundles[product]++
	m.CycleTimes = append(m.CycleTimes, cycleMinutes)
	m.CurrentWIP -= pieces
}

// TotalCompletedPieces sums completed pieces across products.
func (m *Metrics) TotalCompletedPieces() int {
	var total int
	for _, n := range m.CompletedPieces {
		total += n
	}
	return total
}

// TotalCompletedBundles sums completed bundles across products.
func (m *Metrics) TotalCompletedBundles() int {
	var total int
	for _, n := range m.CompletedBundles {
		total += n
	}
	return total
}
