// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stitchsim/stitchsim/sim/trace"
)

// scheduledEvent pairs an event with a monotone sequence number. Many
// journeys start at the same simulated instant, so timestamp ties are broken
// by schedule order to keep seeded runs totally ordered.
type scheduledEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp, then
// by schedule order. See the canonical Golang example:
// https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []scheduledEvent

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	ti, tj := eq[i].ev.Timestamp(), eq[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return eq[i].seq < eq[j].seq
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(scheduledEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Simulator is the core object that holds simulated time, system state, and
// the event loop for one run. Time advances in continuous minutes; bundle
// journeys suspend at transition delays, resource requests, and per-piece
// processing delays, and only one event executes at a time.
type Simulator struct {
	Clock          float64
	HorizonMinutes float64
	EventQueue     EventQueue

	// Resources maps machine/tool name to its shared capacity pool. The
	// pools are the only mutable shared state during a run and are owned
	// exclusively by this Simulator.
	Resources map[string]*Resource

	Metrics *Metrics
	Config  *SimulationConfig
	Bundles []*Bundle

	// Trace is optional journey tracing; nil or LevelNone disables it.
	Trace *trace.JourneyTrace

	rng *PartitionedRNG
	seq uint64
	err error
}

func errInternalf(format string, args ...any) error {
	return fmt.Errorf("simulation invariant violated: "+format, args...)
}

// NewSimulator builds the run-time state for a field-valid, domain-valid
// scenario: one resource pool per distinct machine/tool, the bundle fleet
// sized to cover horizon-scaled demand, and the initial event set.
func NewSimulator(cfg *SimulationConfig, seed int64) (*Simulator, error) {
	s := &Simulator{
		HorizonMinutes: cfg.HorizonMinutes(),
		EventQueue:     make(EventQueue, 0),
		Resources:      make(map[string]*Resource),
		Metrics:        NewMetrics(),
		Config:         cfg,
		rng:            NewPartitionedRNG(NewSimulationKey(seed)),
	}

	groups := cfg.MachineGroups()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		capacity := groups[name]
		if capacity < 1 {
			return nil, errInternalf("resource pool %q created with zero capacity", name)
		}
		s.Resources[name] = &Resource{Name: name, Capacity: capacity}
	}

	routes := cfg.OperationsByProduct()
	for _, product := range cfg.Products() {
		for _, op := range routes[product] {
			s.Metrics.AddStation(op)
		}
	}

	id := 0
	for _, product := range cfg.Products() {
		route := routes[product]
		if len(route) == 0 {
			continue
		}
		demand, ok := cfg.DemandFor(product)
		if !ok {
			// No demand: excluded from the run (validator already warned).
			continue
		}
		daily, _ := cfg.DailyDemand(product)
		total := daily * float64(cfg.HorizonDays)
		count := BundleCount(total, demand.BundleSize)
		for i := 0; i < count; i++ {
			b := &Bundle{
				ID:      id,
				Product: product,
				Size:    demand.BundleSize,
				route:   route,
			}
			id++
			s.Bundles = append(s.Bundles, b)
			s.Schedule(&journeyStartEvent{time: 0, bundle: b})
		}
	}

	if s.HorizonMinutes >= wipSampleIntervalMinutes {
		s.Schedule(&wipSampleEvent{time: wipSampleIntervalMinutes})
	}

	return s, nil
}

// Schedule pushes an event into the simulator's event queue.
func (sim *Simulator) Schedule(ev Event) {
	heap.Push(&sim.EventQueue, scheduledEvent{ev: ev, seq: sim.seq})
	sim.seq++
}

// Run executes events in timestamp order until the horizon is reached or
// the queue drains. Events stamped after the horizon never execute: bundle
// journeys still in progress at the cutoff are abandoned in place, their
// partial work already reflected in busy-time but not in completion counts.
func (sim *Simulator) Run() error {
	for len(sim.EventQueue) > 0 {
		item := heap.Pop(&sim.EventQueue).(scheduledEvent)
		t := item.ev.Timestamp()
		if t > sim.HorizonMinutes {
			sim.Clock = sim.HorizonMinutes
			break
		}
		if t < sim.Clock {
			return errInternalf("time moved backward: %v -> %v", sim.Clock, t)
		}
		sim.Clock = t
		logrus.Debugf("[%8.2f min] executing %T", sim.Clock, item.ev)
		item.ev.Execute(sim)
		if sim.err != nil {
			return sim.err
		}
	}
	sim.Metrics.SimEndedMinutes = sim.Clock
	logrus.Infof("[%8.2f min] simulation ended: %d/%d bundles completed",
		sim.Clock, sim.Metrics.TotalCompletedBundles(), len(sim.Bundles))
	return nil
}

// fail records a fatal runtime error; the event loop stops at the next check.
func (sim *Simulator) fail(err error) {
	if sim.err == nil {
		sim.err = err
	}
}

// beginService starts a bundle's station visit: the queue wait is recorded
// and the first piece's processing delay is scheduled. Called by Resource on
// grant, both immediate and from the wait queue.
func (sim *Simulator) beginService(b *Bundle, r *Resource, now float64, wait float64) {
	op := b.currentOp()
	if op == nil {
		sim.fail(errInternalf("bundle %d granted %q past its route end", b.ID, r.Name))
		return
	}
	sim.Metrics.recordWait(b.Product, op.Step, wait)
	if sim.Trace.Enabled() {
		sim.Trace.RecordGrant(trace.GrantRecord{
			TimeMin:     now,
			BundleID:    b.ID,
			Product:     b.Product,
			Step:        op.Step,
			MachineTool: r.Name,
			WaitMin:     wait,
		})
	}
	b.pieceIdx = 0
	sim.schedulePiece(b, now, false)
}

// schedulePiece samples one processing (or rework) delay for the bundle's
// current operation and schedules its completion.
func (sim *Simulator) schedulePiece(b *Bundle, now float64, rework bool) {
	op := b.currentOp()
	minutes := processingMinutes(op, sim.rng.ForSubsystem(SubsystemVariability))
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		sim.fail(errInternalf("computed processing delay %v for product %q step %d", minutes, b.Product, op.Step))
		return
	}
	sim.Schedule(&pieceDoneEvent{time: now + minutes, bundle: b, minutes: minutes, rework: rework})
}

func (sim *Simulator) recordTraceCompletion(b *Bundle, now, cycle float64) {
	if sim.Trace.Enabled() {
		sim.Trace.RecordCompletion(trace.CompletionRecord{
			TimeMin:  now,
			BundleID: b.ID,
			Product:  b.Product,
			CycleMin: cycle,
		})
	}
}
