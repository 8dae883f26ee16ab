package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in simulated minutes) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// journeyStartEvent begins a bundle journey: the journey-start time is
// recorded, WIP rises by the bundle size, and the bundle heads for its first
// operation's queue after the entry transition delay.
type journeyStartEvent struct {
	time   float64
	bundle *Bundle
}

func (e *journeyStartEvent) Timestamp() float64 { return e.time }

func (e *journeyStartEvent) Execute(sim *Simulator) {
	logrus.Debugf("[%8.2f min] journey start: %s", e.time, e.bundle)
	e.bundle.StartTime = e.time
	sim.Metrics.CurrentWIP += e.bundle.Size
	sim.Schedule(&enterQueueEvent{time: e.time + e.bundle.transition(), bundle: e.bundle})
}

// enterQueueEvent fires when the entry transition delay has elapsed and the
// bundle requests one unit of the current operation's resource.
type enterQueueEvent struct {
	time   float64
	bundle *Bundle
}

func (e *enterQueueEvent) Timestamp() float64 { return e.time }

func (e *enterQueueEvent) Execute(sim *Simulator) {
	op := e.bundle.currentOp()
	if op == nil {
		sim.fail(errInternalf("bundle %d queued past its route end", e.bundle.ID))
		return
	}
	logrus.Debugf("[%8.2f min] %s requests %s", e.time, e.bundle, op.MachineTool)
	sim.Resources[op.MachineTool].Acquire(sim, e.bundle, e.time)
}

// pieceDoneEvent fires when one piece's processing (or rework) delay has
// elapsed while the bundle holds the resource.
type pieceDoneEvent struct {
	time    float64
	bundle  *Bundle
	minutes float64 // the delay that just elapsed, for busy-time accounting
	rework  bool
}

func (e *pieceDoneEvent) Timestamp() float64 { return e.time }

func (e *pieceDoneEvent) Execute(sim *Simulator) {
	b := e.bundle
	op := b.currentOp()
	if op == nil {
		sim.fail(errInternalf("bundle %d processed past its route end", b.ID))
		return
	}
	sim.Metrics.recordService(b.Product, op.Step, e.minutes, e.rework)

	// A freshly-finished piece may need one rework pass at the same station
	// before the bundle can proceed.
	if !e.rework && op.ReworkPct > 0 &&
		sim.rng.ForSubsystem(SubsystemRework).Float64() < op.ReworkPct/100 {
		sim.Metrics.ReworkCount++
		sim.schedulePiece(b, e.time, true)
		return
	}

	b.pieceIdx++
	if b.pieceIdx < b.Size {
		sim.schedulePiece(b, e.time, false)
		return
	}

	// All pieces done: release the station and leave after the exit delay.
	b.pieceIdx = 0
	sim.Resources[op.MachineTool].Release(sim, e.time)
	sim.Schedule(&departEvent{time: e.time + b.transition(), bundle: b})
}

// departEvent fires when the exit transition delay has elapsed: the bundle
// either heads for the next operation or completes its journey.
type departEvent struct {
	time   float64
	bundle *Bundle
}

func (e *departEvent) Timestamp() float64 { return e.time }

func (e *departEvent) Execute(sim *Simulator) {
	b := e.bundle
	b.opIdx++
	if b.currentOp() != nil {
		sim.Schedule(&enterQueueEvent{time: e.time + b.transition(), bundle: b})
		return
	}
	b.Completed = true
	cycle := e.time - b.StartTime
	sim.Metrics.recordCompletion(b.Product, b.Size, cycle)
	sim.recordTraceCompletion(b, e.time, cycle)
	logrus.Debugf("[%8.2f min] journey complete: %s cycle=%.2f min", e.time, b, cycle)
}

// wipSampleEvent is the background sampler: it wakes every 5 simulated
// minutes, records the current WIP total, and reschedules itself until the
// horizon.
type wipSampleEvent struct {
	time float64
}

func (e *wipSampleEvent) Timestamp() float64 { return e.time }

func (e *wipSampleEvent) Execute(sim *Simulator) {
	sim.Metrics.WIPSamples = append(sim.Metrics.WIPSamples, sim.Metrics.CurrentWIP)
	next := e.time + wipSampleIntervalMinutes
	if next <= sim.HorizonMinutes {
		sim.Schedule(&wipSampleEvent{time: next})
	}
}
