// Implements the machine-group resource pool: a counting semaphore with a
// FIFO wait queue. Bundles racing for the same pool are resolved strictly by
// arrival order; no priority scheme is modeled.

package sim

// waiter is a bundle suspended on a resource request, with its arrival time
// for queue-wait accounting.
type waiter struct {
	bundle *Bundle
	since  float64
}

// Resource is one machine/tool group. Its capacity is the sum of operator
// counts across all operations naming this group. Owned by the engine for
// the run's duration and recreated fresh each run.
type Resource struct {
	Name     string
	Capacity int

	inUse   int
	waiters []waiter
}

// Acquire requests one unit of capacity for a bundle. If a unit is free,
// service begins immediately (zero wait is still recorded); otherwise the
// bundle joins the back of the FIFO queue.
func (r *Resource) Acquire(sim *Simulator, b *Bundle, now float64) {
	if r.inUse < r.Capacity {
		r.inUse++
		sim.beginService(b, r, now, 0)
		return
	}
	r.waiters = append(r.waiters, waiter{bundle: b, since: now})
}

// Release returns one unit of capacity and grants it to the head of the
// queue, if any. The grant happens at the current simulated time.
func (r *Resource) Release(sim *Simulator, now float64) {
	r.inUse--
	if len(r.waiters) == 0 {
		return
	}
	next := r.waiters[0]
	r.waiters = r.waiters[1:]
	r.inUse++
	sim.beginService(next.bundle, r, now, now-next.since)
}

// InUse returns the number of capacity units currently held.
func (r *Resource) InUse() int { return r.inUse }

// QueueLen returns the number of bundles waiting on this resource.
func (r *Resource) QueueLen() int { return len(r.waiters) }
