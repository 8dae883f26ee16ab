// Defines the Bundle, the unit of flow in the simulation: a batch of pieces
// moving together through a product's ordered operation sequence. A bundle's
// journey is driven entirely by events; the fields here are its suspended
// state between them.

package sim

import "fmt"

// Bundle models one bundle journey. Created at simulation start, destroyed
// (counted into metrics, discarded) on completing its last operation or
// abandoned in place at horizon cutoff.
type Bundle struct {
	ID      int
	Product string
	Size    int // pieces moving together

	route    []Operation // product's operations, step ascending
	opIdx    int         // current position in route
	pieceIdx int         // pieces finished at the current station

	StartTime float64 // simulated minute the journey began
	Completed bool
}

// currentOp returns the operation the bundle is at, or nil past the route end.
func (b *Bundle) currentOp() *Operation {
	if b.opIdx < 0 || b.opIdx >= len(b.route) {
		return nil
	}
	return &b.route[b.opIdx]
}

// transition is the fixed inter-operation delay for this bundle's size.
func (b *Bundle) transition() float64 {
	return transitionMinutes(b.Size)
}

func (b *Bundle) String() string {
	return fmt.Sprintf("Bundle(%d %s size=%d op=%d/%d)", b.ID, b.Product, b.Size, b.opIdx, len(b.route))
}
