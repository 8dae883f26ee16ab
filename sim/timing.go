// Per-piece processing-time formula and the inter-operation transition rule.
// This file is the reproducibility contract for the engine: grade below 100%
// and FPD both add time, variability can add or subtract up to 10%, and the
// floor prevents degenerate zero-duration events.

package sim

import (
	"math"
	"math/rand"
)

// minProcessingMinutes floors every computed processing time so no event is
// scheduled with a non-positive delay.
const minProcessingMinutes = 0.01

// wipSampleIntervalMinutes is the period of the background WIP sampler.
const wipSampleIntervalMinutes = 5.0

// transitionMinutes is the fixed delay a bundle incurs once before entering
// each operation's queue and once after leaving it: 1 second for small
// bundles, 5 seconds otherwise.
func transitionMinutes(bundleSize int) float64 {
	if bundleSize <= 5 {
		return 1.0 / 60.0
	}
	return 5.0 / 60.0
}

// sampleTriangular draws from the triangular distribution on [a, b] with
// mode c using the inverse-CDF method. Draws come off the shared partitioned
// RNG in a fixed order, keeping seeded runs reproducible.
func sampleTriangular(rng *rand.Rand, a, b, c float64) float64 {
	u := rng.Float64()
	if u < (c-a)/(b-a) {
		return a + math.Sqrt(u*(b-a)*(c-a))
	}
	return b - math.Sqrt((1-u)*(b-a)*(b-c))
}

// processingMinutes computes the actual time for one piece at one station
// visit. A fresh variability factor is sampled per call for triangular
// operations; deterministic operations never touch the RNG.
func processingMinutes(op *Operation, rng *rand.Rand) float64 {
	var variability float64
	if op.Variability == VariabilityTriangular {
		variability = sampleTriangular(rng, -0.10, 0.10, 0)
	}
	actual := op.SAMMin * (1 + variability + op.FPDPct/100 + (100-op.GradePct)/100)
	if actual < minProcessingMinutes {
		actual = minProcessingMinutes
	}
	return actual
}
