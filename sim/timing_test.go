package sim

import (
	"math/rand"
	"testing"
)

func detOp(samMin, gradePct, fpdPct float64) *Operation {
	return &Operation{
		Product:     "TEST",
		Step:        1,
		MachineTool: "M1",
		SAMMin:      samMin,
		Operators:   1,
		Variability: VariabilityDeterministic,
		GradePct:    gradePct,
		FPDPct:      fpdPct,
	}
}

func TestProcessingMinutes_DeterministicBaseline(t *testing.T) {
	// GIVEN a deterministic operation at full grade with no FPD
	op := detOp(1.0, 100, 0)

	// WHEN computing processing times repeatedly
	// THEN every computed time equals exactly 1.0
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		if got := processingMinutes(op, rng); got != 1.0 {
			t.Fatalf("processingMinutes = %v, want exactly 1.0", got)
		}
	}
}

func TestProcessingMinutes_GradePenalty(t *testing.T) {
	// GIVEN grade 50% with other factors zeroed
	op := detOp(1.0, 50, 0)

	// THEN the time is 1.0 x (1 + 0 + 0 + 0.5) = 1.5
	if got := processingMinutes(op, rand.New(rand.NewSource(1))); got != 1.5 {
		t.Errorf("processingMinutes = %v, want 1.5", got)
	}
}

func TestProcessingMinutes_FPDAddition(t *testing.T) {
	// GIVEN FPD 20% with other factors zeroed
	op := detOp(1.0, 100, 20)

	// THEN the time is 1.0 x 1.2 = 1.2
	if got := processingMinutes(op, rand.New(rand.NewSource(1))); got != 1.2 {
		t.Errorf("processingMinutes = %v, want 1.2", got)
	}
}

func TestProcessingMinutes_Floor(t *testing.T) {
	// GIVEN a vanishingly small SAM
	op := detOp(0.0001, 100, 0)

	// THEN the result is floored at 0.01 minutes
	if got := processingMinutes(op, rand.New(rand.NewSource(1))); got != minProcessingMinutes {
		t.Errorf("processingMinutes = %v, want floor %v", got, minProcessingMinutes)
	}
}

func TestProcessingMinutes_TriangularBounds(t *testing.T) {
	// GIVEN a triangular-variability operation at full grade, no FPD
	op := &Operation{
		Product: "TEST", Step: 1, MachineTool: "M1",
		SAMMin: 1.0, Operators: 1,
		Variability: VariabilityTriangular, GradePct: 100,
	}

	// WHEN sampling many processing times
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		got := processingMinutes(op, rng)
		// THEN each stays within the ±10% band around SAM
		if got < 0.9 || got > 1.1 {
			t.Fatalf("sample %d: processingMinutes = %v, want within [0.9, 1.1]", i, got)
		}
	}
}

func TestProcessingMinutes_TriangularSeeded(t *testing.T) {
	// GIVEN two identically seeded RNGs
	op := &Operation{
		Product: "TEST", Step: 1, MachineTool: "M1",
		SAMMin: 1.0, Operators: 1,
		Variability: VariabilityTriangular, GradePct: 100,
	}
	rng1 := rand.New(rand.NewSource(7))
	rng2 := rand.New(rand.NewSource(7))

	// THEN sampled sequences are identical
	for i := 0; i < 50; i++ {
		if a, b := processingMinutes(op, rng1), processingMinutes(op, rng2); a != b {
			t.Fatalf("draw %d: %v != %v", i, a, b)
		}
	}
}

func TestTransitionMinutes_Threshold(t *testing.T) {
	tests := []struct {
		bundleSize int
		want       float64
	}{
		{1, 1.0 / 60.0},
		{5, 1.0 / 60.0},
		{6, 5.0 / 60.0},
		{40, 5.0 / 60.0},
	}
	for _, tt := range tests {
		if got := transitionMinutes(tt.bundleSize); got != tt.want {
			t.Errorf("transitionMinutes(%d) = %v, want %v", tt.bundleSize, got, tt.want)
		}
	}
}
