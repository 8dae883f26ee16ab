package sim

// Shared scenario builders for engine and validator tests.

func floatPtr(v float64) *float64 { return &v }

// twoStationConfig is the canonical test line: one product, two deterministic
// 1.0-minute operations on separate machines, 1 shift x 8h x 5 days,
// 10 units/day at bundle size 1, one simulated day.
func twoStationConfig() *SimulationConfig {
	return &SimulationConfig{
		Mode:        ModeDemandDriven,
		HorizonDays: 1,
		Schedule: Schedule{
			ShiftsEnabled: 1,
			ShiftHours:    [3]float64{8, 0, 0},
			WorkDays:      5,
		},
		Operations: []Operation{
			{Product: "TEST", Step: 1, MachineTool: "M1", SAMMin: 1.0, Operators: 1,
				Variability: VariabilityDeterministic, GradePct: 100},
			{Product: "TEST", Step: 2, MachineTool: "M2", SAMMin: 1.0, Operators: 1,
				Variability: VariabilityDeterministic, GradePct: 100},
		},
		Demands: []Demand{
			{Product: "TEST", BundleSize: 1, DailyQty: floatPtr(10)},
		},
	}
}
