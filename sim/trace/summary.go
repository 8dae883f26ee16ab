package trace

// Summary aggregates statistics from a JourneyTrace.
type Summary struct {
	Grants          int            `json:"grants"`
	Completions     int            `json:"completions"`
	MeanWaitMin     float64        `json:"mean_wait_min"`
	MaxWaitMin      float64        `json:"max_wait_min"`
	UniqueMachines  int            `json:"unique_machines"`
	GrantsByMachine map[string]int `json:"grants_by_machine"` // machine/tool name → grant count
}

// Summarize computes aggregate statistics from a JourneyTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(jt *JourneyTrace) *Summary {
	summary := &Summary{
		GrantsByMachine: make(map[string]int),
	}
	if jt == nil {
		return summary
	}

	summary.Grants = len(jt.Grants)
	summary.Completions = len(jt.Completions)

	if len(jt.Grants) > 0 {
		totalWait := 0.0
		for _, g := range jt.Grants {
			summary.GrantsByMachine[g.MachineTool]++
			totalWait += g.WaitMin
			if g.WaitMin > summary.MaxWaitMin {
				summary.MaxWaitMin = g.WaitMin
			}
		}
		summary.MeanWaitMin = totalWait / float64(len(jt.Grants))
	}

	summary.UniqueMachines = len(summary.GrantsByMachine)

	return summary
}
