package trace

// GrantRecord captures one resource grant: a bundle was given a unit of a
// machine group's capacity after waiting in its FIFO queue.
type GrantRecord struct {
	TimeMin     float64 `json:"time_min"`
	BundleID    int     `json:"bundle_id"`
	Product     string  `json:"product"`
	Step        int     `json:"step"`
	MachineTool string  `json:"machine_tool"`
	WaitMin     float64 `json:"wait_min"`
}

// CompletionRecord captures one finished bundle journey.
type CompletionRecord struct {
	TimeMin  float64 `json:"time_min"`
	BundleID int     `json:"bundle_id"`
	Product  string  `json:"product"`
	CycleMin float64 `json:"cycle_min"`
}
