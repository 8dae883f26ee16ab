// Wires the stages of a run together: field checks, domain validation, the
// engine, and the aggregator. The caller always receives a structured
// Outcome distinguishing "blocked by validation" from "failed during
// execution" from "completed with warnings".

package sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitchsim/stitchsim/sim/trace"
)

// OutcomeStatus is the terminal state of a run request.
type OutcomeStatus string

const (
	// OutcomeValidateOnly means validation ran and no simulation was requested.
	OutcomeValidateOnly OutcomeStatus = "validate-only"
	// OutcomeBlocked means domain validation found errors; nothing ran.
	OutcomeBlocked OutcomeStatus = "blocked-by-validation"
	// OutcomeFailed means the engine hit a fatal runtime error mid-run.
	// There is no partial-result fallback.
	OutcomeFailed OutcomeStatus = "failed-during-run"
	// OutcomeCompleted means the run reached its horizon and produced the
	// full report set (warnings, if any, ride along in Validation).
	OutcomeCompleted OutcomeStatus = "completed"
)

// Outcome is the structured result of one run request. Each invocation is
// stateless and ephemeral; nothing is persisted.
type Outcome struct {
	Status     OutcomeStatus     `json:"status"`
	Validation *ValidationReport `json:"validation"`
	Result     *ResultSet        `json:"result,omitempty"`
	Trace      *trace.Summary    `json:"trace_summary,omitempty"`
	Error      string            `json:"error,omitempty"`

	// WallClock is the real duration of the call, reported separately from
	// simulated time.
	WallClock time.Duration `json:"wall_clock_ns"`
}

// RunOptions controls one Execute invocation.
type RunOptions struct {
	Seed         int64
	ValidateOnly bool
	TraceLevel   trace.Level
}

// Execute runs the full pipeline for one scenario. It returns an error only
// when the config fails construction-time field checks; every later failure
// mode is reported inside the Outcome. The call is synchronous and blocking;
// there is no mechanism to cancel an in-flight run.
func Execute(cfg *SimulationConfig, opts RunOptions) (*Outcome, error) {
	start := time.Now()

	if err := cfg.CheckFields(); err != nil {
		return nil, err
	}

	outcome := &Outcome{Validation: Validate(cfg)}

	if opts.ValidateOnly {
		outcome.Status = OutcomeValidateOnly
		outcome.WallClock = time.Since(start)
		return outcome, nil
	}
	if !outcome.Validation.CanProceed {
		outcome.Status = OutcomeBlocked
		outcome.WallClock = time.Since(start)
		return outcome, nil
	}

	s, err := NewSimulator(cfg, opts.Seed)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		outcome.WallClock = time.Since(start)
		return outcome, nil
	}
	if opts.TraceLevel == trace.LevelJourneys {
		s.Trace = trace.NewJourneyTrace(opts.TraceLevel)
	}

	if err := s.Run(); err != nil {
		logrus.Errorf("run failed: %v", err)
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		outcome.WallClock = time.Since(start)
		return outcome, nil
	}

	outcome.Status = OutcomeCompleted
	outcome.Result = BuildReport(cfg, s.Metrics)
	if s.Trace.Enabled() {
		outcome.Trace = trace.Summarize(s.Trace)
	}
	outcome.WallClock = time.Since(start)
	return outcome, nil
}
