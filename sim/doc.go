// Package sim provides the core discrete-event simulation engine for stitchsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - config.go: the scenario model (operations, schedule, demands) and its
//     construction-time field checks
//   - event.go: the event types that drive a bundle journey through the line
//   - simulator.go: the event loop, resource setup, and horizon cutoff
//
// # Architecture
//
// A run flows through four stages:
//   - SimulationConfig.CheckFields rejects malformed scenarios outright
//   - Validate performs cross-field domain checks and produces a
//     ValidationReport (errors block execution, warnings do not)
//   - Simulator advances simulated time in minutes, moving bundles through
//     their operation sequences while contending for machine-group capacity,
//     and accumulates raw Metrics
//   - BuildReport turns the finished Metrics into the eight decision-support
//     report blocks
//
// Execute in runner.go wires the stages together and wraps them in a
// structured Outcome so callers always receive a result object that
// distinguishes "blocked by validation" from "failed during execution" from
// "completed".
//
// The engine is single-threaded cooperative: many bundle journeys are in
// flight, but only one event executes at a time, so Metrics needs no locking.
// Given the same scenario and seed, a run is bit-for-bit reproducible.
package sim
