package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stitchsim/stitchsim/sim"
	"github.com/stitchsim/stitchsim/sim/trace"
)

var (
	scenarioPath string // Path to the YAML scenario file
	seed         int64  // Seed for triangular-variability and rework draws
	horizonDays  int    // Override for the scenario's horizon_days (0 = keep)
	logLevel     string // Log verbosity level
	traceLevel   string // Journey trace level (none, journeys)
	jsonPath     string // Where to write the JSON outcome ("-" = stdout)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "stitchsim",
	Short: "Discrete-event simulator for bundle-flow production lines",
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func loadScenario() *sim.SimulationConfig {
	if scenarioPath == "" {
		logrus.Fatalf("Scenario file not provided. Exiting.")
	}
	cfg, err := LoadScenario(scenarioPath)
	if err != nil {
		logrus.Fatalf("Unable to load scenario: %v", err)
	}
	if horizonDays > 0 {
		cfg.HorizonDays = horizonDays
	}
	return cfg
}

func writeOutcome(outcome *sim.Outcome) {
	if jsonPath == "" {
		return
	}
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		logrus.Fatalf("Unable to encode outcome: %v", err)
	}
	data = append(data, '\n')
	if jsonPath == "-" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		logrus.Fatalf("Unable to write outcome: %v", err)
	}
}

func printValidation(report *sim.ValidationReport) {
	fmt.Printf("Validation: %d products, %d operations, %d machine groups\n",
		report.Products, report.Operations, report.MachineGroups)
	for _, issue := range report.Errors {
		fmt.Printf("  ERROR [%s] %s\n", issue.Check, issue.Message)
	}
	for _, issue := range report.Warnings {
		fmt.Printf("  WARN  [%s] %s\n", issue.Check, issue.Message)
	}
	for _, issue := range report.Info {
		fmt.Printf("  INFO  [%s] %s\n", issue.Check, issue.Message)
	}
}

// runCmd executes a full simulation from a scenario file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the production line simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if !trace.IsValidLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		cfg := loadScenario()

		outcome, err := sim.Execute(cfg, sim.RunOptions{
			Seed:       seed,
			TraceLevel: trace.Level(traceLevel),
		})
		if err != nil {
			logrus.Fatalf("Scenario rejected: %v", err)
		}

		printValidation(outcome.Validation)
		switch outcome.Status {
		case sim.OutcomeBlocked:
			fmt.Println("Run blocked by validation errors.")
			writeOutcome(outcome)
			os.Exit(1)
		case sim.OutcomeFailed:
			fmt.Printf("Run failed: %s\n", outcome.Error)
			writeOutcome(outcome)
			os.Exit(1)
		}

		r := outcome.Result
		fmt.Printf("Completed in %s (simulated %d day(s)).\n", outcome.WallClock, cfg.HorizonDays)
		fmt.Printf("Throughput: %.1f pieces/day vs demand %.1f/day (%.0f%% coverage)\n",
			r.Daily.ThroughputPerDay, r.Daily.DemandPerDay, r.Daily.CoveragePct)
		fmt.Printf("Mean cycle time: %.1f min, mean WIP: %.1f pieces, rework: %d\n",
			r.Daily.MeanCycleTimeMin, r.Daily.MeanWIP, r.ReworkCount)
		for _, row := range r.Stations {
			flag := ""
			if row.IsBottleneck {
				flag = "  <- bottleneck"
			} else if row.IsDonor {
				flag = "  <- donor"
			}
			fmt.Printf("  %-28s util %5.1f%%  wait %6.2f min%s\n",
				fmt.Sprintf("%s step %d (%s)", row.Product, row.Step, row.MachineTool),
				row.UtilizationPct, row.MeanQueueWaitMin, flag)
		}
		for _, sug := range r.Rebalancing {
			fmt.Printf("  rebalance: move 1 operator %s -> %s (%.0f%% -> %.0f%% at bottleneck)\n",
				sug.DonorStation, sug.BottleneckStation, sug.BottleneckUtilPct, sug.BottleneckProjectedPct)
		}
		writeOutcome(outcome)
	},
}

// validateCmd runs the domain checks without simulating.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario without running it",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := loadScenario()

		outcome, err := sim.Execute(cfg, sim.RunOptions{ValidateOnly: true})
		if err != nil {
			logrus.Fatalf("Scenario rejected: %v", err)
		}
		printValidation(outcome.Validation)
		writeOutcome(outcome)
		if !outcome.Validation.CanProceed {
			os.Exit(1)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&jsonPath, "json", "", "Write the JSON outcome to this path (\"-\" for stdout)")
		c.Flags().IntVar(&horizonDays, "horizon-days", 0, "Override the scenario's horizon in days (0 keeps the scenario value)")
	}
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for variability and rework draws")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Journey trace level (none, journeys)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
