package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/evacsim/evacsim/sim"
	"github.com/evacsim/evacsim/sim/trace"
)

var (
	// CLI flags for the simulation run
	scenarioPath string   // Scenario YAML path; empty = built-in demo
	seed         int64    // Seed for random occupant placement
	logLevel     string   // Log verbosity level
	dtOverride   float64  // Timestep override in seconds
	maxTime      float64  // Horizon override in seconds
	tracePath    string   // Trace output path; empty = no trace
	occupants    []string // floor=count occupant overrides
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "evacsim",
	Short: "Building fire-evacuation simulator",
}

// parseOccupants converts floor=count pairs into per-floor counts.
func parseOccupants(pairs []string) (map[int]int, error) {
	out := make(map[int]int, len(pairs))
	for _, p := range pairs {
		floorStr, countStr, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("malformed occupants override %q, want floor=count", p)
		}
		floor, err := strconv.Atoi(floorStr)
		if err != nil {
			return nil, fmt.Errorf("malformed floor in %q: %v", p, err)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("malformed count in %q: %v", p, err)
		}
		out[floor] = count
	}
	return out, nil
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the evacuation simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scenario := sim.DefaultScenario()
		if scenarioPath != "" {
			scenario, err = sim.LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("Unable to load scenario: %v", err)
			}
		}

		if dtOverride > 0 {
			scenario.DT = dtOverride
		}
		if maxTime >= 0 {
			scenario.MaxTime = maxTime
		}
		if len(occupants) > 0 {
			overrides, err := parseOccupants(occupants)
			if err != nil {
				logrus.Fatalf("Invalid occupants override: %v", err)
			}
			if scenario.Occupants == nil {
				scenario.Occupants = make(map[int]int)
			}
			for floor, count := range overrides {
				scenario.Occupants[floor] = count
			}
		}

		logrus.Infof("Starting scenario %q with seed=%d, dt=%.2fs, max_time=%.0fs",
			scenario.Name, seed, scenario.DT, scenario.MaxTime)

		startTime := time.Now()

		s, err := sim.NewSimulator(scenario, seed)
		if err != nil {
			logrus.Fatalf("Unable to build simulation: %v", err)
		}
		if tracePath != "" {
			s.Trace = trace.NewRunTrace(scenario.Name, seed)
		}

		s.Run()
		s.Metrics.Print(startTime)

		if s.Trace != nil {
			if err := trace.WriteFile(tracePath, s.Trace); err != nil {
				logrus.Fatalf("Unable to write trace: %v", err)
			}
			logrus.Infof("Trace written to %s", tracePath)
		}

		logrus.Info("Simulation complete.")
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
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML path (empty = built-in two-floor demo)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random occupant placement")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Float64Var(&dtOverride, "dt", 0, "Timestep in seconds (0 = scenario value)")
	runCmd.Flags().Float64Var(&maxTime, "max-time", -1, "Horizon in seconds (0 = run to completion, negative = scenario value)")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a zstd JSONL run trace to this path")
	runCmd.Flags().StringSliceVar(&occupants, "occupants", nil, "Occupant count overrides as floor=count pairs")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
