package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/evacsim/evacsim/sim"
)

var scenarioOut string // output path for the exported scenario

// scenarioCmd writes the built-in demo scenario as editable YAML, the usual
// starting point for custom buildings.
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Write the built-in demo scenario to a YAML file",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := yaml.Marshal(sim.DefaultScenario())
		if err != nil {
			logrus.Fatalf("YAML marshal failed: %v", err)
		}
		if err := os.WriteFile(scenarioOut, data, 0o644); err != nil {
			logrus.Fatalf("Failed to write scenario file: %v", err)
		}
		logrus.Infof("Scenario written to %s", scenarioOut)
	},
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioOut, "out", "scenario.yaml", "Output path for the scenario YAML")
	rootCmd.AddCommand(scenarioCmd)
}
