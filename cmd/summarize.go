package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evacsim/evacsim/sim/trace"
)

// summarizeCmd prints aggregate statistics from a recorded run trace.
var summarizeCmd = &cobra.Command{
	Use:   "summarize <trace-file>",
	Short: "Summarize a recorded run trace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := trace.ReadFile(args[0])
		if err != nil {
			logrus.Fatalf("Unable to read trace: %v", err)
		}
		s := trace.Summarize(rt)
		fmt.Println("=== Trace Summary ===")
		fmt.Printf("Scenario             : %s (seed %d)\n", rt.Scenario, rt.Seed)
		fmt.Printf("Records              : %d evac, %d zone\n", s.EvacRecords, s.ZoneRecords)
		fmt.Printf("Final Time           : %.1f s\n", s.FinalTime)
		fmt.Printf("Total Evacuated      : %d\n", s.TotalEvacuated)
		if s.ZoneRecords > 0 {
			fmt.Printf("Peak Hot Layer       : %.1f C (%s)\n", s.PeakHotTemp, s.PeakHotZone)
			fmt.Printf("Min Interface Height : %.2f m (%s)\n", s.MinInterface, s.MinInterfaceZone)
			fmt.Printf("Zones Affected       : %d\n", s.ZonesAffected)
		}
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
