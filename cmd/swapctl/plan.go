package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/fleet"
	"github.com/biglinux/swapctl/internal/storage"
	"github.com/biglinux/swapctl/internal/swapconf"
	"github.com/biglinux/swapctl/internal/swapstatus"
)

var planJSONFlag bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the target swap file fleet for the current state",
	Long: `plan reads the live swap inventory and the configuration and prints the
file actions the daemon would take: which swap files to keep, create, or
retire. Nothing is executed; the daemon owns the filesystem.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}

		snap := swapstatus.NewCollector().Collect(cmd.Context())
		host := storage.NewClassifier().ClassifyPath(cfg.SwapFile.Path)

		planner := fleet.NewPlanner()
		p := planner.Plan(snap.SwapFile.Files, snap.Partitions, cfg.SwapFile, host)

		if planJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Printf("Swap path:  %s (%s)\n", cfg.SwapFile.Path, host.Label())
		fmt.Printf("Capacity:   %s total, %s used\n", formatBytes(p.TotalCapacityBytes), formatBytes(p.TotalUsedBytes))
		fmt.Println()
		if len(p.Actions) == 0 {
			fmt.Println("No swap files and nothing to create.")
			return nil
		}
		for _, a := range p.Actions {
			line := fmt.Sprintf("%-6s  %-28s %10s  prio %d", a.Op, a.Path, formatBytes(a.SizeBytes), a.Priority)
			if a.Reason != "" {
				line += "  (" + a.Reason + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSONFlag, "json", false, "emit the plan as JSON")
}
