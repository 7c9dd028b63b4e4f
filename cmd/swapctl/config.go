package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/applyctl"
	"github.com/biglinux/swapctl/internal/swapcfg"
	"github.com/biglinux/swapctl/internal/swapconf"
)

var configRestartFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and apply the daemon configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var configRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the configuration in the daemon's file format",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}
		fmt.Print(swapconf.Render(cfg))
		return nil
	},
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the stock configuration in the daemon's file format",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(swapconf.Render(swapcfg.Default()))
	},
}

var configApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Re-normalize the config file and write it back through pkexec",
	Long: `apply loads the configuration, clamps every value into its documented
range, renders it back to the daemon's format, and writes the result to the
config path via pkexec. With --restart the service is restarted afterwards;
disabled mode stops and disables the service instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}
		applier := applyctl.NewApplier(configPathFlag)

		res := applier.Apply(cmd.Context(), swapconf.Render(cfg), configRestartFlag && cfg.Mode != swapcfg.ModeDisabled)
		if res.Outcome == applyctl.Failed {
			return fmt.Errorf("apply failed: %s", res.Detail)
		}

		// Disabled mode means the daemon should not run at all.
		if configRestartFlag && cfg.Mode == swapcfg.ModeDisabled {
			if sres := applier.DisableService(cmd.Context()); sres.Outcome != applyctl.Applied {
				fmt.Printf("%s: %s\n", applyctl.PartialApply, "configuration written but service disable failed: "+sres.Detail)
				return nil
			}
		}

		fmt.Printf("%s: %s\n", res.Outcome, res.Detail)
		return nil
	},
}

func init() {
	configApplyCmd.Flags().BoolVar(&configRestartFlag, "restart", false, "restart (or, for disabled mode, stop) the service after writing")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRenderCmd)
	configCmd.AddCommand(configDefaultsCmd)
	configCmd.AddCommand(configApplyCmd)
}
