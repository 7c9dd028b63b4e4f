package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/applyctl"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Control the systemd-swap service",
}

func init() {
	for _, sub := range []struct {
		use, short string
		call       func(*applyctl.Applier, context.Context) applyctl.Result
	}{
		{"restart", "Restart the service", (*applyctl.Applier).RestartService},
		{"enable", "Enable and start the service", (*applyctl.Applier).EnableService},
		{"disable", "Stop and disable the service", (*applyctl.Applier).DisableService},
	} {
		call := sub.call
		serviceCmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				res := call(applyctl.NewApplier(configPathFlag), cmd.Context())
				if res.Outcome != applyctl.Applied {
					return fmt.Errorf("%s", res.Detail)
				}
				fmt.Println("ok")
				return nil
			},
		})
	}
}
