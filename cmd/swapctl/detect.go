package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/storage"
	"github.com/biglinux/swapctl/internal/swapconf"
)

var detectJSONFlag bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Probe the storage and virtualization environment",
	Long: `detect classifies the storage backing the swap file path, identifies
the virtualization environment, and reports which block-layer tunables are
safe to apply there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}

		classifier := storage.NewClassifier()
		st := classifier.ClassifyPath(cfg.SwapFile.Path)
		virt := classifier.DetectVirtualization()

		if detectJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"swap_path":           cfg.SwapFile.Path,
				"storage_type":        st,
				"swap_priority":       storage.SwapFilePriority(cfg.SwapFile, st),
				"virtualization":      virt,
				"container":           virt.IsContainer(),
				"discard_safe":        storage.DiscardSafe(virt),
				"zram_writeback_safe": storage.WritebackSafe(virt),
			})
		}

		fmt.Printf("Swap path:       %s\n", cfg.SwapFile.Path)
		fmt.Printf("Storage:         %s\n", st.Label())
		fmt.Printf("Swap priority:   %d\n", storage.SwapFilePriority(cfg.SwapFile, st))
		fmt.Printf("Virtualization:  %s\n", virt)
		fmt.Printf("Discard safe:    %v\n", storage.DiscardSafe(virt))
		fmt.Printf("Writeback safe:  %v\n", storage.WritebackSafe(virt))
		return nil
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSONFlag, "json", false, "emit the probe result as JSON")
}
