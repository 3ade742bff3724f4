package main

import (
	"fmt"

	"wxkey/process"
	"wxkey/process/memory_map"
	"wxkey/recovery"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type regionReport struct {
	PID     process.ProcessID          `json:"pid"`
	Total   int                        `json:"total"`
	Targets []memory_map.MemoryMapItem `json:"targets"`
	Bytes   uint64                     `json:"bytes"`
}

func newRegionsCmd(a *app) *cobra.Command {
	var pid uint32

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the committed private regions the image key scan would read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := recovery.NewDefaultEngine(a.cfg)
			target := process.ProcessID(pid)
			if target == 0 {
				found, err := engine.Locator.FindPID(a.cfg.Target.ImageNames...)
				if err != nil {
					return err
				}
				target = found
			}

			proc, err := engine.OpenProcess(target)
			if err != nil {
				return err
			}
			defer proc.Close()

			if err := proc.UpdateMemoryMap(); err != nil {
				return err
			}
			mm, err := proc.GetMemoryMap()
			if err != nil {
				return err
			}

			targets := lo.Filter(mm, func(it memory_map.MemoryMapItem, _ int) bool {
				return it.IsScanTarget() && it.Size <= a.cfg.Scan.MaxRegionSize
			})
			rep := regionReport{
				PID:     target,
				Total:   len(mm),
				Targets: targets,
				Bytes:   lo.SumBy(targets, func(it memory_map.MemoryMapItem) uint64 { return it.Size }),
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, rep)
			}
			for _, it := range rep.Targets {
				fmt.Fprintln(out, it.String())
			}
			fmt.Fprintf(out, "%d of %d regions, %s\n", len(rep.Targets), rep.Total, process.ProcessMemorySize(rep.Bytes).ToString())
			return nil
		},
	}
	cmd.Flags().Uint32VarP(&pid, "pid", "p", 0, "target process id (default: first running client)")
	return cmd
}
