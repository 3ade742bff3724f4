package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"wxkey/recovery"

	"github.com/spf13/cobra"
)

var errFailed = errors.New("key recovery failed")

func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func newDbKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dbkey",
		Short: "Restart the client, hook it and print the 64-character database key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext(cmd)
			defer cancel()

			engine := recovery.NewDefaultEngine(a.cfg)
			res := engine.AutoGetDbKey(ctx, a.statusPrinter(a.statusWriter(cmd)))

			if a.asJSON {
				if err := a.printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else if res.Success {
				fmt.Fprintln(cmd.OutOrStdout(), res.Key)
			}
			if !res.Success {
				return fmt.Errorf("%w: %s", errFailed, res.Error)
			}
			return nil
		},
	}
}

func newImageKeyCmd(a *app) *cobra.Command {
	var accountDir string

	cmd := &cobra.Command{
		Use:   "imagekey",
		Short: "Derive the image XOR key and scan the client's memory for the AES key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext(cmd)
			defer cancel()

			engine := recovery.NewDefaultEngine(a.cfg)
			res := engine.AutoGetImageKey(ctx, accountDir, a.statusPrinter(a.statusWriter(cmd)))

			if a.asJSON {
				if err := a.printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else if res.Success {
				fmt.Fprintf(cmd.OutOrStdout(), "xor: 0x%02X\naes: %s\n", *res.XorKey, res.AesKey)
			}
			if !res.Success {
				return fmt.Errorf("%w: %s", errFailed, res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&accountDir, "account", "a", "", "account directory or a root holding account directories")
	return cmd
}
