package main

import (
	"fmt"

	"wxkey/datfile"
	"wxkey/hexdump"

	"github.com/spf13/cobra"
)

type templateReport struct {
	AccountDir string   `json:"accountDir"`
	Templates  []string `json:"templates"`
	XorKey     *uint8   `json:"xorKey,omitempty"`
	Ciphertext string   `json:"ciphertext,omitempty"`
}

func newTemplatesCmd(a *app) *cobra.Command {
	var accountDir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template files of an account and what can be derived from them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if accountDir == "" {
				accountDir = cfg.Image.AccountDir
			}
			dir, err := datfile.AutoLocate(accountDir, cfg.Image.AccountRoot)
			if err != nil {
				return err
			}
			files, err := datfile.NewTemplateLocator(cfg.Image.TemplateSuffix, cfg.Image.MaxTemplateFiles, cfg.Image.KeepTemplateFiles).Find(dir)
			if err != nil {
				return err
			}

			rep := templateReport{AccountDir: dir, Templates: files}
			if k, err := datfile.DeriveXorKey(files); err == nil {
				rep.XorKey = &k
			}
			block, blockErr := datfile.ExtractCiphertext(files)
			if blockErr == nil {
				rep.Ciphertext = fmt.Sprintf("%x", block)
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, rep)
			}

			fmt.Fprintln(out, "account:", rep.AccountDir)
			for _, f := range rep.Templates {
				fmt.Fprintln(out, " ", f)
			}
			if rep.XorKey != nil {
				fmt.Fprintf(out, "xor: 0x%02X\n", *rep.XorKey)
			} else {
				fmt.Fprintln(out, "xor: not derivable")
			}
			if blockErr != nil {
				fmt.Fprintln(out, "ciphertext:", blockErr)
				return nil
			}
			fmt.Fprintln(out, "ciphertext:")
			hexdump.DumpToWriter(out, block, hexdump.Options{
				BytesPerLine: 16,
				StartOffset:  datfile.CiphertextOffset,
				Color:        !a.noColor,
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&accountDir, "account", "a", "", "account directory or a root holding account directories")
	return cmd
}
