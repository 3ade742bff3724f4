package main

import (
	"fmt"
	"io"
	"strings"

	"wxkey/coloransi"
	"wxkey/config"
	"wxkey/status"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// app carries what PersistentPreRunE loaded to the subcommands.
type app struct {
	cfgFile string
	asJSON  bool
	noColor bool

	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "wxkey",
		Short:         "Recover the database and image keys of a running Weixin client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable ANSI colors")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newDbKeyCmd(a),
		newImageKeyCmd(a),
		newTemplatesCmd(a),
		newRegionsCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads in config file and ENV variables if set.
func (a *app) loadConfig() error {
	v := a.v
	config.SetDefaults(v)

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WXKEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func levelColor(level status.Level) coloransi.ColorCode {
	switch level {
	case status.Success:
		return coloransi.BrightGreen
	case status.Error:
		return coloransi.BrightRed
	default:
		return coloransi.White
	}
}

// statusPrinter renders status messages; in JSON mode they go to stderr so stdout stays parseable.
func (a *app) statusPrinter(out io.Writer) status.Func {
	return func(message string, level status.Level) {
		line := fmt.Sprintf("[%s] %s", level, message)
		if !a.noColor {
			line = coloransi.Foreground(levelColor(level), line)
		}
		fmt.Fprintln(out, line)
	}
}

func (a *app) printJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func (a *app) statusWriter(cmd *cobra.Command) io.Writer {
	if a.asJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
