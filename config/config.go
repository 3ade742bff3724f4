// Package config holds the tunables of the key recovery engine.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Target    TargetConfig    `mapstructure:"target" yaml:"target"`
	Timing    TimingConfig    `mapstructure:"timing" yaml:"timing"`
	Readiness ReadinessConfig `mapstructure:"readiness" yaml:"readiness"`
	Hook      HookConfig      `mapstructure:"hook" yaml:"hook"`
	Image     ImageConfig     `mapstructure:"image" yaml:"image"`
	Scan      ScanConfig      `mapstructure:"scan" yaml:"scan"`
}

// TargetConfig identifies the application whose keys are recovered.
type TargetConfig struct {
	ImageNames   []string `mapstructure:"image_names" yaml:"image_names"`
	WindowTitles []string `mapstructure:"window_titles" yaml:"window_titles"`
	// InstallPath skips install path discovery when set.
	InstallPath string `mapstructure:"install_path" yaml:"install_path"`
}

// TimingConfig holds the polling intervals and deadlines.
type TimingConfig struct {
	WindowPollInterval time.Duration `mapstructure:"window_poll_interval" yaml:"window_poll_interval"`
	WindowTimeout      time.Duration `mapstructure:"window_timeout" yaml:"window_timeout"`
	ReadyTimeout       time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	KillSettleDelay    time.Duration `mapstructure:"kill_settle_delay" yaml:"kill_settle_delay"`
	PostReadyDelay     time.Duration `mapstructure:"post_ready_delay" yaml:"post_ready_delay"`
	HookPollInterval   time.Duration `mapstructure:"hook_poll_interval" yaml:"hook_poll_interval"`
	HookTimeout        time.Duration `mapstructure:"hook_timeout" yaml:"hook_timeout"`
	StatusDrainPerPoll int           `mapstructure:"status_drain_per_poll" yaml:"status_drain_per_poll"`
}

// ReadinessConfig holds the child-window heuristic thresholds.
// They are tuned against one UI framework version and are expected to drift.
type ReadinessConfig struct {
	MinChildren          int      `mapstructure:"min_children" yaml:"min_children"`
	MinClassMatches      int      `mapstructure:"min_class_matches" yaml:"min_class_matches"`
	MinClassLength       int      `mapstructure:"min_class_length" yaml:"min_class_length"`
	MinChildrenWithClass int      `mapstructure:"min_children_with_class" yaml:"min_children_with_class"`
	TitleMarkers         []string `mapstructure:"title_markers" yaml:"title_markers"`
	ClassMarkers         []string `mapstructure:"class_markers" yaml:"class_markers"`
}

// HookConfig locates the native hook module.
type HookConfig struct {
	ModulePath  string `mapstructure:"module_path" yaml:"module_path"`
	ModuleEnv   string `mapstructure:"module_env" yaml:"module_env"`
	ModuleName  string `mapstructure:"module_name" yaml:"module_name"`
	ResourceDir string `mapstructure:"resource_dir" yaml:"resource_dir"`
}

// ImageConfig drives template discovery for the image key.
type ImageConfig struct {
	AccountDir        string `mapstructure:"account_dir" yaml:"account_dir"`
	AccountRoot       string `mapstructure:"account_root" yaml:"account_root"`
	TemplateSuffix    string `mapstructure:"template_suffix" yaml:"template_suffix"`
	MaxTemplateFiles  int    `mapstructure:"max_template_files" yaml:"max_template_files"`
	KeepTemplateFiles int    `mapstructure:"keep_template_files" yaml:"keep_template_files"`
}

// ScanConfig bounds the memory scan.
type ScanConfig struct {
	MaxRegionSize uint64 `mapstructure:"max_region_size" yaml:"max_region_size"`
	ProgressEvery int    `mapstructure:"progress_every" yaml:"progress_every"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Target --
	v.SetDefault("target.image_names", []string{"Weixin.exe", "WeChat.exe"})
	v.SetDefault("target.window_titles", []string{"微信", "WeChat", "Weixin"})
	v.SetDefault("target.install_path", "")

	// -- Timing --
	v.SetDefault("timing.window_poll_interval", "500ms")
	v.SetDefault("timing.window_timeout", "25s")
	v.SetDefault("timing.ready_timeout", "15s")
	v.SetDefault("timing.kill_settle_delay", "2s")
	v.SetDefault("timing.post_ready_delay", "1s")
	v.SetDefault("timing.hook_poll_interval", "120ms")
	v.SetDefault("timing.hook_timeout", "60s")
	v.SetDefault("timing.status_drain_per_poll", 5)

	// -- Readiness --
	v.SetDefault("readiness.min_children", 14)
	v.SetDefault("readiness.min_class_matches", 3)
	v.SetDefault("readiness.min_class_length", 5)
	v.SetDefault("readiness.min_children_with_class", 5)
	v.SetDefault("readiness.title_markers", []string{"微信", "聊天", "通讯录", "WeChat", "Weixin", "Chats"})
	v.SetDefault("readiness.class_markers", []string{"Qt5", "Qt6", "QWindow", "Chrome_WidgetWin", "mmui", "WeChatMainWnd"})

	// -- Hook --
	v.SetDefault("hook.module_path", "")
	v.SetDefault("hook.module_env", "WXKEY_HOOK_DLL")
	v.SetDefault("hook.module_name", "wx_key.dll")
	v.SetDefault("hook.resource_dir", "resources")

	// -- Image --
	v.SetDefault("image.account_dir", "")
	v.SetDefault("image.account_root", "~/Documents/xwechat_files")
	v.SetDefault("image.template_suffix", "_t.dat")
	v.SetDefault("image.max_template_files", 32)
	v.SetDefault("image.keep_template_files", 16)

	// -- Scan --
	v.SetDefault("scan.max_region_size", 100*1024*1024)
	v.SetDefault("scan.progress_every", 10)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.BindEnv("image.account_dir", "WXKEY_ACCOUNT_DIR")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Target.InstallPath, &c.Hook.ModulePath, &c.Image.AccountDir, &c.Image.AccountRoot} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if len(c.Target.ImageNames) == 0 {
		return fmt.Errorf("target.image_names must not be empty")
	}
	if len(c.Target.WindowTitles) == 0 {
		return fmt.Errorf("target.window_titles must not be empty")
	}
	if err := c.Timing.Validate(); err != nil {
		return err
	}
	if c.Readiness.MinChildren <= 0 || c.Readiness.MinClassMatches <= 0 || c.Readiness.MinChildrenWithClass <= 0 {
		return fmt.Errorf("readiness thresholds must be positive integers")
	}
	if c.Hook.ModuleName == "" {
		return fmt.Errorf("hook.module_name is a required configuration field")
	}
	if c.Image.MaxTemplateFiles <= 0 || c.Image.KeepTemplateFiles <= 0 {
		return fmt.Errorf("image template limits must be positive integers")
	}
	if c.Image.KeepTemplateFiles > c.Image.MaxTemplateFiles {
		return fmt.Errorf("image.keep_template_files must not exceed image.max_template_files")
	}
	if c.Scan.MaxRegionSize == 0 {
		return fmt.Errorf("scan.max_region_size must be positive")
	}
	if c.Scan.ProgressEvery <= 0 {
		return fmt.Errorf("scan.progress_every must be a positive integer")
	}
	return nil
}

// Validate checks that every interval and deadline is positive.
func (t *TimingConfig) Validate() error {
	durations := map[string]time.Duration{
		"timing.window_poll_interval": t.WindowPollInterval,
		"timing.window_timeout":       t.WindowTimeout,
		"timing.ready_timeout":        t.ReadyTimeout,
		"timing.hook_poll_interval":   t.HookPollInterval,
		"timing.hook_timeout":         t.HookTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}
	if t.KillSettleDelay < 0 || t.PostReadyDelay < 0 {
		return fmt.Errorf("timing delays must not be negative")
	}
	if t.StatusDrainPerPoll <= 0 {
		return fmt.Errorf("timing.status_drain_per_poll must be a positive integer")
	}
	return nil
}
