package config

import "github.com/spf13/pflag"

// ApplyFlags overlays flags the user set explicitly on cfg. Flags left at
// their defaults do not override the config file or environment.
func ApplyFlags(cfg *Config, flags *pflag.FlagSet) {
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("column") {
		cfg.Column, _ = flags.GetString("column")
	}
	if changed("suffix") {
		cfg.Suffix, _ = flags.GetString("suffix")
	}
	if changed("keep-style") {
		cfg.Output.KeepStyle, _ = flags.GetBool("keep-style")
	}
	if changed("preview") {
		cfg.Preview.Rows, _ = flags.GetInt("preview")
	}
	if changed("preview-format") {
		cfg.Preview.Format, _ = flags.GetString("preview-format")
	}
	if changed("no-color") {
		noColor, _ := flags.GetBool("no-color")
		cfg.Output.Color = !noColor
	}
}

// LoadWithFlags loads the configuration and applies explicitly set flags.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	ApplyFlags(cfg, flags)
	return cfg, nil
}
