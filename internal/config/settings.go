package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Keys lists every supported setting.
var Keys = []string{
	"column",
	"suffix",
	"preview.rows",
	"preview.format",
	"output.keep_style",
	"output.color",
	"audit.enabled",
	"audit.path",
	"watch.debounce_ms",
	"watch.recursive",
}

// Known reports whether key is a supported setting.
func Known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	if !Known(key) {
		return fmt.Errorf("unknown config key %q — supported keys: %s", key, strings.Join(Keys, ", "))
	}
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// ResetConfig deletes the config file and restores defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for _, k := range Keys {
		viper.Set(k, nil)
	}
	setDefaults()
	return nil
}

// SaveConfig writes the current config to ~/.unmerge/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Settings returns every supported key with its effective value.
func Settings() map[string]string {
	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		out[k] = viper.GetString(k)
	}
	return out
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	settings := Settings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-18s %s\n", k+":", settings[k]))
	}
	return sb.String()
}

// EnvName returns the environment variable that overrides key.
// "preview.rows" becomes "UNMERGE_PREVIEW_ROWS".
func EnvName(key string) string {
	return "UNMERGE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
