// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Column  string `mapstructure:"column"`
	Suffix  string `mapstructure:"suffix"`
	Preview struct {
		Rows   int    `mapstructure:"rows"`
		Format string `mapstructure:"format"`
	} `mapstructure:"preview"`
	Output struct {
		KeepStyle bool `mapstructure:"keep_style"`
		Color     bool `mapstructure:"color"`
	} `mapstructure:"output"`
	Audit struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"audit"`
	Watch struct {
		DebounceMs int  `mapstructure:"debounce_ms"`
		Recursive  bool `mapstructure:"recursive"`
	} `mapstructure:"watch"`
}

// Load reads the configuration from ~/.unmerge/config.yaml, a .env file in the
// working directory, and UNMERGE_* environment variables.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	viper.SetEnvPrefix("UNMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("column", "NOTES")
	viper.SetDefault("suffix", "_processed")
	viper.SetDefault("preview.rows", 3)
	viper.SetDefault("preview.format", "json")
	viper.SetDefault("output.keep_style", false)
	viper.SetDefault("output.color", true)
	viper.SetDefault("audit.enabled", false)
	viper.SetDefault("audit.path", filepath.Join(configDir(), "audit.jsonl"))
	viper.SetDefault("watch.debounce_ms", 500)
	viper.SetDefault("watch.recursive", false)
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".unmerge"
	}
	return filepath.Join(home, ".unmerge")
}

// Dir returns the directory holding config.yaml and the audit log.
func Dir() string {
	return configDir()
}
