// Package config loads mapping documents and run settings for the CLI.
// Mapping documents are YAML; run settings layer viper configuration over
// environment variables so automation can tune the engine without flags.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/schema"
)

// envPrefix namespaces the environment variables viper reads, e.g.
// TABLEMATCH_WORKERS and TABLEMATCH_LOG_LEVEL.
const envPrefix = "TABLEMATCH"

// Settings are the run-level knobs outside the mapping document.
type Settings struct {
	Workers        int
	PartitionSize  int
	LogLevel       string
	LogFormat      string
	FuzzyThreshold float64
	TieEpsilon     float64
}

// SetDefaults registers setting defaults and env bindings on the global
// viper instance. Call once during CLI initialization.
func SetDefaults() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("workers", runtime.GOMAXPROCS(0))
	viper.SetDefault("partition-size", 0)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "auto")
	viper.SetDefault("fuzzy-threshold", schema.DefaultFuzzyThreshold)
	viper.SetDefault("tie-epsilon", schema.DefaultTieEpsilon)
}

// LoadSettings resolves the current settings from viper.
func LoadSettings() *Settings {
	return &Settings{
		Workers:        viper.GetInt("workers"),
		PartitionSize:  viper.GetInt("partition-size"),
		LogLevel:       viper.GetString("log-level"),
		LogFormat:      viper.GetString("log-format"),
		FuzzyThreshold: viper.GetFloat64("fuzzy-threshold"),
		TieEpsilon:     viper.GetFloat64("tie-epsilon"),
	}
}

// LoadMapping reads and validates a YAML mapping document from disk.
func LoadMapping(path string) (*schema.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.LoadError{Path: path, Err: err}
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ParseMapping decodes and validates a YAML mapping document. Unknown keys
// are rejected so typos in field declarations fail loudly instead of
// silently weakening the key schema.
func ParseMapping(data []byte) (*schema.Mapping, error) {
	var m schema.Mapping
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
		return nil, &errors.ValidationError{Field: "mapping", Message: err.Error()}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
