package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/seqsift/pkg/multiqc"
)

// configName is the config file name without extension.
const configName = ".seqsift"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for seqsift settings.
const envPrefix = "SEQSIFT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("report.path", "")
	viperCfg.SetDefault("samples", []string{})
	viperCfg.SetDefault("sample_sheet", "")
	viperCfg.SetDefault("file_labels", defaultFileLabels())

	viperCfg.SetDefault("outliers.statistic", DefaultStatistic)
	viperCfg.SetDefault("outliers.threshold", DefaultOutlierThreshold)
	viperCfg.SetDefault("outliers.fill_value", DefaultFillValue)
}

// defaultFileLabels renders the standard label mapping as config entries,
// sorted by substring for a stable default order.
func defaultFileLabels() []map[string]string {
	labels := multiqc.DefaultFileLabels()

	entries := make([]map[string]string, 0, len(labels))
	for _, substr := range slices.Sorted(maps.Keys(labels)) {
		entries = append(entries, map[string]string{
			"substring": substr,
			"label":     labels[substr],
		})
	}

	return entries
}
