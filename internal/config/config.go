package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/driftdash/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Dataset
	DataPath   string `mapstructure:"data_path" yaml:"data_path"`
	SplitIndex int    `mapstructure:"split_index" yaml:"split_index"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`

	// Reports
	ReportsDir     string  `mapstructure:"reports_dir" yaml:"reports_dir"`
	Engine         string  `mapstructure:"engine" yaml:"engine"`
	HistogramBins  int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	DriftThreshold float64 `mapstructure:"drift_threshold" yaml:"drift_threshold"`
	DriftShare     float64 `mapstructure:"drift_share" yaml:"drift_share"`
	TopCategories  int     `mapstructure:"top_categories" yaml:"top_categories"`

	// Dashboard
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Keys lists the configuration keys in display order.
var Keys = []string{
	"data_path",
	"split_index",
	"delimiter",
	"reports_dir",
	"engine",
	"histogram_bins",
	"drift_threshold",
	"drift_share",
	"top_categories",
	"listen_addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "Data_for_DB_update.csv")
	v.SetDefault("split_index", 2000)
	v.SetDefault("delimiter", "")
	v.SetDefault("reports_dir", "Metrics")
	v.SetDefault("engine", "builtin")
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("drift_threshold", 0.1)
	v.SetDefault("drift_share", 0.5)
	v.SetDefault("top_categories", 10)
	v.SetDefault("listen_addr", ":8501")
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".driftdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.driftdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; CLI flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DRIFTDASH")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	switch {
	case c.SplitIndex < 1:
		return fmt.Errorf("split_index must be >= 1, got %d", c.SplitIndex)
	case len([]rune(c.Delimiter)) > 1 && c.Delimiter != `\t`:
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	case c.HistogramBins < 1:
		return fmt.Errorf("histogram_bins must be >= 1, got %d", c.HistogramBins)
	case c.DriftThreshold <= 0:
		return fmt.Errorf("drift_threshold must be > 0, got %v", c.DriftThreshold)
	case c.DriftShare <= 0 || c.DriftShare > 1:
		return fmt.Errorf("drift_share must be in (0, 1], got %v", c.DriftShare)
	case c.TopCategories < 1:
		return fmt.Errorf("top_categories must be >= 1, got %d", c.TopCategories)
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter, or 0 to pick it from the
// file extension. The two-character form `\t` means tab.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case `\t`:
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// Value returns the string form of key.
func (c *Global) Value(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "split_index":
		return fmt.Sprint(c.SplitIndex), nil
	case "delimiter":
		return c.Delimiter, nil
	case "reports_dir":
		return c.ReportsDir, nil
	case "engine":
		return c.Engine, nil
	case "histogram_bins":
		return fmt.Sprint(c.HistogramBins), nil
	case "drift_threshold":
		return fmt.Sprint(c.DriftThreshold), nil
	case "drift_share":
		return fmt.Sprint(c.DriftShare), nil
	case "top_categories":
		return fmt.Sprint(c.TopCategories), nil
	case "listen_addr":
		return c.ListenAddr, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into the field named by key. It does not validate ranges.
func (c *Global) Set(key, val string) error {
	var err error
	switch key {
	case "data_path":
		c.DataPath = val
	case "split_index":
		c.SplitIndex, err = strconv.Atoi(val)
	case "delimiter":
		c.Delimiter = val
	case "reports_dir":
		c.ReportsDir = val
	case "engine":
		c.Engine = val
	case "histogram_bins":
		c.HistogramBins, err = strconv.Atoi(val)
	case "drift_threshold":
		c.DriftThreshold, err = strconv.ParseFloat(val, 64)
	case "drift_share":
		c.DriftShare, err = strconv.ParseFloat(val, 64)
	case "top_categories":
		c.TopCategories, err = strconv.Atoi(val)
	case "listen_addr":
		c.ListenAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
