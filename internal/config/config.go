package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the full dashboard configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Data          DataConfig          `mapstructure:"data"`
	Remote        RemoteConfig        `mapstructure:"remote"`
	Dashboard     DashboardConfig     `mapstructure:"dashboard"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig configures the interactive web host.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// DataConfig points at the local tables.
type DataConfig struct {
	MPGPath    string `mapstructure:"mpg_path"`
	PointsPath string `mapstructure:"points_path"`
	Watch      bool   `mapstructure:"watch"`
}

// RemoteConfig points at the choropleth inputs fetched once at startup.
type RemoteConfig struct {
	BoundaryURL  string        `mapstructure:"boundary_url"`
	StatisticURL string        `mapstructure:"statistic_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// DashboardConfig holds the static page text.
type DashboardConfig struct {
	Title     string `mapstructure:"title"`
	Header    string `mapstructure:"header"`
	Subheader string `mapstructure:"subheader"`
	SourceURL string `mapstructure:"source_url"`
}

// ObservabilityConfig toggles the prometheus listener.
type ObservabilityConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
	MetricsPort   int  `mapstructure:"metrics_port"`
}

const envPrefix = "MPGDASH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.session_ttl", 30*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("data.mpg_path", "./data/mpg.csv")
	v.SetDefault("data.points_path", "./data/carshare.csv")
	v.SetDefault("data.watch", false)

	v.SetDefault("remote.boundary_url", "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json")
	v.SetDefault("remote.statistic_url", "https://raw.githubusercontent.com/plotly/datasets/master/fips-unemp-16.csv")
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("remote.user_agent", "mpg-dashboard/1.0 (github.com/Zachdehooge/mpg-dashboard)")

	v.SetDefault("dashboard.title", "Introduction to Streamlit")
	v.SetDefault("dashboard.header", "MPG Data Exploration")
	v.SetDefault("dashboard.subheader", "This is my dataset")
	v.SetDefault("dashboard.source_url", "https://archive.ics.uci.edu/ml/datasets/auto+mpg")

	v.SetDefault("observability.enable_metrics", false)
	v.SetDefault("observability.metrics_port", 9090)
}

// Load reads configuration from configPath, or from config.yaml in ./configs
// or the working directory when configPath is empty. A missing default file is
// not an error; every key has a default.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// Validate checks the values Load cannot default away.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.Data.MPGPath == "" {
		return fmt.Errorf("data.mpg_path is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if c.Observability.EnableMetrics && (c.Observability.MetricsPort <= 0 || c.Observability.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Observability.MetricsPort)
	}
	return nil
}

// ServerAddr returns host:port for the web host.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MetricsAddr returns the prometheus listen address.
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Observability.MetricsPort)
}
