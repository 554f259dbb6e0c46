package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Geocode    GeocodeConfig    `yaml:"geocode" mapstructure:"geocode"`
	USGS       USGSConfig       `yaml:"usgs" mapstructure:"usgs"`
	What3Words What3WordsConfig `yaml:"what3words" mapstructure:"what3words"`
	NASA       NASAConfig       `yaml:"nasa" mapstructure:"nasa"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// GeocodeConfig configures the geocoding chain and its result cache.
type GeocodeConfig struct {
	OpenCageKey      string `yaml:"opencage_key" mapstructure:"opencage_key"`
	CacheEntries     int    `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLMinutes  int    `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	BatchConcurrency int    `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
}

// USGSConfig configures the NWIS instantaneous values gateway.
type USGSConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// What3WordsConfig holds the what3words API key for the gateway.
type What3WordsConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// NASAConfig holds the NASA API key for the imagery gateway.
type NASAConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the settings a given run mode depends on. Mode is one of
// "serve" or "migrate".
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for sqlite")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for postgres")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Geocode.CacheEntries < 0 {
			problems = append(problems, "geocode.cache_entries must be >= 0")
		}
		if c.Geocode.BatchConcurrency < 1 {
			problems = append(problems, "geocode.batch_concurrency must be >= 1")
		}
	case "migrate":
		checkStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GAGEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "gagemap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("geocode.cache_entries", 512)
	v.SetDefault("geocode.cache_ttl_minutes", 60)
	v.SetDefault("geocode.batch_concurrency", 4)
	v.SetDefault("usgs.base_url", "https://waterservices.usgs.gov")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
