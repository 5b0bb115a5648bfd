// Package config loads the importer configuration and sets up logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Validation modes, one per command family.
const (
	ModeBuild  = "build"
	ModeImport = "import"
	ModeFetch  = "fetch"
	ModeStore  = "store"
	ModeServe  = "serve"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	BCE    BCEConfig    `yaml:"bce" mapstructure:"bce"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres or sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// BCEConfig configures the extract download and the dataset build.
type BCEConfig struct {
	DataDir        string   `yaml:"data_dir" mapstructure:"data_dir"`
	NaceVersion    string   `yaml:"nace_version" mapstructure:"nace_version"`
	NaceCodes      []string `yaml:"nace_codes" mapstructure:"nace_codes"`
	Source         string   `yaml:"source" mapstructure:"source"`
	NormalizeNames bool     `yaml:"normalize_names" mapstructure:"normalize_names"`
	ExcludeNames   []string `yaml:"exclude_names" mapstructure:"exclude_names"`
	BatchSize      int      `yaml:"batch_size" mapstructure:"batch_size"`

	DownloadURL      string `yaml:"download_url" mapstructure:"download_url"`
	DownloadUser     string `yaml:"download_user" mapstructure:"download_user"`
	DownloadPassword string `yaml:"download_password" mapstructure:"download_password"`
	TempDir          string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServerConfig configures the status HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
// configFile overrides the default ./config.yaml lookup when non-empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("BCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("bce.data_dir", "")
	v.SetDefault("bce.nace_version", "2025")
	v.SetDefault("bce.nace_codes", []string{"47.22", "47.221", "47.222"})
	v.SetDefault("bce.source", "bce-kbo")
	v.SetDefault("bce.normalize_names", false)
	v.SetDefault("bce.exclude_names", []string{"renmans", "colruyt", "dufrais"})
	v.SetDefault("bce.batch_size", 1000)
	v.SetDefault("bce.download_url", "")
	v.SetDefault("bce.download_user", "")
	v.SetDefault("bce.download_password", "")
	v.SetDefault("bce.temp_dir", "")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by the given mode.
func (c *Config) Validate(mode string) error {
	var errs []string

	requireDataDir := func() {
		if c.BCE.DataDir == "" {
			errs = append(errs, "bce.data_dir is required")
		}
	}
	requireStore := func() {
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case ModeBuild:
		requireDataDir()
	case ModeImport:
		requireDataDir()
		requireStore()
		if c.BCE.BatchSize <= 0 {
			errs = append(errs, "bce.batch_size must be > 0")
		}
	case ModeFetch:
		requireDataDir()
		if c.BCE.DownloadURL == "" {
			errs = append(errs, "bce.download_url is required")
		}
	case ModeStore:
		requireStore()
	case ModeServe:
		requireStore()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
