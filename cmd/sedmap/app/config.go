package app

import (
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/sedmap/internal/blob/s3"
	"github.com/agentstation/sedmap/internal/config"
	"github.com/agentstation/sedmap/internal/transport"
	"github.com/agentstation/sedmap/pkg/bands"
	"github.com/agentstation/sedmap/pkg/constants"
)

// Configuration keys.
const (
	KeyDatabase         = "database"
	KeyUncertaintyScale = "uncertainty_scale"
	KeyHTTPTimeout      = "spectra.http_timeout"
	KeyFormat           = "format"
)

// EnvPrefix prefixes every environment variable read through Viper,
// e.g. SEDMAP_DATABASE or SEDMAP_SPECTRA_S3_REGION.
const EnvPrefix = "SEDMAP"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog and loader configuration
	Database         string
	UncertaintyScale float64
	HTTPTimeout      time.Duration
	BandAliases      []bands.Alias
	S3               s3.Config
	HTTPAuth         transport.AuthConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	envLogLevel string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by ApplyFlags)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.sedmap.yaml or ./.sedmap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault(KeyDatabase, constants.DefaultDatabase)
	v.SetDefault(KeyUncertaintyScale, math.NaN())
	v.SetDefault(KeyHTTPTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyFormat, "")

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".sedmap")
	}

	// Read config file (ignore error if not found)
	_ = v.ReadInConfig()

	aliases, err := config.BandAliases(v)
	if err != nil {
		return nil, err
	}
	auth, err := config.HTTPAuth(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Format:           v.GetString(KeyFormat),
		ConfigFile:       v.ConfigFileUsed(),
		Database:         v.GetString(KeyDatabase),
		UncertaintyScale: v.GetFloat64(KeyUncertaintyScale),
		HTTPTimeout:      v.GetDuration(KeyHTTPTimeout),
		BandAliases:      aliases,
		S3:               config.S3(v),
		HTTPAuth:         auth,
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:        getEnvOrDefault("LOG_OUTPUT", "stderr"),
		envLogLevel:      os.Getenv("LOG_LEVEL"),
	}, nil
}

// Flags holds the persistent root flags. Empty strings mean "not given".
type Flags struct {
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string
	Database string
}

// ApplyFlags lets the root flags override file and environment settings.
func (c *Config) ApplyFlags(f Flags) {
	c.Verbose = f.Verbose
	c.Quiet = f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	for dst, v := range map[*string]string{&c.Format: f.Format, &c.LogLevel: f.LogLevel, &c.Database: f.Database} {
		if v != "" {
			*dst = v
		}
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
