package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration, merged from defaults, an optional
// config file and EDAQA_* environment variables. Engine thresholds live here
// only as CLI/service defaults — every evaluation still receives its own
// copy per call.
type Config struct {
	ListenAddr string `mapstructure:"listenAddr"`
	OutDir     string `mapstructure:"outDir"`
	LogDir     string `mapstructure:"logDir"`
	Verbose    bool   `mapstructure:"verbose"`

	Sep      string `mapstructure:"sep"`
	Encoding string `mapstructure:"encoding"`

	TopKCategories  int     `mapstructure:"topKCategories"`
	MaxHistColumns  int     `mapstructure:"maxHistColumns"`
	MinMissingShare float64 `mapstructure:"minMissingShare"`

	MissingThreshold         float64 `mapstructure:"missingThreshold"`
	HighCardinalityThreshold int     `mapstructure:"highCardinalityThreshold"`
	ZeroThreshold            float64 `mapstructure:"zeroThreshold"`
}

// Load reads configuration. cfgFile overrides the default lookup of
// .edaqa.yaml in the working directory.
func Load(cfgFile string) (*Config, error) {
	// .env first so env overrides below can see it.
	_ = godotenv.Load()

	viper.SetDefault("listenAddr", ":8080")
	viper.SetDefault("outDir", "reports")
	viper.SetDefault("logDir", "logs")
	viper.SetDefault("verbose", false)
	viper.SetDefault("sep", ",")
	viper.SetDefault("encoding", "utf-8")
	viper.SetDefault("topKCategories", 5)
	viper.SetDefault("maxHistColumns", 6)
	viper.SetDefault("minMissingShare", 0.1)
	viper.SetDefault("missingThreshold", 0.3)
	viper.SetDefault("highCardinalityThreshold", 50)
	viper.SetDefault("zeroThreshold", 0.5)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName(".edaqa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		// Missing config file is fine; defaults and env cover everything.
		_ = viper.ReadInConfig()
	}

	viper.SetEnvPrefix("EDAQA")
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SepRune returns the configured field separator as a rune, defaulting to a
// comma when the value is empty or multi-byte garbage.
func (c *Config) SepRune() rune {
	for _, r := range c.Sep {
		return r
	}
	return ','
}
