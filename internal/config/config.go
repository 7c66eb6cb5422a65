// Package config loads application configuration and initializes the
// global logger.
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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
	Dedupe  DedupeConfig  `yaml:"dedupe" mapstructure:"dedupe"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BoundingBox is an inclusive lat/lng rectangle.
type BoundingBox struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// Contains reports whether the point falls inside the box, bounds inclusive.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// QualityConfig holds the tunables of the quality scorer. Defaults and
// validation live in the quality package.
type QualityConfig struct {
	// Check weights. The composite score is the weighted mean of the
	// five check scores.
	RequiredWeight   float64 `yaml:"required_weight" mapstructure:"required_weight"`
	CoordinateWeight float64 `yaml:"coordinate_weight" mapstructure:"coordinate_weight"`
	LyricsWeight     float64 `yaml:"lyrics_weight" mapstructure:"lyrics_weight"`
	HintWeight       float64 `yaml:"hint_weight" mapstructure:"hint_weight"`
	CopyrightWeight  float64 `yaml:"copyright_weight" mapstructure:"copyright_weight"`

	// Grade thresholds on the composite score, inclusive lower bounds.
	GradeAThreshold float64 `yaml:"grade_a_threshold" mapstructure:"grade_a_threshold"`
	GradeBThreshold float64 `yaml:"grade_b_threshold" mapstructure:"grade_b_threshold"`
	GradeCThreshold float64 `yaml:"grade_c_threshold" mapstructure:"grade_c_threshold"`

	// Geographic sanity bounds.
	JapanBox        BoundingBox            `yaml:"japan_box" mapstructure:"japan_box"`
	PrefectureBoxes map[string]BoundingBox `yaml:"prefecture_boxes" mapstructure:"prefecture_boxes"`

	// Lyrics check.
	MinLyricsRunes int      `yaml:"min_lyrics_runes" mapstructure:"min_lyrics_runes"`
	AnthemKeywords []string `yaml:"anthem_keywords" mapstructure:"anthem_keywords"`
	MaskToken      string   `yaml:"mask_token" mapstructure:"mask_token"`

	// Hint check.
	MinHintRunes int `yaml:"min_hint_runes" mapstructure:"min_hint_runes"`

	// Copyright check: creators known to be public domain, and the
	// composition-year cutoff for the post-war copyright-term heuristic.
	PublicDomainCreators []string `yaml:"public_domain_creators" mapstructure:"public_domain_creators"`
	PublicDomainYearMax  int      `yaml:"public_domain_year_max" mapstructure:"public_domain_year_max"`
}

// DedupeConfig configures duplicate detection.
type DedupeConfig struct {
	// ProximityRadiusKM is the great-circle distance below which two
	// records are flagged as coordinate duplicates.
	ProximityRadiusKM float64 `yaml:"proximity_radius_km" mapstructure:"proximity_radius_km"`
	// Workers bounds the parallel proximity pass; <=1 runs serially.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "curator.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dedupe.proximity_radius_km", 0.1)
	v.SetDefault("dedupe.workers", 1)
	v.SetDefault("report.output_dir", ".")

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
