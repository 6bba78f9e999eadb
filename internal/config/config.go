// Package config loads runtime configuration from defaults, an optional YAML
// file, MEMQUEST_-prefixed environment variables, and command-line flags, in
// that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

// Config is the full runtime configuration.
type Config struct {
	Addr   string `koanf:"addr" validate:"required,hostname_port"`
	DBPath string `koanf:"db_path" validate:"required"`

	// MaxQuestLen caps quest content length in runes. Overlong blocks are
	// truncated and the truncation is reported to the uploader.
	MaxQuestLen int `koanf:"max_quest_len" validate:"gte=100"`

	// SessionSize bounds how many users can hold a pending exercise at once.
	SessionSize int `koanf:"session_size" validate:"gte=1"`

	Progression Progression `koanf:"progression"`
}

// Progression mirrors the progression engine's tuning constants.
type Progression struct {
	AcquireXP      int     `koanf:"acquire_xp" validate:"gte=0"`
	ReviewBaseXP   int     `koanf:"review_base_xp" validate:"gte=0"`
	ReviewLevelXP  int     `koanf:"review_level_xp" validate:"gte=0"`
	AbbrevCreateXP int     `koanf:"abbrev_create_xp" validate:"gte=0"`
	AbbrevRepeatXP int     `koanf:"abbrev_repeat_xp" validate:"gte=0"`
	MnemonicLevel  int     `koanf:"mnemonic_level" validate:"gte=1"`
	LegendChance   float64 `koanf:"legend_chance" validate:"gte=0,lte=1"`
	RareChance     float64 `koanf:"rare_chance" validate:"gte=0,lte=1"`
	RareLevel      int     `koanf:"rare_level" validate:"gte=1"`
	LegendLevel    int     `koanf:"legend_level" validate:"gte=1"`
}

var defaults = map[string]interface{}{
	"addr":                        "localhost:8080",
	"db_path":                     "memquest.db",
	"max_quest_len":               45000,
	"session_size":                1024,
	"progression.acquire_xp":      50,
	"progression.review_base_xp":  20,
	"progression.review_level_xp": 5,
	"progression.abbrev_create_xp": 100,
	"progression.abbrev_repeat_xp": 30,
	"progression.mnemonic_level":  5,
	"progression.legend_chance":   0.05,
	"progression.rare_chance":     0.15,
	"progression.rare_level":      3,
	"progression.legend_level":    7,
}

// Load resolves the configuration. flags may be nil when no CLI layer is in
// play (tests).
func Load(configPath string, flags *flag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue("MEMQUEST_", ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(key, "MEMQUEST_")
		key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
