// Package config provides Viper-based configuration loading for the engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for the leaderboard store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the "host:port" Redis address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the externally tunable combat balance knobs.
//
// The elemental matchup graph itself is content (see ContentConfig.ElementsFile);
// these are the scalar factors applied on top of it.
type CombatConfig struct {
	// AffinityBonus is the fractional damage bonus when the actor's element
	// matches the action's element (0.2 = +20%).
	AffinityBonus float64 `mapstructure:"affinity_bonus"`
	// AdvantageFactor is the multiplier for a type-advantage matchup.
	AdvantageFactor float64 `mapstructure:"advantage_factor"`
	// DisadvantageFactor is the multiplier for a type-disadvantage matchup.
	DisadvantageFactor float64 `mapstructure:"disadvantage_factor"`
	// ComboStep is the per-hit damage bonus from the combo counter (0.05 = +5%).
	ComboStep float64 `mapstructure:"combo_step"`
	// ComboMax is the combo count at which the combo bonus stops growing.
	ComboMax int `mapstructure:"combo_max"`
	// EnrageThreshold is the HP ratio below which an AI combatant enrages.
	EnrageThreshold float64 `mapstructure:"enrage_threshold"`
	// EnrageBonus is the fractional damage bonus while enraged (0.3 = +30%).
	EnrageBonus float64 `mapstructure:"enrage_bonus"`
	// DefensiveComboThreshold is the opposing combo count that pushes the AI
	// into its defensive state.
	DefensiveComboThreshold int `mapstructure:"defensive_combo_threshold"`
	// FleeChance is the probability that a flee attempt succeeds.
	FleeChance float64 `mapstructure:"flee_chance"`
}

// ComboMultiplier returns the damage multiplier for the given combo count.
//
// Postcondition: Returns a value in [1.0, 1.0 + ComboStep*ComboMax], monotonically
// non-decreasing in count.
func (c CombatConfig) ComboMultiplier(count int) float64 {
	if count < 0 {
		count = 0
	}
	if count > c.ComboMax {
		count = c.ComboMax
	}
	return 1.0 + c.ComboStep*float64(count)
}

// ContentConfig holds paths to the static game-content definition files.
type ContentConfig struct {
	// Dir is the root content directory.
	Dir string `mapstructure:"dir"`
	// ElementsFile is the elemental matchup table, relative to Dir.
	ElementsFile string `mapstructure:"elements_file"`
	// EffectsFile is the status-effect definition file, relative to Dir.
	EffectsFile string `mapstructure:"effects_file"`
	// ScriptDir is the Lua hook script directory, relative to Dir.
	ScriptDir string `mapstructure:"script_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRedis(c.Redis); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Host == "" {
		errs = append(errs, "redis.host must not be empty")
	}
	if r.Port < 1 || r.Port > 65535 {
		errs = append(errs, fmt.Sprintf("redis.port must be 1-65535, got %d", r.Port))
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.AffinityBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.affinity_bonus must be >= 0, got %g", c.AffinityBonus))
	}
	if c.AdvantageFactor < 1 {
		errs = append(errs, fmt.Sprintf("combat.advantage_factor must be >= 1, got %g", c.AdvantageFactor))
	}
	if c.DisadvantageFactor <= 0 || c.DisadvantageFactor > 1 {
		errs = append(errs, fmt.Sprintf("combat.disadvantage_factor must be in (0, 1], got %g", c.DisadvantageFactor))
	}
	if c.ComboStep < 0 {
		errs = append(errs, fmt.Sprintf("combat.combo_step must be >= 0, got %g", c.ComboStep))
	}
	if c.ComboMax < 1 {
		errs = append(errs, fmt.Sprintf("combat.combo_max must be >= 1, got %d", c.ComboMax))
	}
	if c.EnrageThreshold <= 0 || c.EnrageThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("combat.enrage_threshold must be in (0, 1), got %g", c.EnrageThreshold))
	}
	if c.EnrageBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.enrage_bonus must be >= 0, got %g", c.EnrageBonus))
	}
	if c.DefensiveComboThreshold < 1 {
		errs = append(errs, fmt.Sprintf("combat.defensive_combo_threshold must be >= 1, got %d", c.DefensiveComboThreshold))
	}
	if c.FleeChance < 0 || c.FleeChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.flee_chance must be in [0, 1], got %g", c.FleeChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.ElementsFile == "" {
		errs = append(errs, "content.elements_file must not be empty")
	}
	if c.EffectsFile == "" {
		errs = append(errs, "content.effects_file must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PLAGG_ prefix
	v.SetEnvPrefix("PLAGG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultCombat returns the default combat tuning. Engine tests and callers
// that do not load a config file start from these values.
//
// Postcondition: The returned CombatConfig passes validation.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		AffinityBonus:           0.20,
		AdvantageFactor:         1.5,
		DisadvantageFactor:      0.5,
		ComboStep:               0.05,
		ComboMax:                10,
		EnrageThreshold:         0.25,
		EnrageBonus:             0.30,
		DefensiveComboThreshold: 3,
		FleeChance:              0.7,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "plagg")
	v.SetDefault("database.password", "plagg")
	v.SetDefault("database.name", "plagg")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	def := DefaultCombat()
	v.SetDefault("combat.affinity_bonus", def.AffinityBonus)
	v.SetDefault("combat.advantage_factor", def.AdvantageFactor)
	v.SetDefault("combat.disadvantage_factor", def.DisadvantageFactor)
	v.SetDefault("combat.combo_step", def.ComboStep)
	v.SetDefault("combat.combo_max", def.ComboMax)
	v.SetDefault("combat.enrage_threshold", def.EnrageThreshold)
	v.SetDefault("combat.enrage_bonus", def.EnrageBonus)
	v.SetDefault("combat.defensive_combo_threshold", def.DefensiveComboThreshold)
	v.SetDefault("combat.flee_chance", def.FleeChance)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.elements_file", "elements.yaml")
	v.SetDefault("content.effects_file", "effects.yaml")
	v.SetDefault("content.script_dir", "scripts")
}
