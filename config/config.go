// Package config loads and validates the service configuration from a
// json/yaml file with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/sarkarn/parkinglotmgmt/core/level"
	"github.com/sarkarn/parkinglotmgmt/core/model"
	"github.com/sarkarn/parkinglotmgmt/core/scheduler"
	inframetrics "github.com/sarkarn/parkinglotmgmt/infra/metrics"
	"github.com/sarkarn/parkinglotmgmt/infra/mqtt"
)

// LevelConfig describes one level's geometry and access rules.
type LevelConfig struct {
	Number         int        `koanf:"number"`
	Name           string     `koanf:"name"`
	Type           string     `koanf:"type"`
	Rows           [][]string `koanf:"rows"`
	ElevatorAccess bool       `koanf:"elevator_access"`
	StairAccess    bool       `koanf:"stair_access"`
	AllowedTypes   []string   `koanf:"allowed_types"`
}

// ElevatorConfig describes one elevator of the fleet.
type ElevatorConfig struct {
	ID            string `koanf:"id"`
	ServedLevels  []int  `koanf:"served_levels"`
	Capacity      int    `koanf:"capacity"`
	VanCompatible bool   `koanf:"van_compatible"`
	InitialFloor  int    `koanf:"initial_floor"`
}

// PolicyConfig holds the reservation policy terms.
type PolicyConfig struct {
	MinDuration time.Duration `koanf:"min_duration"`
	MaxDuration time.Duration `koanf:"max_duration"`
	MaxAdvance  time.Duration `koanf:"max_advance"`
	GracePeriod time.Duration `koanf:"grace_period"`
}

// MetricsConfig selects the enabled sinks.
type MetricsConfig struct {
	PrometheusEnabled bool                `koanf:"prometheus_enabled"`
	PrometheusAddr    string              `koanf:"prometheus_addr"`
	InfluxEnabled     bool                `koanf:"influx_enabled"`
	SampleInterval    time.Duration       `koanf:"sample_interval"`
	Influx            inframetrics.Config `koanf:"influx"`
}

// NotifierConfig selects the notification sink.
type NotifierConfig struct {
	MQTTEnabled bool        `koanf:"mqtt_enabled"`
	MQTT        mqtt.Config `koanf:"mqtt"`
}

// LoggingConfig holds the log settings.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// SetDefaults fills unset fields.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", c.Level)
}

// Config is the root service configuration.
type Config struct {
	Levels    []LevelConfig    `koanf:"levels"`
	Elevators []ElevatorConfig `koanf:"elevators"`
	Policy    PolicyConfig     `koanf:"policy"`
	Scheduler scheduler.Config `koanf:"scheduler"`
	Metrics   MetricsConfig    `koanf:"metrics"`
	Notifier  NotifierConfig   `koanf:"notifier"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// Load reads the file, applies PKL_ environment overrides and validates
// the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PKL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pkl_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Scheduler.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural constraints before any wiring happens.
func (c *Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}
	seen := make(map[int]struct{}, len(c.Levels))
	for _, lc := range c.Levels {
		if _, dup := seen[lc.Number]; dup {
			return fmt.Errorf("duplicate level number %d", lc.Number)
		}
		seen[lc.Number] = struct{}{}
		if _, err := level.ParseType(lc.Type); err != nil {
			return fmt.Errorf("level %d: %w", lc.Number, err)
		}
		if len(lc.Rows) == 0 {
			return fmt.Errorf("level %d: no rows configured", lc.Number)
		}
		for _, row := range lc.Rows {
			for _, st := range row {
				if _, err := model.ParseSpaceType(st); err != nil {
					return fmt.Errorf("level %d: %w", lc.Number, err)
				}
			}
		}
		for _, vt := range lc.AllowedTypes {
			if _, err := model.ParseVehicleType(vt); err != nil {
				return fmt.Errorf("level %d: %w", lc.Number, err)
			}
		}
	}
	for _, ec := range c.Elevators {
		if ec.ID == "" {
			return fmt.Errorf("elevator id is required")
		}
		if ec.Capacity <= 0 {
			return fmt.Errorf("elevator %s: capacity must be positive", ec.ID)
		}
		if len(ec.ServedLevels) < 2 {
			return fmt.Errorf("elevator %s: must serve at least two levels", ec.ID)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// BuildLevels constructs the level collection from the configuration. Call
// only after Validate.
func (c *Config) BuildLevels() []*level.ParkingLevel {
	out := make([]*level.ParkingLevel, 0, len(c.Levels))
	for _, lc := range c.Levels {
		t, _ := level.ParseType(lc.Type)
		rows := make([][]model.SpaceType, 0, len(lc.Rows))
		for _, rc := range lc.Rows {
			row := make([]model.SpaceType, 0, len(rc))
			for _, st := range rc {
				parsed, _ := model.ParseSpaceType(st)
				row = append(row, parsed)
			}
			rows = append(rows, row)
		}
		allowed := make([]model.VehicleType, 0, len(lc.AllowedTypes))
		for _, vt := range lc.AllowedTypes {
			parsed, _ := model.ParseVehicleType(vt)
			allowed = append(allowed, parsed)
		}
		out = append(out, level.New(lc.Number, lc.Name, t, rows, lc.ElevatorAccess, lc.StairAccess, allowed))
	}
	return out
}
