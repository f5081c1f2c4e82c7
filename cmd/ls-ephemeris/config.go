package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ephemeris "github.com/litescript/ls-ephemeris"
)

// Config is the optional YAML configuration file.
type Config struct {
	// Ephemeris data files, tried in order before any fallback file.
	Files         []string `yaml:"files"`
	FallbackFiles []string `yaml:"fallback_files"`

	LogLevel string `yaml:"log_level"`

	// Bodies listed by name or minor-planet number. Empty means the
	// default planet set.
	Bodies []string `yaml:"bodies"`

	Sidereal *SiderealConfig `yaml:"sidereal"`
	Observer *ObserverConfig `yaml:"observer"`
}

// SiderealConfig selects a sidereal zodiac. A user mode takes the
// reference epoch and offset directly.
type SiderealConfig struct {
	Mode     string  `yaml:"mode"`
	T0       float64 `yaml:"t0"`
	Ayanamsa float64 `yaml:"ayanamsa"`
}

// ObserverConfig places the observer for topocentric positions.
type ObserverConfig struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
	AltitudeM float64 `yaml:"altitude_m"`
}

// LoadConfig reads a YAML config file. A missing path yields an empty
// config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply wires the configuration into an ephemeris context.
func (cfg *Config) Apply(c *ephemeris.Context) error {
	for _, path := range cfg.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read ephemeris file: %w", err)
		}
		if err := c.LoadFile(path, data); err != nil {
			return err
		}
	}
	for _, path := range cfg.FallbackFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fallback file: %w", err)
		}
		if err := c.LoadFallbackFile(path, data); err != nil {
			return err
		}
	}

	if s := cfg.Sidereal; s != nil {
		if s.Mode == "user" {
			c.SetSiderealMode(ephemeris.SidUser, 0, s.T0, s.Ayanamsa)
		} else {
			mode, err := ephemeris.ParseSidMode(s.Mode)
			if err != nil {
				return err
			}
			c.SetSiderealMode(mode, 0, 0, 0)
		}
	}
	if o := cfg.Observer; o != nil {
		c.SetTopo(o.Longitude, o.Latitude, o.AltitudeM)
	}
	return nil
}

// BodyList resolves the configured body names, falling back to def on
// an empty list.
func (cfg *Config) BodyList(def []ephemeris.Body) ([]ephemeris.Body, error) {
	if len(cfg.Bodies) == 0 {
		return def, nil
	}
	out := make([]ephemeris.Body, 0, len(cfg.Bodies))
	for _, name := range cfg.Bodies {
		b, err := ephemeris.ParseBody(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
