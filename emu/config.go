package emu

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Config holds the settings a host program needs to stand up an Emulator
// without touching Go code: where RAM ends (for the argv bootstrap), the
// initial stack pointer, and how verbose tracing should be.
type Config struct {
	// RAMEnd is the top of the simulated address space, used to place the
	// argv strings and pointer table below it.
	RAMEnd uint32 `yaml:"ram_end"`

	// InitialSP, when nonzero, is written to R13 after argv bootstrap runs,
	// replacing the value SetProgArgs computes. Zero keeps that value.
	InitialSP uint32 `yaml:"initial_sp"`

	// TraceLevel is the logr verbosity passed to V() calls the tracer
	// issues; 0 disables per-instruction tracing, 1 logs every retired
	// instruction, 2 also logs annulled ones.
	TraceLevel int `yaml:"trace_level"`

	// Args are the program arguments placed by SetProgArgs.
	Args []string `yaml:"args"`
}

// DefaultConfig returns a Config with a 16MiB address space and tracing
// disabled.
func DefaultConfig() *Config {
	return &Config{
		RAMEnd:     16 * 1024 * 1024,
		TraceLevel: 0,
	}
}

// LoadConfig reads a Config from a YAML file, starting from
// DefaultConfig's values so a partial file only overrides what it names.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emulator config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse emulator config: %w", err)
	}

	return config, nil
}

// SaveConfig writes c to path as YAML.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize emulator config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write emulator config file: %w", err)
	}
	return nil
}

// Validate checks that c describes a usable address space.
func (c *Config) Validate() error {
	if c.RAMEnd < ArgPointersOffset {
		return fmt.Errorf("ram_end must be large enough to hold the argv bootstrap region")
	}
	return nil
}
