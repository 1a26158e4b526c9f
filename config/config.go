// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package config loads the pipeline assembly configuration: display
// topology, plane capabilities, blanking limits, and the registry path.
// Configuration is wiring, not policy; the frame path never consults it
// after assembly.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	hwc "github.com/intel/hwcompose"
	"github.com/intel/hwcompose/display"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// Registry is the path of the persisted option store. Empty
	// disables persistence.
	Registry string `yaml:"registry"`

	// Blanking bounds the blanker's tracking tables.
	Blanking Blanking `yaml:"blanking"`

	// Displays lists the displays the pipeline serves, in display
	// index order.
	Displays []Display `yaml:"displays"`
}

// Blanking configures the layer blanker.
type Blanking struct {
	MaxDisplays int `yaml:"max_displays"`
	MaxSlots    int `yaml:"max_slots"`
}

// Display configures one display.
type Display struct {
	Kind   string `yaml:"kind"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Planes int    `yaml:"planes"`
	Format string `yaml:"format"`

	// FirstFence is the counter value the display timeline issues its
	// first fence at.
	FirstFence uint64 `yaml:"first_fence"`
}

// Default returns the configuration used when no file is given: one
// panel with three planes and no persistence.
func Default() *Config {
	return &Config{
		Blanking: Blanking{MaxDisplays: 16, MaxSlots: 64},
		Displays: []Display{{
			Kind:       "panel",
			Width:      1920,
			Height:     1080,
			Planes:     3,
			Format:     "bgra8",
			FirstFence: 1,
		}},
	}
}

// Load reads and validates a configuration file. Unknown fields are
// errors: a typo in wiring must not pass silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for wiring errors.
func (c *Config) Validate() error {
	if c.Blanking.MaxDisplays <= 0 || c.Blanking.MaxSlots <= 0 {
		return fmt.Errorf("config: blanking limits must be positive")
	}
	if len(c.Displays) == 0 {
		return fmt.Errorf("config: at least one display required")
	}
	if len(c.Displays) > c.Blanking.MaxDisplays {
		return fmt.Errorf("config: %d displays exceed blanking max_displays %d",
			len(c.Displays), c.Blanking.MaxDisplays)
	}
	for i, d := range c.Displays {
		if _, err := ParseKind(d.Kind); err != nil {
			return fmt.Errorf("config: display %d: %w", i, err)
		}
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("config: display %d: size %dx%d invalid", i, d.Width, d.Height)
		}
		if d.Planes <= 0 {
			return fmt.Errorf("config: display %d: plane count must be positive", i)
		}
		if _, err := ParseFormat(d.Format); err != nil {
			return fmt.Errorf("config: display %d: %w", i, err)
		}
	}
	return nil
}

// ParseKind maps a configured kind name to its display.Kind.
func ParseKind(s string) (display.Kind, error) {
	switch s {
	case "panel":
		return display.KindPanel, nil
	case "external":
		return display.KindExternal, nil
	case "virtual":
		return display.KindVirtual, nil
	case "widi":
		return display.KindWidi, nil
	case "fake":
		return display.KindFake, nil
	case "", "unspecified":
		return display.KindUnspecified, nil
	default:
		return display.KindUnspecified, fmt.Errorf("config: unknown display kind %q", s)
	}
}

// ParseFormat maps a configured format name to its scan-out format.
func ParseFormat(s string) (gputypes.TextureFormat, error) {
	switch s {
	case "rgba8":
		return gputypes.TextureFormatRGBA8Unorm, nil
	case "bgra8":
		return gputypes.TextureFormatBGRA8Unorm, nil
	case "r8":
		return gputypes.TextureFormatR8Unorm, nil
	case "":
		return gputypes.TextureFormatUndefined, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("config: unknown format %q", s)
	}
}

// Capabilities builds the capability descriptor for display d.
func (d *Display) Capabilities() display.Capabilities {
	kind, _ := ParseKind(d.Kind)
	format, _ := ParseFormat(d.Format)
	planes := make([]display.PlaneCaps, d.Planes)
	for i := range planes {
		planes[i] = display.PlaneCaps{
			Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8Unorm,
				gputypes.TextureFormatRGBA8Unorm,
			},
			Transforms: display.AllTransforms,
			Blends:     display.AllBlends,
		}
	}
	caps := display.Capabilities{
		Kind:   kind,
		Bounds: hwc.Rc(0, 0, d.Width, d.Height),
		Planes: planes,
	}
	if format != gputypes.TextureFormatUndefined {
		caps.UpdateOutputFormat(format)
	}
	return caps
}
