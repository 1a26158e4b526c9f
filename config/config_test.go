// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/intel/hwcompose/display"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if len(cfg.Displays) != 1 || cfg.Displays[0].Kind != "panel" {
		t.Errorf("default displays = %+v", cfg.Displays)
	}
	if cfg.Registry != "" {
		t.Errorf("default enables persistence: %q", cfg.Registry)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
registry: /tmp/hwc-options
displays:
  - kind: panel
    width: 2560
    height: 1440
    planes: 4
    format: rgba8
    first_fence: 10
  - kind: external
    width: 1920
    height: 1080
    planes: 2
    format: bgra8
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Registry != "/tmp/hwc-options" {
		t.Errorf("Registry = %q", cfg.Registry)
	}
	// Blanking limits absent from the document keep their defaults.
	if cfg.Blanking.MaxDisplays != 16 || cfg.Blanking.MaxSlots != 64 {
		t.Errorf("Blanking = %+v, want defaults", cfg.Blanking)
	}
	if len(cfg.Displays) != 2 {
		t.Fatalf("displays = %d, want 2", len(cfg.Displays))
	}
	if d := cfg.Displays[0]; d.Width != 2560 || d.FirstFence != 10 {
		t.Errorf("display 0 = %+v", d)
	}
	if d := cfg.Displays[1]; d.Kind != "external" || d.FirstFence != 0 {
		t.Errorf("display 1 = %+v", d)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
displays:
  - kind: panel
    width: 1920
    heigth: 1080
    planes: 3
`))
	if err == nil || !strings.Contains(err.Error(), "heigth") {
		t.Errorf("misspelled field not rejected: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"noDisplays", func(c *Config) { c.Displays = nil }, "at least one display"},
		{"badKind", func(c *Config) { c.Displays[0].Kind = "plasma" }, "unknown display kind"},
		{"zeroWidth", func(c *Config) { c.Displays[0].Width = 0 }, "size"},
		{"negativeHeight", func(c *Config) { c.Displays[0].Height = -1 }, "size"},
		{"zeroPlanes", func(c *Config) { c.Displays[0].Planes = 0 }, "plane count"},
		{"badFormat", func(c *Config) { c.Displays[0].Format = "yuv9" }, "unknown format"},
		{"zeroBlanking", func(c *Config) { c.Blanking.MaxSlots = 0 }, "blanking limits"},
		{
			"moreDisplaysThanBlanking",
			func(c *Config) {
				c.Blanking.MaxDisplays = 1
				c.Displays = append(c.Displays, c.Displays[0])
			},
			"exceed blanking",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want display.Kind
		ok   bool
	}{
		{"panel", display.KindPanel, true},
		{"external", display.KindExternal, true},
		{"virtual", display.KindVirtual, true},
		{"widi", display.KindWidi, true},
		{"fake", display.KindFake, true},
		{"", display.KindUnspecified, true},
		{"unspecified", display.KindUnspecified, true},
		{"PANEL", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want gputypes.TextureFormat
		ok   bool
	}{
		{"rgba8", gputypes.TextureFormatRGBA8Unorm, true},
		{"bgra8", gputypes.TextureFormatBGRA8Unorm, true},
		{"r8", gputypes.TextureFormatR8Unorm, true},
		{"", gputypes.TextureFormatUndefined, true},
		{"nv12", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDisplayCapabilities(t *testing.T) {
	d := Display{Kind: "external", Width: 1280, Height: 720, Planes: 2, Format: "rgba8"}
	caps := d.Capabilities()

	if caps.Kind != display.KindExternal {
		t.Errorf("Kind = %v", caps.Kind)
	}
	if caps.Bounds.Width() != 1280 || caps.Bounds.Height() != 720 {
		t.Errorf("Bounds = %v", caps.Bounds)
	}
	if len(caps.Planes) != 2 {
		t.Fatalf("planes = %d", len(caps.Planes))
	}
	if caps.OutputFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("OutputFormat = %v", caps.OutputFormat)
	}
	// The output format leads every plane's list.
	for i, p := range caps.Planes {
		if len(p.Formats) == 0 || p.Formats[0] != gputypes.TextureFormatRGBA8Unorm {
			t.Errorf("plane %d formats = %v", i, p.Formats)
		}
	}
}
