// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/displayworks/panels/panelsim"
	"github.com/displayworks/panels/st7789v"
)

// Config names the wiring and the scene parameters. Fields left out of
// the YAML keep their defaults.
type Config struct {
	// SPI is the port name for spireg, empty picks the first one.
	SPI string `yaml:"spi"`
	// DC, Reset and Backlight are gpioreg pin names. Reset and
	// Backlight may be empty when those lines are not wired.
	DC        string `yaml:"dc"`
	Reset     string `yaml:"reset"`
	Backlight string `yaml:"backlight"`
	// Model selects the glass, "240x280" or "240x320".
	Model string `yaml:"model"`
	// BGR is set for glass with swapped blue and red subpixels.
	BGR bool `yaml:"bgr"`
	// Rotation turns the scene by 0, 90, 180 or 270 degrees.
	Rotation int `yaml:"rotation"`
	// FPS is the scene refresh rate.
	FPS int `yaml:"fps"`
	// Gamma holds calibration curves in the fbtft text format, one
	// curve per line of 14 hex values, positive first. Empty keeps
	// the init script's tables.
	Gamma string `yaml:"gamma"`
}

func defaultConfig() *Config {
	return &Config{
		DC:        "GPIO25",
		Reset:     "GPIO27",
		Backlight: "GPIO18",
		Model:     "240x280",
		FPS:       15,
	}
}

// loadConfig reads path over the defaults, so a partial file works.
func loadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := defaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) panelOpts() (*st7789v.Opts, error) {
	var o st7789v.Opts
	switch c.Model {
	case "240x280":
		o = st7789v.ST7789V240x280
	case "240x320":
		o = st7789v.ST7789V240x320
	default:
		return nil, fmt.Errorf("unknown panel model %q", c.Model)
	}
	o.BGR = c.BGR
	return &o, nil
}

func (c *Config) simOpts() (*panelsim.Opts, error) {
	var o panelsim.Opts
	switch c.Model {
	case "240x280":
		o = panelsim.Module240x280
	case "240x320":
		o = panelsim.Module240x320
	default:
		return nil, fmt.Errorf("unknown panel model %q", c.Model)
	}
	return &o, nil
}

func (c *Config) rotation() (st7789v.Rotation, error) {
	switch c.Rotation {
	case 0, 90, 180, 270:
		return st7789v.Rotation(c.Rotation), nil
	}
	return 0, fmt.Errorf("rotation %d is not a quarter turn", c.Rotation)
}
