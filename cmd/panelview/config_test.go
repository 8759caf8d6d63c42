// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayworks/panels/st7789v"
)

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: 240x320\nrotation: 90\n"), 0644))

	c, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "240x320", c.Model)
	assert.Equal(t, 90, c.Rotation)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "GPIO25", c.DC)
	assert.Equal(t, 15, c.FPS)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigRotation(t *testing.T) {
	c := defaultConfig()
	c.Rotation = 90
	r, err := c.rotation()
	require.NoError(t, err)
	assert.Equal(t, st7789v.Rotation90, r)

	c.Rotation = 45
	_, err = c.rotation()
	assert.Error(t, err)
}

func TestConfigModel(t *testing.T) {
	c := defaultConfig()
	opts, err := c.panelOpts()
	require.NoError(t, err)
	assert.Equal(t, 280, opts.H)
	so, err := c.simOpts()
	require.NoError(t, err)
	assert.Equal(t, 280, so.H)

	c.Model = "320x480"
	_, err = c.panelOpts()
	assert.Error(t, err)
	_, err = c.simOpts()
	assert.Error(t, err)
}

func TestConfigBGR(t *testing.T) {
	c := defaultConfig()
	c.BGR = true
	opts, err := c.panelOpts()
	require.NoError(t, err)
	assert.True(t, opts.BGR)
	// The shared preset must not pick up per-config flags.
	assert.False(t, st7789v.ST7789V240x280.BGR)
}

func TestLoadConfigGamma(t *testing.T) {
	const doc = `model: 240x280
gamma: |
  d0 05 0a 09 08 05 2e 44 45 0f 17 16 2b 33
  d0 05 0a 09 08 05 2e 43 45 0f 16 16 2b 33
`
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := loadConfig(path)
	require.NoError(t, err)
	curves, err := st7789v.ParseCurveSet(c.Gamma)
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, byte(0xD0), curves[0][0])
	assert.Equal(t, byte(0x44), curves[0][7])
	assert.Equal(t, byte(0x43), curves[1][7])
}
