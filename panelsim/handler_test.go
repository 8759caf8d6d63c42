// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim_test

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayworks/panels/panelsim"
	"github.com/displayworks/panels/st7789v"
)

func TestHandlerFrame(t *testing.T) {
	sim := panelsim.New(&panelsim.Module240x280)
	srv := httptest.NewServer(panelsim.NewHandler(sim))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/frame.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
	assert.Equal(t, 280, img.Bounds().Dy())
}

func TestHandlerIndex(t *testing.T) {
	sim := panelsim.New(&panelsim.Module240x280)
	srv := httptest.NewServer(panelsim.NewHandler(sim))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp2, err := http.Get(srv.URL + "/nothing-here")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestHandlerLive(t *testing.T) {
	sim := panelsim.New(&panelsim.Module240x280)
	srv := httptest.NewServer(panelsim.NewHandler(sim))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	c, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer c.Close()

	// The panel is fresh, so the first poll already has a generation
	// to report and pushes a frame.
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	mt, data, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())

	// Driving the panel bumps the generation and a second frame
	// follows.
	d, err := st7789v.New(sim.Port(), sim.DC(), sim.RST(), sim.Backlight(), &st7789v.ST7789V240x280)
	require.NoError(t, err)
	require.NoError(t, d.Init())

	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	mt, data, err = c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}
