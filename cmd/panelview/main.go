// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// panelview drives a demo scene onto an ST7789V panel, real or
// simulated.
//
// With -sim the module is emulated in process and its output served as
// a live web page, optionally mirrored into the terminal:
//
//	panelview -sim -addr :8080 -term
//
// Without -sim the tool opens the SPI port and GPIO pins named in the
// configuration and drives the physical module.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/displayworks/panels/panelsim"
	"github.com/displayworks/panels/st7789v"
)

// termCols is the width of the -term mirror.
const termCols = 72

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config, defaults fill the gaps")
		simulate   = flag.Bool("sim", false, "emulate the module in process instead of opening hardware")
		addr       = flag.String("addr", ":8080", "HTTP listen address for the simulator view")
		term       = flag.Bool("term", false, "mirror the simulator output into the terminal")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := defaultConfig()
	if *configPath != "" {
		c, err := loadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		cfg = c
	}
	if cfg.FPS <= 0 {
		log.Fatal().Int("fps", cfg.FPS).Msg("fps must be positive")
	}
	opts, err := cfg.panelOpts()
	if err != nil {
		log.Fatal().Err(err).Msg("bad panel model")
	}
	rot, err := cfg.rotation()
	if err != nil {
		log.Fatal().Err(err).Msg("bad rotation")
	}

	var d *st7789v.Dev
	var view *panelsim.TermView

	useSim := *simulate
	if !useSim {
		dev, closer, err := openHardware(cfg, opts)
		if err != nil {
			log.Warn().Err(err).Msg("hardware open failed; falling back to the simulator")
			useSim = true
		} else {
			defer closer.Close()
			d = dev
		}
	}
	if useSim {
		simOpts, err := cfg.simOpts()
		if err != nil {
			log.Fatal().Err(err).Msg("bad panel model")
		}
		sim := panelsim.New(simOpts)
		go func() {
			log.Info().Str("addr", *addr).Msg("simulator view listening")
			if err := http.ListenAndServe(*addr, panelsim.NewHandler(sim)); err != nil {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
		if *term {
			view = panelsim.NewTermView(sim, termCols)
			_, _ = os.Stdout.WriteString("\033[2J")
		}
		d, err = st7789v.New(sim.Port(), sim.DC(), sim.RST(), sim.Backlight(), opts)
		if err != nil {
			log.Fatal().Err(err).Msg("simulated module rejected the driver")
		}
	}

	if err := d.Init(); err != nil {
		log.Fatal().Err(err).Msg("panel init failed")
	}
	if err := d.SetOrientation(rot); err != nil {
		log.Fatal().Err(err).Msg("rotation failed")
	}
	if cfg.Gamma != "" {
		curves, err := st7789v.ParseCurveSet(cfg.Gamma)
		if err != nil {
			log.Fatal().Err(err).Msg("bad gamma profile")
		}
		if err := d.SetGamma(curves); err != nil {
			log.Fatal().Err(err).Msg("gamma programming failed")
		}
	}
	if err := d.SetBacklight(true); err != nil {
		log.Debug().Err(err).Msg("backlight not wired")
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatal().Err(err).Msg("font parse failed")
	}
	face := truetype.NewFace(f, &truetype.Options{Size: 18})

	log.Info().Str("panel", d.String()).Int("fps", cfg.FPS).Msg("rendering")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	tick := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer tick.Stop()
	start := time.Now()
	for {
		select {
		case s := <-stop:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			if view != nil {
				_ = view.Halt()
			}
			if err := d.Halt(); err != nil {
				log.Error().Err(err).Msg("halt failed")
			}
			return
		case <-tick.C:
			frame := drawScene(d.Bounds(), face, time.Since(start))
			if err := d.Draw(d.Bounds(), frame, image.Point{}); err != nil {
				log.Fatal().Err(err).Msg("draw failed")
			}
			if view != nil {
				if err := view.Render(); err != nil {
					log.Error().Err(err).Msg("terminal render failed")
					view = nil
				}
			}
		}
	}
}

// openHardware opens the SPI port and GPIO pins named in cfg and
// attaches the driver. The returned closer owns the port.
func openHardware(cfg *Config, opts *st7789v.Opts) (*st7789v.Dev, spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, nil, err
	}
	dc := gpioreg.ByName(cfg.DC)
	if dc == nil {
		port.Close()
		return nil, nil, fmt.Errorf("data/command pin %q not found", cfg.DC)
	}
	var rst, bl gpio.PinOut
	if cfg.Reset != "" {
		p := gpioreg.ByName(cfg.Reset)
		if p == nil {
			port.Close()
			return nil, nil, fmt.Errorf("reset pin %q not found", cfg.Reset)
		}
		rst = p
	}
	if cfg.Backlight != "" {
		p := gpioreg.ByName(cfg.Backlight)
		if p == nil {
			port.Close()
			return nil, nil, fmt.Errorf("backlight pin %q not found", cfg.Backlight)
		}
		bl = p
	}
	d, err := st7789v.New(port, dc, rst, bl, opts)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return d, port, nil
}

// drawScene paints one frame: a sky gradient, a dot on a Lissajous
// track so a stalled refresh is obvious at a glance, and a clock.
func drawScene(b image.Rectangle, face font.Face, t time.Duration) image.Image {
	w, h := float64(b.Dx()), float64(b.Dy())
	s := t.Seconds()
	dc := gg.NewContext(b.Dx(), b.Dy())

	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, color.NRGBA{R: 0x10, G: 0x2A, B: 0x43, A: 0xFF})
	grad.AddColorStop(1, color.NRGBA{R: 0x2E, G: 0x5A, B: 0x88, A: 0xFF})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	x := w/2 + 0.38*w*math.Sin(1.3*s)
	y := h/2 + 0.38*h*math.Sin(2.1*s+math.Pi/3)
	dc.SetRGB(1.0, 0.45, 0.1)
	dc.DrawCircle(x, y, 10)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(time.Now().Format("15:04:05"), w/2, 22, 0.5, 0.5)
	return dc.Image()
}
