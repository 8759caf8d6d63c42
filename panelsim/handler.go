// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"image/png"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// refreshInterval is how often live connections poll the panel for a
// new generation. Panels refresh in the tens of hertz, so does this.
const refreshInterval = 50 * time.Millisecond

// writeWait bounds a single websocket frame write.
const writeWait = 200 * time.Millisecond

// Handler serves a view of a simulated panel:
//
//	GET /           page that keeps itself current over /live
//	GET /frame.png  current output as PNG
//	GET /live       websocket pushing a PNG whenever output changes
type Handler struct {
	panel    *Panel
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler showing p.
func NewHandler(p *Panel) *Handler {
	return &Handler{
		panel: p,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/index.html":
		h.serveIndex(w, r)
	case "/frame.png":
		h.serveFrame(w, r)
	case "/live":
		h.serveLive(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) encodeFrame() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, h.panel.Snapshot()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) serveFrame(w http.ResponseWriter, r *http.Request) {
	b, err := h.encodeFrame()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	// The read side only exists to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	tick := time.NewTicker(refreshInterval)
	defer tick.Stop()
	var last uint64
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			gen := h.panel.Generation()
			if gen == last {
				continue
			}
			b, err := h.encodeFrame()
			if err != nil {
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.BinaryMessage, b); err != nil {
				return
			}
			last = gen
		}
	}
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>panelsim</title></head>
<body style="margin:0;height:100vh;display:flex;align-items:center;justify-content:center;background:#20242b">
<img id="panel" src="/frame.png" style="image-rendering:pixelated;border:14px solid #0c0e11;border-radius:6px">
<script>
const img = document.getElementById("panel");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/live");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
  const url = URL.createObjectURL(ev.data);
  img.onload = () => URL.revokeObjectURL(url);
  img.src = url;
};
</script>
</body>
</html>
`

var _ http.Handler = &Handler{}
