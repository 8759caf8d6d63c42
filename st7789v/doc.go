// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7789v controls TFT LCD panels built around the Sitronix
// ST7789V controller over a 4-wire serial bus.
//
// The controller holds a 240x320 RGB frame in internal GRAM and scans it
// out to the glass on its own; the bus only ever writes. Panels smaller
// than the GRAM expose a window of it, and which corner of the GRAM the
// window sits in changes with the mounting rotation. The Opts presets in
// this package carry those offsets per panel variant.
//
// The link is write-only. No command reads controller state back, so the
// driver tracks everything it needs on the host side.
//
// Dev is not safe for concurrent use, serialize access when sharing one
// across goroutines.
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789v
