// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panels is a container for TFT panel controller drivers and the
// tooling around them.
//
// Drivers live in per-controller packages (st7789v, ...) and share the
// MIPI Display Command Set vocabulary from mipidcs. panelsim provides a
// software panel for developing against without hardware.
package panels
