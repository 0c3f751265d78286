// Copyright (c) 2025 SciGo ImgStack Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package imgstack

import (
	"log/slog"
)

// DecodeOption configures a decode call.
// This follows the Functional Options Pattern.
//
// Example:
//
//	stack, err := imgstack.Decode(src, 0, 10, imgstack.ParseColorAssignment("rgb"),
//	    imgstack.WithWorkers(4),
//	    imgstack.WithWarningHandler(func(w imgstack.Warning) { log.Println(w) }),
//	)
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	workers int
	warn    WarningHandler
	logger  *slog.Logger
}

func newDecodeConfig(opts []DecodeOption) *decodeConfig {
	cfg := &decodeConfig{workers: 1}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.warn == nil {
		logger := cfg.logger
		cfg.warn = func(w Warning) {
			logger.Warn(w.Message, "kind", w.Kind.String())
		}
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg
}

// WithWorkers sets the number of Z-slices decoded concurrently.
//
// Values above 1 require the source's ReadPlane to be safe for concurrent
// use. The resulting stack is always ordered by ascending Z.
//
// Default: 1 (sequential)
func WithWorkers(n int) DecodeOption {
	return func(c *decodeConfig) {
		c.workers = n
	}
}

// WithWarningHandler routes non-fatal warnings to h instead of the logger.
func WithWarningHandler(h WarningHandler) DecodeOption {
	return func(c *decodeConfig) {
		c.warn = h
	}
}

// WithLogger sets the logger used for warnings and diagnostics.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) DecodeOption {
	return func(c *decodeConfig) {
		c.logger = l
	}
}
