// Copyright (c) 2025 SciGo ImgStack Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package imgstack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/scigolib/imgstack/internal/utils"
)

// RawOption configures a raw plane source.
type RawOption func(*rawConfig)

type rawConfig struct {
	order  DimensionOrder
	offset int64
	zstd   bool
}

// WithDimensionOrder sets the order planes are stored in.
//
// Default: XYZCT
func WithDimensionOrder(o DimensionOrder) RawOption {
	return func(c *rawConfig) {
		c.order = o
	}
}

// WithHeaderOffset skips n bytes before the first plane.
func WithHeaderOffset(n int64) RawOption {
	return func(c *rawConfig) {
		c.offset = n
	}
}

// WithZstd forces zstd decompression regardless of the file name.
// Files ending in ".zst" are decompressed automatically.
func WithZstd() RawOption {
	return func(c *rawConfig) {
		c.zstd = true
	}
}

// RawSource reads header-less planes laid out back to back.
// 16-bit samples are stored big-endian.
// It is safe for concurrent use.
type RawSource struct {
	r         io.ReaderAt
	closer    io.Closer
	dims      Dimensions
	pixelType PixelType
	order     DimensionOrder
	offset    int64
	planeSize int
}

// OpenRaw opens a raw plane file.
func OpenRaw(path string, dims Dimensions, pixelType PixelType, opts ...RawOption) (*RawSource, error) {
	cfg := rawConfig{order: OrderXYZCT}
	for _, opt := range opts {
		opt(&cfg)
	}
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		cfg.zstd = true
	}

	//nolint:gosec // G304: User-provided path is intentional for an image loader
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("raw open failed", err)
	}

	if !cfg.zstd {
		src, err := newRawSource(f, dims, pixelType, cfg)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		src.closer = f
		return src, nil
	}

	defer func() { _ = f.Close() }()
	data, err := decompressZstd(f)
	if err != nil {
		return nil, utils.WrapError("raw zstd decode failed", err)
	}
	return newRawSource(bytes.NewReader(data), dims, pixelType, cfg)
}

// NewRawSource wraps an already open reader.
func NewRawSource(r io.ReaderAt, dims Dimensions, pixelType PixelType, opts ...RawOption) (*RawSource, error) {
	cfg := rawConfig{order: OrderXYZCT}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newRawSource(r, dims, pixelType, cfg)
}

func newRawSource(r io.ReaderAt, dims Dimensions, pixelType PixelType, cfg rawConfig) (*RawSource, error) {
	if err := cfg.order.Validate(); err != nil {
		return nil, err
	}
	if dims.SizeZ < 0 || dims.SizeC < 0 || dims.SizeT < 0 {
		return nil, fmt.Errorf("negative dimensions %+v", dims)
	}

	bps := pixelType.BytesPerSample()
	if bps == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelType, pixelType)
	}
	planeSize, err := utils.PlaneSize(dims.SizeX, dims.SizeY, bps)
	if err != nil {
		return nil, utils.WrapError("raw plane size", err)
	}

	return &RawSource{
		r:         r,
		dims:      dims,
		pixelType: pixelType,
		order:     cfg.order,
		offset:    cfg.offset,
		planeSize: planeSize,
	}, nil
}

func decompressZstd(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// Dimensions returns the series extent.
func (s *RawSource) Dimensions() Dimensions {
	return s.dims
}

// PixelType returns the sample format.
func (s *RawSource) PixelType() PixelType {
	return s.pixelType
}

// Index returns the linear plane index of (z, c, t).
func (s *RawSource) Index(z, c, t int) int {
	return s.order.Index(s.dims, z, c, t)
}

// ReadPlane reads plane index into buf.
func (s *RawSource) ReadPlane(index int, buf []byte) error {
	if index < 0 || index >= s.dims.PlaneCount() {
		return fmt.Errorf("plane index %d out of range [0, %d)", index, s.dims.PlaneCount())
	}
	if len(buf) != s.planeSize {
		return fmt.Errorf("buffer holds %d bytes, plane needs %d", len(buf), s.planeSize)
	}

	off := s.offset + int64(index)*int64(s.planeSize)
	n, err := s.r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("short plane read: %d of %d bytes", n, len(buf))
	}
	return err
}

// Close releases the underlying file, if any.
// It is safe to call Close multiple times.
func (s *RawSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// SeriesCount implements Container; a raw file holds a single series.
func (s *RawSource) SeriesCount() int {
	return 1
}

// Series implements Container.
func (s *RawSource) Series(index int) (PixelSource, error) {
	if index != 0 {
		return nil, fmt.Errorf("%w: %d", ErrSeriesOutOfRange, index)
	}
	return s, nil
}

// CompressRaw writes data to w as a zstd stream readable by OpenRaw.
func CompressRaw(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
