// Copyright (c) 2025 SciGo ImgStack Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package imgstack

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/scigolib/imgstack/internal/utils"
)

// MaxChannels is the number of channels that can be composited into RGB.
const MaxChannels = 3

// Decode composites the Z-range [zFrom, zTo) of timepoint 0 into a stack.
//
// A negative bound, or zTo < zFrom, selects every slice. zTo is clamped to
// the number of slices. Only the first MaxChannels channels are read; a
// single channel produces grayscale slices with the source's bit depth,
// several channels produce RGB slices.
//
// For 8-bit sources each lane is the truncated mean of the channels assigned
// to it by ca. For 16-bit sources the assignment is NOT applied: channel c is
// scaled to 8 bits and written to lane c directly, and lanes are never
// averaged.
//
// Decode fails with ErrUnsupportedPixelType for anything other than uint8
// or uint16 samples, and with a *PlaneReadError if any plane cannot be read.
// No partial stack is returned on failure.
func Decode(src PixelSource, zFrom, zTo int, ca ColorAssignment, opts ...DecodeOption) (*Stack, error) {
	cfg := newDecodeConfig(opts)

	dims := src.Dimensions()
	pixelType := src.PixelType()
	if pixelType != Uint8 && pixelType != Uint16 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelType, pixelType)
	}

	if dims.SizeT > 1 {
		cfg.warn(Warning{
			Kind:    MultipleTimepoints,
			Message: fmt.Sprintf("%d timepoints present, decoding only the first", dims.SizeT),
		})
	}

	channels := dims.SizeC
	if channels > MaxChannels {
		cfg.warn(Warning{
			Kind:    TooManyChannels,
			Message: fmt.Sprintf("%d channels present, decoding only the first %d", channels, MaxChannels),
		})
		channels = MaxChannels
	}

	planeSize, err := utils.PlaneSize(dims.SizeX, dims.SizeY, pixelType.BytesPerSample())
	if err != nil {
		return nil, utils.WrapError("plane size", err)
	}

	start, end := zRange(zFrom, zTo, dims.SizeZ)

	d := &sliceDecoder{
		src:       src,
		ca:        ca,
		dims:      dims,
		pixelType: pixelType,
		channels:  channels,
		planeSize: planeSize,
	}

	slices := make([]Slice, end-start)
	if cfg.workers == 1 || len(slices) < 2 {
		for i := range slices {
			s, err := d.decode(start + i)
			if err != nil {
				return nil, err
			}
			slices[i] = s
		}
	} else if err := d.decodeParallel(slices, start, cfg.workers); err != nil {
		return nil, err
	}

	cfg.logger.Debug("decoded stack",
		"slices", len(slices), "width", dims.SizeX, "height", dims.SizeY,
		"channels", channels, "pixelType", pixelType.String())

	return &Stack{
		Width:  dims.SizeX,
		Height: dims.SizeY,
		Slices: slices,
	}, nil
}

// DecodeSeries decodes one series of a container. A negative series selects
// the first one.
func DecodeSeries(c Container, series, zFrom, zTo int, ca ColorAssignment, opts ...DecodeOption) (*Stack, error) {
	if series < 0 {
		series = 0
	}
	if series >= c.SeriesCount() {
		return nil, fmt.Errorf("%w: %d (container has %d)", ErrSeriesOutOfRange, series, c.SeriesCount())
	}

	src, err := c.Series(series)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("open series %d", series), err)
	}

	return Decode(src, zFrom, zTo, ca, opts...)
}

// zRange normalizes a requested Z-range against the slice count.
func zRange(from, to, depth int) (start, end int) {
	if from < 0 || to < 0 || to < from {
		return 0, depth
	}

	start, end = from, to
	if end > depth {
		end = depth
	}
	if start > end {
		start = end
	}
	return start, end
}

type sliceDecoder struct {
	src       PixelSource
	ca        ColorAssignment
	dims      Dimensions
	pixelType PixelType
	channels  int
	planeSize int
}

func (d *sliceDecoder) decodeParallel(slices []Slice, start, workers int) error {
	errs := make([]error, len(slices))
	jobs := make(chan int)
	var failed atomic.Bool
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := d.decode(start + i)
				if err != nil {
					errs[i] = err
					failed.Store(true)
					continue
				}
				slices[i] = s
			}
		}()
	}

	for i := range slices {
		if failed.Load() {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// decode reads every channel plane of slice z and composites it.
func (d *sliceDecoder) decode(z int) (Slice, error) {
	const t = 0

	planes := make([][]byte, d.channels)
	defer func() {
		for _, p := range planes {
			if p != nil {
				utils.ReleasePlaneBuffer(p)
			}
		}
	}()

	for c := range planes {
		planes[c] = utils.GetPlaneBuffer(d.planeSize)
		index := d.src.Index(z, c, t)
		if err := d.src.ReadPlane(index, planes[c]); err != nil {
			return Slice{}, &PlaneReadError{Z: z, C: c, T: t, Index: index, Cause: err}
		}
	}

	width, height := d.dims.SizeX, d.dims.SizeY
	n := width * height
	s := Slice{
		Label:  strconv.Itoa(z + 1),
		Width:  width,
		Height: height,
	}

	if d.channels == 1 {
		if d.pixelType == Uint8 {
			s.Kind = Gray8
			s.Gray8 = make([]uint8, n)
			copy(s.Gray8, planes[0])
		} else {
			s.Kind = Gray16
			s.Gray16 = make([]uint16, n)
			utils.DecodeUint16BE(planes[0], s.Gray16)
		}
		return s, nil
	}

	s.Kind = RGB
	s.Pix = make([]uint8, 3*n)

	if d.pixelType == Uint8 {
		var weights [3]int
		for l := LaneR; l <= LaneB; l++ {
			weights[l] = d.ca.Weight(l)
		}

		var sum [3]int
		for i := 0; i < n; i++ {
			sum[0], sum[1], sum[2] = 0, 0, 0
			for c := range planes {
				for _, lane := range d.ca.Lanes(c) {
					sum[lane] += int(planes[c][i])
				}
			}
			px := s.Pix[3*i : 3*i+3]
			px[0] = uint8(sum[0] / weights[0])
			px[1] = uint8(sum[1] / weights[1])
			px[2] = uint8(sum[2] / weights[2])
		}
		return s, nil
	}

	// 16-bit: channel position selects the lane, no weighting.
	for i := 0; i < n; i++ {
		for c := range planes {
			s.Pix[3*i+c] = uint8(utils.Uint16BE(planes[c], i) >> 8)
		}
	}
	return s, nil
}
