// Copyright (c) 2025 SciGo ImgStack Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package imgstack

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/scigolib/hdf5"

	"github.com/scigolib/imgstack/internal/utils"
)

// Attribute names of the HDF5 series layout.
//
// Each root-level dataset carrying a shape attribute is one series, stored
// as an integer array of shape [T, C, Z, Y, X].
const (
	AttrShape         = "shape"
	AttrBitsPerSample = "bits_per_sample"
	AttrPlanePosX     = "plane_position_x"
	AttrPlanePosY     = "plane_position_y"
	AttrPlanePosZ     = "plane_position_z"
	AttrStageLabel    = "stage_label"
)

var planePositionAttrs = [3]string{AttrPlanePosX, AttrPlanePosY, AttrPlanePosZ}

// ErrNoSeries is returned when an HDF5 file holds no image series.
var ErrNoSeries = errors.New("no image series found")

// HDF5Container exposes the image series of an HDF5 file. It implements
// both Container and SeriesMetadata.
type HDF5Container struct {
	file   *hdf5.File
	series []*hdf5Series
}

// hdf5Series is one dataset, bound as a PixelSource.
type hdf5Series struct {
	ds        *hdf5.Dataset
	name      string
	dims      Dimensions
	pixelType PixelType
	positions [3][]float64
	stage     [3]float64
	hasStage  [3]bool
}

// OpenHDF5 opens an HDF5 file and indexes its image series by dataset name.
func OpenHDF5(path string) (*HDF5Container, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, utils.WrapError("hdf5 open failed", err)
	}

	c := &HDF5Container{file: f}
	for _, child := range f.Root().Children() {
		ds, ok := child.(*hdf5.Dataset)
		if !ok {
			continue
		}

		s, err := loadHDF5Series(ds)
		if err != nil {
			_ = f.Close()
			return nil, utils.WrapError(fmt.Sprintf("series %q", ds.Name()), err)
		}
		if s != nil {
			c.series = append(c.series, s)
		}
	}

	if len(c.series) == 0 {
		_ = f.Close()
		return nil, ErrNoSeries
	}

	sort.Slice(c.series, func(i, j int) bool {
		return c.series[i].name < c.series[j].name
	})

	return c, nil
}

// loadHDF5Series reads the series attributes. Datasets without a shape
// attribute are not image series and yield nil.
func loadHDF5Series(ds *hdf5.Dataset) (*hdf5Series, error) {
	names, err := ds.ListAttributes()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, AttrShape) {
		return nil, nil
	}

	shape, err := readInts(ds, AttrShape)
	if err != nil {
		return nil, err
	}
	if len(shape) != 5 {
		return nil, fmt.Errorf("shape has %d dimensions, want 5 (T, C, Z, Y, X)", len(shape))
	}
	for _, v := range shape {
		if v < 0 || v > math.MaxInt32 {
			return nil, fmt.Errorf("invalid shape %v", shape)
		}
	}

	s := &hdf5Series{
		ds:   ds,
		name: ds.Name(),
		dims: Dimensions{
			SizeT: int(shape[0]),
			SizeC: int(shape[1]),
			SizeZ: int(shape[2]),
			SizeY: int(shape[3]),
			SizeX: int(shape[4]),
		},
	}

	if slices.Contains(names, AttrBitsPerSample) {
		bits, err := readInts(ds, AttrBitsPerSample)
		if err != nil {
			return nil, err
		}
		if len(bits) == 1 {
			s.pixelType = pixelTypeForBits(bits[0])
		}
	}

	for axis, attr := range planePositionAttrs {
		if !slices.Contains(names, attr) {
			continue
		}
		if s.positions[axis], err = readFloats(ds, attr); err != nil {
			return nil, err
		}
	}

	if slices.Contains(names, AttrStageLabel) {
		label, err := readFloats(ds, AttrStageLabel)
		if err != nil {
			return nil, err
		}
		for axis := 0; axis < len(label) && axis < 3; axis++ {
			s.stage[axis] = label[axis]
			s.hasStage[axis] = true
		}
	}

	return s, nil
}

func pixelTypeForBits(bits int64) PixelType {
	switch bits {
	case 8:
		return Uint8
	case 16:
		return Uint16
	case 32:
		return Uint32
	default:
		return PixelUnknown
	}
}

func readInts(ds *hdf5.Dataset, name string) ([]int64, error) {
	v, err := ds.ReadAttribute(name)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case int64:
		return []int64{x}, nil
	case int32:
		return []int64{int64(x)}, nil
	case []int64:
		return x, nil
	case []int32:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("attribute %q: unexpected type %T", name, v)
	}
}

func readFloats(ds *hdf5.Dataset, name string) ([]float64, error) {
	v, err := ds.ReadAttribute(name)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	case []float64:
		return x, nil
	case []float32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("attribute %q: unexpected type %T", name, v)
	}
}

// Close closes the underlying file.
// It is safe to call Close multiple times.
func (c *HDF5Container) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// SeriesCount returns the number of image series.
func (c *HDF5Container) SeriesCount() int {
	return len(c.series)
}

// SeriesName returns the dataset name of a series.
func (c *HDF5Container) SeriesName(index int) string {
	if index < 0 || index >= len(c.series) {
		return ""
	}
	return c.series[index].name
}

// Series returns the pixel source of a series.
func (c *HDF5Container) Series(index int) (PixelSource, error) {
	if index < 0 || index >= len(c.series) {
		return nil, fmt.Errorf("%w: %d (container has %d)", ErrSeriesOutOfRange, index, len(c.series))
	}
	return c.series[index], nil
}

// PlaneCount returns the number of plane entries of a series.
func (c *HDF5Container) PlaneCount(series int) int {
	if series < 0 || series >= len(c.series) {
		return 0
	}
	return c.series[series].dims.PlaneCount()
}

// PlaneZCT returns the coordinate of plane entry p. Entries are stored with
// Z varying fastest, then C, then T.
func (c *HDF5Container) PlaneZCT(series, p int) ZCT {
	d := c.series[series].dims
	return ZCT{
		Z: p % d.SizeZ,
		C: (p / d.SizeZ) % d.SizeC,
		T: p / (d.SizeZ * d.SizeC),
	}
}

// PlanePosition returns the recorded position of plane entry p.
func (c *HDF5Container) PlanePosition(series, p int, axis Axis) (float64, bool) {
	if series < 0 || series >= len(c.series) || axis < AxisX || axis > AxisZ {
		return 0, false
	}
	pos := c.series[series].positions[axis]
	if p < 0 || p >= len(pos) || math.IsNaN(pos[p]) {
		return 0, false
	}
	return pos[p], true
}

// StageLabel returns the series stage label along the axis.
func (c *HDF5Container) StageLabel(series int, axis Axis) (float64, bool) {
	if series < 0 || series >= len(c.series) || axis < AxisX || axis > AxisZ {
		return 0, false
	}
	s := c.series[series]
	return s.stage[axis], s.hasStage[axis]
}

func (s *hdf5Series) Dimensions() Dimensions {
	return s.dims
}

func (s *hdf5Series) PixelType() PixelType {
	return s.pixelType
}

func (s *hdf5Series) Index(z, c, t int) int {
	return OrderXYZCT.Index(s.dims, z, c, t)
}

func (s *hdf5Series) ReadPlane(index int, buf []byte) error {
	d := s.dims
	if index < 0 || index >= d.PlaneCount() {
		return fmt.Errorf("plane index %d out of range [0, %d)", index, d.PlaneCount())
	}

	bps := s.pixelType.BytesPerSample()
	n := d.SizeX * d.SizeY
	if bps == 0 || len(buf) != n*bps {
		return fmt.Errorf("buffer holds %d bytes, plane needs %d", len(buf), n*bps)
	}

	zct := ZCT{
		Z: index % d.SizeZ,
		C: (index / d.SizeZ) % d.SizeC,
		T: index / (d.SizeZ * d.SizeC),
	}
	start := []uint64{uint64(zct.T), uint64(zct.C), uint64(zct.Z), 0, 0}
	count := []uint64{1, 1, 1, uint64(d.SizeY), uint64(d.SizeX)}

	data, err := s.ds.ReadSlice(start, count)
	if err != nil {
		return err
	}
	values, ok := data.([]float64)
	if !ok {
		return fmt.Errorf("unexpected sample type %T", data)
	}
	if len(values) != n {
		return fmt.Errorf("read %d samples, plane has %d", len(values), n)
	}

	maxValue := float64(uint64(1)<<(8*bps) - 1)
	for i, v := range values {
		v = math.Max(0, math.Min(v, maxValue))
		switch bps {
		case 1:
			buf[i] = uint8(v)
		case 2:
			utils.PutUint16BE(buf, i, uint16(v))
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedPixelType, s.pixelType)
		}
	}
	return nil
}
