package imgstack

import (
	"fmt"
	"strings"
)

// PixelType identifies the sample format of a pixel source.
type PixelType int

// Pixel types. Only Uint8 and Uint16 can be decoded.
const (
	PixelUnknown PixelType = iota
	Uint8
	Uint16
	Int8
	Int16
	Uint32
	Int32
	Float32
	Float64
)

var pixelTypeNames = [...]string{
	PixelUnknown: "unknown",
	Uint8:        "uint8",
	Uint16:       "uint16",
	Int8:         "int8",
	Int16:        "int16",
	Uint32:       "uint32",
	Int32:        "int32",
	Float32:      "float",
	Float64:      "double",
}

// String returns the conventional name of the pixel type.
func (p PixelType) String() string {
	if p < PixelUnknown || p > Float64 {
		return fmt.Sprintf("PixelType(%d)", int(p))
	}
	return pixelTypeNames[p]
}

// BytesPerSample returns the storage size of one sample, or 0 if unknown.
func (p PixelType) BytesPerSample() int {
	switch p {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// Dimensions describes the extent of one series.
type Dimensions struct {
	SizeX int
	SizeY int
	SizeZ int
	SizeC int
	SizeT int
}

// PlaneCount returns the number of (z, c, t) planes.
func (d Dimensions) PlaneCount() int {
	return d.SizeZ * d.SizeC * d.SizeT
}

// PixelSource is one series of a multi-dimensional image, already bound to
// that series. Implementations are read-only from the decoder's perspective.
type PixelSource interface {
	Indexer

	// Dimensions returns the series extent.
	Dimensions() Dimensions

	// PixelType returns the sample format.
	PixelType() PixelType

	// ReadPlane fills buf with the raw bytes of the plane at the given linear
	// index. 16-bit samples are big-endian. len(buf) is exactly one plane.
	ReadPlane(index int, buf []byte) error
}

// Indexer maps a (z, c, t) triple to a linear plane index.
type Indexer interface {
	Index(z, c, t int) int
}

// Container holds one or more independently addressable series.
type Container interface {
	SeriesCount() int
	Series(index int) (PixelSource, error)
}

// DimensionOrder names the storage order of planes, fastest varying first,
// e.g. "XYZCT".
type DimensionOrder string

// Common dimension orders.
const (
	OrderXYZCT DimensionOrder = "XYZCT"
	OrderXYZTC DimensionOrder = "XYZTC"
	OrderXYCZT DimensionOrder = "XYCZT"
	OrderXYCTZ DimensionOrder = "XYCTZ"
	OrderXYTZC DimensionOrder = "XYTZC"
	OrderXYTCZ DimensionOrder = "XYTCZ"
)

// Validate checks that the order is "XY" followed by a permutation of Z, C
// and T.
func (o DimensionOrder) Validate() error {
	s := strings.ToUpper(string(o))
	if len(s) != 5 || s[:2] != "XY" {
		return fmt.Errorf("invalid dimension order %q", string(o))
	}
	rest := s[2:]
	if !strings.Contains(rest, "Z") || !strings.Contains(rest, "C") || !strings.Contains(rest, "T") {
		return fmt.Errorf("invalid dimension order %q", string(o))
	}
	return nil
}

// Index computes the linear plane index of (z, c, t) for this order.
// The order must be valid; out-of-range coordinates are not checked.
func (o DimensionOrder) Index(d Dimensions, z, c, t int) int {
	s := strings.ToUpper(string(o))
	if len(s) != 5 {
		s = string(OrderXYZCT)
	}

	index, stride := 0, 1
	for i := 2; i < 5; i++ {
		switch s[i] {
		case 'Z':
			index += z * stride
			stride *= d.SizeZ
		case 'C':
			index += c * stride
			stride *= d.SizeC
		case 'T':
			index += t * stride
			stride *= d.SizeT
		}
	}
	return index
}

// ZCT is the (z, c, t) coordinate of one plane.
type ZCT struct {
	Z, C, T int
}

// Axis selects a stage coordinate.
type Axis int

// Stage axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// SeriesMetadata exposes the plane and stage metadata of a container.
type SeriesMetadata interface {
	// PlaneCount returns the number of plane entries for the series.
	PlaneCount(series int) int

	// PlaneZCT returns the coordinate of plane entry p.
	PlaneZCT(series, p int) ZCT

	// PlanePosition returns the stage position of plane entry p along the
	// axis, if recorded.
	PlanePosition(series, p int, axis Axis) (float64, bool)

	// StageLabel returns the global stage label of the series along the
	// axis, if available.
	StageLabel(series int, axis Axis) (float64, bool)
}
