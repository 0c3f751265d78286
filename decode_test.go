package imgstack

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SingleChannel8Bit(t *testing.T) {
	src := newMockSource(1, 1, 1, 1, 1, Uint8)
	src.Planes[0][0] = 0xC8

	stack, err := Decode(src, -1, -1, ParseColorAssignment("r"))
	require.NoError(t, err)
	require.Equal(t, 1, stack.Len())

	s := stack.Slices[0]
	assert.Equal(t, "1", s.Label)
	assert.Equal(t, Gray8, s.Kind)
	assert.Equal(t, []uint8{0xC8}, s.Gray8)
}

func TestDecode_SingleChannel16Bit(t *testing.T) {
	src := newMockSource(2, 1, 1, 1, 1, Uint16)
	src.Fill(0, 0, 0, func(x, _ int) uint16 { return uint16(0x1234 + x) })

	stack, err := Decode(src, -1, -1, ParseColorAssignment("g"))
	require.NoError(t, err)

	s := stack.Slices[0]
	assert.Equal(t, Gray16, s.Kind)
	assert.Equal(t, []uint16{0x1234, 0x1235}, s.Gray16)
}

func TestDecode_TwoChannels8Bit(t *testing.T) {
	src := newMockSource(3, 2, 1, 2, 1, Uint8)
	src.Fill(0, 0, 0, func(x, y int) uint16 { return uint16(10*x + y) })
	src.Fill(0, 1, 0, func(x, y int) uint16 { return uint16(200 + x + 10*y) })

	stack, err := Decode(src, -1, -1, ParseColorAssignment("rg"))
	require.NoError(t, err)

	s := stack.Slices[0]
	require.Equal(t, RGB, s.Kind)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			r, g, b := s.RGBAt(x, y)
			assert.Equal(t, uint8(10*x+y), r)
			assert.Equal(t, uint8(200+x+10*y), g)
			assert.Equal(t, uint8(0), b)
		}
	}
}

func TestDecode_WeightedLane8Bit(t *testing.T) {
	src := newMockSource(1, 1, 1, 3, 1, Uint8)
	src.Planes[0][0] = 255
	src.Planes[1][0] = 100
	src.Planes[2][0] = 7

	stack, err := Decode(src, -1, -1, ParseColorAssignment("rrx"))
	require.NoError(t, err)

	r, g, b := stack.Slices[0].RGBAt(0, 0)
	assert.Equal(t, uint8((255+100)/2), r) // Truncating division.
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), b)
}

func TestDecode_MultiChannel16BitIgnoresAssignment(t *testing.T) {
	src := newMockSource(1, 1, 1, 3, 1, Uint16)
	src.Fill(0, 0, 0, func(_, _ int) uint16 { return 0xFFFF })
	src.Fill(0, 1, 0, func(_, _ int) uint16 { return 0x8001 })
	src.Fill(0, 2, 0, func(_, _ int) uint16 { return 0x00FF })

	// Channels land on lanes by position even though the assignment says
	// otherwise, and two channels on one lane are not averaged.
	stack, err := Decode(src, -1, -1, ParseColorAssignment("bbb"))
	require.NoError(t, err)

	r, g, b := stack.Slices[0].RGBAt(0, 0)
	assert.Equal(t, uint8(0xFF), r)
	assert.Equal(t, uint8(0x80), g)
	assert.Equal(t, uint8(0x00), b)
}

func TestDecode_ZRange(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		labels   []string
	}{
		{"sub range", 1, 3, []string{"2", "3"}},
		{"negative from", -1, 3, []string{"1", "2", "3", "4", "5"}},
		{"negative to", 2, -1, []string{"1", "2", "3", "4", "5"}},
		{"to before from", 3, 1, []string{"1", "2", "3", "4", "5"}},
		{"to clamped", 3, 99, []string{"4", "5"}},
		{"empty range", 2, 2, []string{}},
		{"from past end", 7, 9, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newMockSource(2, 2, 5, 1, 1, Uint8)
			for z := 0; z < 5; z++ {
				src.Fill(z, 0, 0, func(_, _ int) uint16 { return uint16(z) })
			}

			stack, err := Decode(src, tt.from, tt.to, ParseColorAssignment("r"))
			require.NoError(t, err)
			assert.Equal(t, tt.labels, stack.Labels())

			for _, s := range stack.Slices {
				z, err := strconv.Atoi(s.Label)
				require.NoError(t, err)
				assert.Equal(t, uint8(z-1), s.Gray8[0], "slice %s", s.Label)
			}
		})
	}
}

func TestDecode_TooManyChannels(t *testing.T) {
	src := newMockSource(1, 1, 3, 4, 1, Uint8)

	var warnings []Warning
	stack, err := Decode(src, -1, -1, ParseColorAssignment("rgbr"), collectWarnings(&warnings))
	require.NoError(t, err)
	require.Equal(t, 3, stack.Len())

	assert.Equal(t, 1, countKind(warnings, TooManyChannels))
	assert.Equal(t, 0, countKind(warnings, MultipleTimepoints))

	for _, index := range src.Reads() {
		assert.NotEqual(t, 3, index/src.SizeZ%src.SizeC, "channel 3 must not be read")
	}
	assert.Len(t, src.Reads(), 3*3)
}

func TestDecode_MultipleTimepoints(t *testing.T) {
	src := newMockSource(1, 1, 2, 1, 3, Uint8)
	src.Planes[src.Index(0, 0, 0)][0] = 1
	src.Planes[src.Index(0, 0, 1)][0] = 2

	var warnings []Warning
	stack, err := Decode(src, -1, -1, ParseColorAssignment("r"), collectWarnings(&warnings))
	require.NoError(t, err)

	assert.Equal(t, 1, countKind(warnings, MultipleTimepoints))
	assert.Equal(t, uint8(1), stack.Slices[0].Gray8[0])
	for _, index := range src.Reads() {
		assert.Less(t, index, src.SizeZ*src.SizeC, "only timepoint 0 is read")
	}
}

func TestDecode_UnsupportedPixelType(t *testing.T) {
	for _, pt := range []PixelType{PixelUnknown, Int8, Int16, Float32, Float64} {
		t.Run(pt.String(), func(t *testing.T) {
			src := newMockSource(1, 1, 1, 1, 1, pt)

			var warnings []Warning
			stack, err := Decode(src, -1, -1, ParseColorAssignment("r"), collectWarnings(&warnings))
			require.ErrorIs(t, err, ErrUnsupportedPixelType)
			assert.Nil(t, stack)
			assert.Empty(t, src.Reads())
			assert.Empty(t, warnings)
		})
	}
}

func TestDecode_PlaneReadError(t *testing.T) {
	src := newMockSource(2, 2, 4, 2, 1, Uint8)
	src.FailIndex = src.Index(2, 1, 0)

	stack, err := Decode(src, -1, -1, ParseColorAssignment("rg"))
	require.Error(t, err)
	assert.Nil(t, stack)

	var perr *PlaneReadError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Z)
	assert.Equal(t, 1, perr.C)
	assert.Equal(t, src.FailIndex, perr.Index)
}

func TestDecode_ParallelMatchesSequential(t *testing.T) {
	src := newMockSource(5, 4, 9, 3, 1, Uint8)
	for z := 0; z < 9; z++ {
		for c := 0; c < 3; c++ {
			src.Fill(z, c, 0, func(x, y int) uint16 { return uint16(z*31 + c*17 + x*3 + y) })
		}
	}
	ca := ParseColorAssignment("rgg")

	sequential, err := Decode(src, -1, -1, ca)
	require.NoError(t, err)

	parallel, err := Decode(src, -1, -1, ca, WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, sequential.Labels(), parallel.Labels())
	assert.Equal(t, sequential.Slices, parallel.Slices)
}

func TestDecode_ParallelReadError(t *testing.T) {
	src := newMockSource(2, 2, 6, 1, 1, Uint8)
	src.FailIndex = src.Index(4, 0, 0)

	stack, err := Decode(src, -1, -1, ParseColorAssignment("r"), WithWorkers(3))
	var perr *PlaneReadError
	require.ErrorAs(t, err, &perr)
	assert.Nil(t, stack)
}

func TestDecodeSeries(t *testing.T) {
	first := newMockSource(1, 1, 1, 1, 1, Uint8)
	first.Planes[0][0] = 11
	second := newMockSource(1, 1, 1, 1, 1, Uint8)
	second.Planes[0][0] = 22
	c := mockContainer{first, second}

	stack, err := DecodeSeries(c, 1, -1, -1, ParseColorAssignment("r"))
	require.NoError(t, err)
	assert.Equal(t, uint8(22), stack.Slices[0].Gray8[0])

	stack, err = DecodeSeries(c, -1, -1, -1, ParseColorAssignment("r"))
	require.NoError(t, err)
	assert.Equal(t, uint8(11), stack.Slices[0].Gray8[0])

	_, err = DecodeSeries(c, 2, -1, -1, ParseColorAssignment("r"))
	require.ErrorIs(t, err, ErrSeriesOutOfRange)
}
