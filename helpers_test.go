package imgstack

import (
	mocktesting "github.com/scigolib/imgstack/internal/testing"
)

// mockSource adapts the in-memory source to PixelSource.
type mockSource struct {
	*mocktesting.MockSource
	pixelType PixelType
}

func newMockSource(x, y, z, c, t int, pixelType PixelType) mockSource {
	bps := pixelType.BytesPerSample()
	if bps == 0 {
		bps = 1
	}
	return mockSource{
		MockSource: mocktesting.NewMockSource(x, y, z, c, t, bps),
		pixelType:  pixelType,
	}
}

func (m mockSource) Dimensions() Dimensions {
	return Dimensions{SizeX: m.SizeX, SizeY: m.SizeY, SizeZ: m.SizeZ, SizeC: m.SizeC, SizeT: m.SizeT}
}

func (m mockSource) PixelType() PixelType {
	return m.pixelType
}

// mockContainer serves a fixed list of sources.
type mockContainer []PixelSource

func (c mockContainer) SeriesCount() int { return len(c) }

func (c mockContainer) Series(i int) (PixelSource, error) { return c[i], nil }

// mockMetadata adapts the in-memory metadata to SeriesMetadata for series 0.
type mockMetadata struct {
	*mocktesting.MockMetadata
}

func (m mockMetadata) PlaneCount(series int) int {
	if series != 0 {
		return 0
	}
	return len(m.Planes)
}

func (m mockMetadata) PlaneZCT(_ int, p int) ZCT {
	pl := m.Planes[p]
	return ZCT{Z: pl.Z, C: pl.C, T: pl.T}
}

func (m mockMetadata) PlanePosition(_ int, p int, axis Axis) (float64, bool) {
	v := m.Planes[p].Position[axis]
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (m mockMetadata) StageLabel(_ int, axis Axis) (float64, bool) {
	v := m.MockMetadata.StageLabel[axis]
	if v == nil {
		return 0, false
	}
	return *v, true
}

// collectWarnings returns an option recording warnings into dst.
func collectWarnings(dst *[]Warning) DecodeOption {
	return WithWarningHandler(func(w Warning) {
		*dst = append(*dst, w)
	})
}

func countKind(ws []Warning, k WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == k {
			n++
		}
	}
	return n
}
