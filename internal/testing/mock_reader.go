// Package testing provides test doubles for imgstack collaborators.
package testing

import (
	"errors"
	"sync"
)

// MockSource is an in-memory pixel source with planes stored in XYZCT order.
// Its methods mirror imgstack.PixelSource using plain ints so it can be
// wrapped by tests without an import cycle.
type MockSource struct {
	SizeX, SizeY, SizeZ, SizeC, SizeT int
	BytesPerSample                    int

	// Planes holds one raw plane per linear index.
	Planes [][]byte

	// FailIndex makes ReadPlane fail for that linear index when >= 0.
	FailIndex int

	mu    sync.Mutex
	reads []int
}

// NewMockSource creates a source with zeroed planes.
func NewMockSource(x, y, z, c, t, bytesPerSample int) *MockSource {
	m := &MockSource{
		SizeX: x, SizeY: y, SizeZ: z, SizeC: c, SizeT: t,
		BytesPerSample: bytesPerSample,
		FailIndex:      -1,
	}
	m.Planes = make([][]byte, z*c*t)
	for i := range m.Planes {
		m.Planes[i] = make([]byte, x*y*bytesPerSample)
	}
	return m
}

// Index returns the XYZCT linear index of (z, c, t).
func (m *MockSource) Index(z, c, t int) int {
	return z + m.SizeZ*(c+m.SizeC*t)
}

// Fill sets every sample of plane (z, c, t) using fn(x, y).
func (m *MockSource) Fill(z, c, t int, fn func(x, y int) uint16) {
	p := m.Planes[m.Index(z, c, t)]
	for y := 0; y < m.SizeY; y++ {
		for x := 0; x < m.SizeX; x++ {
			v := fn(x, y)
			i := y*m.SizeX + x
			if m.BytesPerSample == 1 {
				p[i] = uint8(v)
			} else {
				p[2*i] = uint8(v >> 8)
				p[2*i+1] = uint8(v)
			}
		}
	}
}

// ReadPlane copies the plane at index into buf.
func (m *MockSource) ReadPlane(index int, buf []byte) error {
	m.mu.Lock()
	m.reads = append(m.reads, index)
	m.mu.Unlock()

	if index == m.FailIndex {
		return errors.New("simulated read failure")
	}
	if index < 0 || index >= len(m.Planes) {
		return errors.New("plane index out of range")
	}

	n := copy(buf, m.Planes[index])
	if n < len(buf) {
		return errors.New("short read")
	}
	return nil
}

// Reads returns the linear indices read so far, in call order.
func (m *MockSource) Reads() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.reads...)
}

// MockPlane is one metadata plane entry.
type MockPlane struct {
	Z, C, T int

	// Position holds X, Y, Z; nil entries are unrecorded.
	Position [3]*float64
}

// MockMetadata is an in-memory metadata store for a single series.
type MockMetadata struct {
	Planes []MockPlane

	// StageLabel holds X, Y, Z; nil entries are unavailable.
	StageLabel [3]*float64
}

// Float returns a pointer to v, for building positions.
func Float(v float64) *float64 {
	return &v
}
