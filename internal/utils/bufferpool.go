// Package utils provides utility functions for the imgstack library.
package utils

import "sync"

var planePool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 0, 64*1024)
	},
}

// GetPlaneBuffer returns a zeroed byte slice of the given size from the pool.
func GetPlaneBuffer(size int) []byte {
	buf := planePool.Get().([]byte)
	if cap(buf) < size {
		return make([]byte, size, size*2) // Increase capacity.
	}
	buf = buf[:size]
	clear(buf)
	return buf
}

// ReleasePlaneBuffer returns a buffer to the pool.
func ReleasePlaneBuffer(buf []byte) {
	//nolint:staticcheck // SA6002: slice descriptor copy is acceptable for sync.Pool
	planePool.Put(buf[:0])
}
