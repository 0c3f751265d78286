package utils

import "encoding/binary"

// Uint16BE reads the big-endian unsigned 16-bit sample at sample index i.
func Uint16BE(b []byte, i int) uint16 {
	return binary.BigEndian.Uint16(b[2*i:])
}

// DecodeUint16BE converts a big-endian 16-bit plane into samples.
// dst must hold at least len(b)/2 elements.
func DecodeUint16BE(b []byte, dst []uint16) {
	for i := range len(b) / 2 {
		dst[i] = binary.BigEndian.Uint16(b[2*i:])
	}
}

// PutUint16BE stores sample v at sample index i in big-endian order.
func PutUint16BE(b []byte, i int, v uint16) {
	binary.BigEndian.PutUint16(b[2*i:], v)
}
