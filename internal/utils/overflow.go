package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two non-negative ints would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b int) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxInt/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds int max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two non-negative ints and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b int) (int, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// PlaneSize safely calculates the byte size of one width x height plane.
// Returns an error if overflow would occur or a dimension is negative.
func PlaneSize(width, height, bytesPerSample int) (int, error) {
	if width < 0 || height < 0 {
		return 0, fmt.Errorf("negative plane dimensions %dx%d", width, height)
	}
	if bytesPerSample <= 0 {
		return 0, fmt.Errorf("bytes per sample must be positive, got %d", bytesPerSample)
	}

	pixels, err := SafeMultiply(width, height)
	if err != nil {
		return 0, fmt.Errorf("plane pixel count: %w", err)
	}

	size, err := SafeMultiply(pixels, bytesPerSample)
	if err != nil {
		return 0, fmt.Errorf("plane byte size: %w", err)
	}

	return size, nil
}
