package imgstack

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SliceStats summarizes the intensities of one slice.
type SliceStats struct {
	Label  string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Stats computes per-slice statistics. RGB pixels are reduced to a scalar
// with Intensity using the given combination; grayscale slices ignore it.
func Stats(stack *Stack, c Combination) []SliceStats {
	out := make([]SliceStats, 0, stack.Len())
	for i := range stack.Slices {
		s := &stack.Slices[i]
		values := intensities(s, c)

		st := SliceStats{Label: s.Label}
		switch {
		case len(values) == 1:
			st.Mean = values[0]
		case len(values) > 1:
			st.Mean, st.StdDev = stat.MeanStdDev(values, nil)
		}
		if len(values) > 0 {
			st.Min = floats.Min(values)
			st.Max = floats.Max(values)
		}
		out = append(out, st)
	}
	return out
}

func intensities(s *Slice, c Combination) []float64 {
	n := s.Width * s.Height
	values := make([]float64, n)

	switch s.Kind {
	case Gray8:
		for i, v := range s.Gray8[:n] {
			values[i] = float64(v)
		}
	case Gray16:
		for i, v := range s.Gray16[:n] {
			values[i] = float64(v)
		}
	default:
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				values[y*s.Width+x] = float64(Intensity(s.Packed(x, y), c))
			}
		}
	}
	return values
}
