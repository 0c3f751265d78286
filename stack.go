// Package imgstack decodes multi-dimensional microscopy image series into
// displayable stacks and resolves the stage position of their timepoints.
//
// A series is addressed as Z-slices x channels x timepoints. Up to three
// channels are composited into grayscale or RGB slices according to a
// channel-to-color assignment such as "rgb" or "gr".
package imgstack

import (
	"image"
	"image/color"
)

// SliceKind describes the pixel layout of a Slice.
type SliceKind int

// Slice layouts.
const (
	Gray8 SliceKind = iota
	Gray16
	RGB
)

// String returns the layout name.
func (k SliceKind) String() string {
	switch k {
	case Gray8:
		return "gray8"
	case Gray16:
		return "gray16"
	case RGB:
		return "rgb"
	default:
		return "unknown"
	}
}

// Slice is one composited Z-slice.
//
// Exactly one of Gray8, Gray16 or Pix is populated depending on Kind.
// Pix holds interleaved R, G, B bytes, three per pixel.
type Slice struct {
	Label  string
	Kind   SliceKind
	Width  int
	Height int
	Gray8  []uint8
	Gray16 []uint16
	Pix    []uint8
}

// RGBAt returns the lanes of the RGB pixel at (x, y).
func (s *Slice) RGBAt(x, y int) (r, g, b uint8) {
	i := 3 * (y*s.Width + x)
	return s.Pix[i], s.Pix[i+1], s.Pix[i+2]
}

// Packed returns the RGB pixel at (x, y) as 0xRRGGBB, ready for Intensity.
func (s *Slice) Packed(x, y int) uint32 {
	r, g, b := s.RGBAt(x, y)
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Image converts the slice into a standard library image.
func (s *Slice) Image() image.Image {
	rect := image.Rect(0, 0, s.Width, s.Height)

	switch s.Kind {
	case Gray8:
		img := image.NewGray(rect)
		copy(img.Pix, s.Gray8)
		return img
	case Gray16:
		img := image.NewGray16(rect)
		for i, v := range s.Gray16 {
			img.Pix[2*i] = uint8(v >> 8)
			img.Pix[2*i+1] = uint8(v)
		}
		return img
	default:
		img := image.NewRGBA(rect)
		for i := 0; i < s.Width*s.Height; i++ {
			img.Pix[4*i] = s.Pix[3*i]
			img.Pix[4*i+1] = s.Pix[3*i+1]
			img.Pix[4*i+2] = s.Pix[3*i+2]
			img.Pix[4*i+3] = 0xff
		}
		return img
	}
}

// sliceFromImage converts a decoded bitmap into a slice. Gray images keep
// their bit depth, everything else becomes RGB.
func sliceFromImage(img image.Image, label string) Slice {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	s := Slice{Label: label, Width: w, Height: h}

	switch src := img.(type) {
	case *image.Gray:
		s.Kind = Gray8
		s.Gray8 = make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(s.Gray8[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
	case *image.Gray16:
		s.Kind = Gray16
		s.Gray16 = make([]uint16, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				s.Gray16[y*w+x] = src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
	default:
		s.Kind = RGB
		s.Pix = make([]uint8, 3*w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := 3 * (y*w + x)
				s.Pix[i], s.Pix[i+1], s.Pix[i+2] = c.R, c.G, c.B
			}
		}
	}
	return s
}

// Stack is an ordered sequence of slices, ascending in Z.
type Stack struct {
	Name   string
	Width  int
	Height int
	Slices []Slice
}

// Len returns the number of slices.
func (s *Stack) Len() int {
	return len(s.Slices)
}

// Labels returns the slice labels in stack order.
func (s *Stack) Labels() []string {
	labels := make([]string, len(s.Slices))
	for i := range s.Slices {
		labels[i] = s.Slices[i].Label
	}
	return labels
}

// Kind returns the layout shared by all slices, or Gray8 for an empty stack.
func (s *Stack) Kind() SliceKind {
	if len(s.Slices) == 0 {
		return Gray8
	}
	return s.Slices[0].Kind
}
