package imgstack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scigolib/hdf5"
	"golang.org/x/image/tiff"

	"github.com/scigolib/imgstack/internal/utils"
)

// ErrEmptyStack is returned when exporting a stack without slices.
var ErrEmptyStack = errors.New("stack has no slices")

// DefaultSeriesName names the exported dataset of an unnamed stack.
const DefaultSeriesName = "stack"

// WriteHDF5 writes the stack as a single series in the layout read by
// OpenHDF5. Grayscale stacks are stored with one channel, RGB stacks with
// three (R, G, B).
func WriteHDF5(path string, stack *Stack) (err error) {
	if stack.Len() == 0 {
		return ErrEmptyStack
	}

	kind := stack.Kind()
	channels, bits := 1, 8
	switch kind {
	case Gray16:
		bits = 16
	case RGB:
		channels = 3
	}

	n := stack.Len()
	w, h := stack.Width, stack.Height
	plane := w * h
	data := make([]int32, channels*n*plane)

	for z := range stack.Slices {
		s := &stack.Slices[z]
		if s.Kind != kind || s.Width != w || s.Height != h {
			return fmt.Errorf("slice %q does not match stack layout", s.Label)
		}
		for c := 0; c < channels; c++ {
			dst := data[(c*n+z)*plane : (c*n+z+1)*plane]
			for i := range dst {
				switch kind {
				case Gray8:
					dst[i] = int32(s.Gray8[i])
				case Gray16:
					dst[i] = int32(s.Gray16[i])
				default:
					dst[i] = int32(s.Pix[3*i+c])
				}
			}
		}
	}

	fw, err := hdf5.CreateForWrite(path, hdf5.CreateTruncate)
	if err != nil {
		return utils.WrapError("hdf5 create failed", err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = utils.WrapError("hdf5 close failed", cerr)
		}
	}()

	name := stack.Name
	if name == "" {
		name = DefaultSeriesName
	}
	name = strings.ReplaceAll(name, "/", "_")

	shape := []uint64{1, uint64(channels), uint64(n), uint64(h), uint64(w)}
	ds, err := fw.CreateDataset("/"+name, hdf5.Int32, shape)
	if err != nil {
		return utils.WrapError("hdf5 create dataset failed", err)
	}
	if err := ds.Write(data); err != nil {
		return utils.WrapError("hdf5 write failed", err)
	}

	attrShape := []int64{1, int64(channels), int64(n), int64(h), int64(w)}
	if err := ds.WriteAttribute(AttrShape, attrShape); err != nil {
		return utils.WrapError("hdf5 write shape failed", err)
	}
	if err := ds.WriteAttribute(AttrBitsPerSample, int32(bits)); err != nil {
		return utils.WrapError("hdf5 write bits failed", err)
	}

	return nil
}

// WriteTIFF writes every slice to dir as <prefix>_<label>.tif and returns
// the written paths in stack order.
func WriteTIFF(dir, prefix string, stack *Stack) ([]string, error) {
	if stack.Len() == 0 {
		return nil, ErrEmptyStack
	}

	paths := make([]string, 0, stack.Len())
	for i := range stack.Slices {
		s := &stack.Slices[i]
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.tif", prefix, s.Label))
		if err := writeTIFFSlice(path, s); err != nil {
			return paths, utils.WrapError(fmt.Sprintf("write slice %s", s.Label), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTIFFSlice(path string, s *Slice) (err error) {
	//nolint:gosec // G304: User-provided path is intentional for an image exporter
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return tiff.Encode(f, s.Image(), &tiff.Options{Compression: tiff.Deflate})
}
