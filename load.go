package imgstack

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/tiff" // Register TIFF decoder.

	"github.com/scigolib/imgstack/internal/utils"
)

// ErrUnknownFormat is returned when no container reader handles a file.
var ErrUnknownFormat = errors.New("unknown container format")

// bitmapSuffixes are opened with the plain image decoders.
var bitmapSuffixes = []string{"tif", "tiff", "jpg", "jpeg", "png", "bmp", "gif"}

// ContainerCloser is a container owning an open file.
type ContainerCloser interface {
	Container
	io.Closer
}

// OpenContainer opens a multi-series file, choosing the reader by extension.
func OpenContainer(path string) (ContainerCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5", ".hdf5", ".he5":
		c, err := OpenHDF5(path)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}

// OpenStack opens a container and decodes the Z-range [from, to) of one
// series. See Decode for range and compositing rules.
func OpenStack(path string, series int, spec string, from, to int, opts ...DecodeOption) (*Stack, error) {
	c, err := OpenContainer(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	stack, err := DecodeSeries(c, series, from, to, ParseColorAssignment(spec), opts...)
	if err != nil {
		return nil, err
	}
	stack.Name = filepath.Base(path)
	return stack, nil
}

// LoadImage loads file from directory as a stack.
//
// Files with a common bitmap extension are decoded directly into a
// single-slice stack. Anything else is opened as a container and every
// slice of the series is decoded with the channel assignment spec; if that
// fails the file is tried as a bitmap.
func LoadImage(directory, file string, series int, spec string, opts ...DecodeOption) (*Stack, error) {
	path := filepath.Join(filepath.FromSlash(strings.ReplaceAll(directory, `\`, "/")), file)

	if isBitmap(file) {
		return loadBitmap(path)
	}

	stack, err := OpenStack(path, series, spec, -1, -1, opts...)
	if err == nil {
		return stack, nil
	}

	stack, bitmapErr := loadBitmap(path)
	if bitmapErr != nil {
		return nil, errors.Join(err, bitmapErr)
	}
	return stack, nil
}

func isBitmap(file string) bool {
	lower := strings.ToLower(file)
	for _, suffix := range bitmapSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func loadBitmap(path string) (*Stack, error) {
	//nolint:gosec // G304: User-provided path is intentional for an image loader
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("image open failed", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, utils.WrapError("image decode failed", err)
	}

	s := sliceFromImage(img, "1")
	return &Stack{
		Name:   filepath.Base(path),
		Width:  s.Width,
		Height: s.Height,
		Slices: []Slice{s},
	}, nil
}
