package imgstack

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImage_Bitmap(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(1, 0, color.RGBA{R: 200, G: 100, B: 50, A: 0xff})

	f, err := os.Create(filepath.Join(dir, "tile.PNG"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	stack, err := LoadImage(dir, "tile.PNG", 0, "rgb")
	require.NoError(t, err)
	require.Equal(t, 1, stack.Len())
	assert.Equal(t, "tile.PNG", stack.Name)
	assert.Equal(t, "1", stack.Slices[0].Label)

	r, g, b := stack.Slices[0].RGBAt(1, 0)
	assert.Equal(t, []uint8{200, 100, 50}, []uint8{r, g, b})
}

func TestLoadImage_TIFFExport(t *testing.T) {
	dir := t.TempDir()
	src := newMockSource(2, 2, 2, 1, 1, Uint16)
	src.Fill(1, 0, 0, func(x, y int) uint16 { return uint16(1000*x + y) })

	stack, err := Decode(src, -1, -1, ParseColorAssignment("r"))
	require.NoError(t, err)

	paths, err := WriteTIFF(dir, "tile", stack)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "tile_1.tif"), filepath.Join(dir, "tile_2.tif")}, paths)

	loaded, err := LoadImage(dir, "tile_2.tif", 0, "r")
	require.NoError(t, err)
	assert.Equal(t, Gray16, loaded.Slices[0].Kind)
	assert.Equal(t, stack.Slices[1].Gray16, loaded.Slices[0].Gray16)
}

func TestLoadImage_Container(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, filepath.Join(dir, "tile.h5"), []int64{1, 1, 2, 1, 2}, 8, nil)

	stack, err := LoadImage(dir+`\`, "tile.h5", -1, "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, stack.Labels())
	assert.Equal(t, []uint8{2, 3}, stack.Slices[1].Gray8)
}

func TestLoadImage_Unknown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tile.lsm"), []byte("garbage"), 0o600))

	stack, err := LoadImage(dir, "tile.lsm", 0, "rgb")
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Nil(t, stack)
}
