package util

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestSaveImage_OpenImage(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	img.SetNRGBA(2, 1, color.NRGBA{R: 200, G: 100, B: 0, A: 255})

	path := filepath.Join(t.TempDir(), ksuid.New().String()+".png")
	require.NoError(t, SaveImage(path, img))

	got, err := OpenImage(path)
	require.NoError(t, err)

	nrgba, ok := got.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, img.Bounds(), nrgba.Bounds())
	assert.Equal(t, img.Pix, nrgba.Pix)
}

func TestOpenImage_BMP(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 241, G: 100, B: 50, A: 255})

	path := filepath.Join(t.TempDir(), ksuid.New().String()+".bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())

	got, err := OpenImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())

	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, []uint32{241, 100, 50, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func TestOpenImage_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("garbage"), 0o644))

	_, err := OpenImage(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = OpenImage(corrupt)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestSaveImage_InvalidPath(t *testing.T) {
	t.Parallel()

	err := SaveImage(filepath.Join(t.TempDir(), "missing", "out.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
