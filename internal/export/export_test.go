package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveDraws/internal/draw"
)

type stubExporter struct {
	img *image.RGBA
	err error
}

func (s stubExporter) Flatten() (*image.RGBA, error) { return s.img, s.err }

func wall(w, h int) stubExporter {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(1, 1, color.RGBA{R: 0xff, A: 0xff})
	return stubExporter{img: img}
}

var errGone = errors.New("surface gone")

func TestPNGFile(t *testing.T) {
	dir := t.TempDir()
	path, err := PNG(context.Background(), dir, wall(30, 20))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "live-draws.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
	r, g, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
}

func TestPDFFile(t *testing.T) {
	dir := t.TempDir()
	path, err := PDF(context.Background(), dir, wall(400, 300))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PDFFilename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/MediaBox [0 0 400.00 300.00]")
}

func TestWritePDFStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(context.Background(), &buf, wall(10, 10)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportFailureLeavesNoFile(t *testing.T) {
	src := stubExporter{err: errors.Join(draw.ErrExportUnavailable, errGone)}
	for name, run := range map[string]func(string) (string, error){
		"png": func(dir string) (string, error) { return PNG(context.Background(), dir, src) },
		"pdf": func(dir string) (string, error) { return PDF(context.Background(), dir, src) },
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := run(dir)
			assert.ErrorIs(t, err, draw.ErrExportUnavailable)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExportMissingDir(t *testing.T) {
	_, err := PNG(context.Background(), filepath.Join(t.TempDir(), "nope"), wall(2, 2))
	assert.ErrorContains(t, err, "create export file")
}
