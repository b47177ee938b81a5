package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"LiveDraws/internal/draw"
	"LiveDraws/internal/tracer"
)

// PDFFilename is the name PDF exports are written under.
const PDFFilename = "live-draws.pdf"

const pdfImage = "wall"

// WritePDF renders a one-page PDF holding the flattened wall. The page is
// sized to the wall with one pixel per point.
func WritePDF(ctx context.Context, w io.Writer, src draw.Exporter) error {
	_, span := tracer.StartSpan(ctx, "export.pdf")
	defer span.End()

	img, err := src.Flatten()
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("encode png: %w", err)
	}

	wd, ht := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	span.SetAttributes(tracer.IntAttr("width", img.Bounds().Dx()), tracer.IntAttr("height", img.Bounds().Dy()))

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(pdfImage, opts, &buf)
	p.ImageOptions(pdfImage, 0, 0, wd, ht, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("write pdf: %w", err)
	}
	tracer.SetOK(span)
	return nil
}

// PDF writes live-draws.pdf into dir and returns its path.
func PDF(ctx context.Context, dir string, src draw.Exporter) (string, error) {
	path := filepath.Join(dir, PDFFilename)
	return path, writeFile(path, func(w io.Writer) error { return WritePDF(ctx, w, src) })
}
