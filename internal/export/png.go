package export

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"LiveDraws/internal/draw"
	"LiveDraws/internal/tracer"
)

// WritePNG encodes the flattened wall as PNG.
func WritePNG(ctx context.Context, w io.Writer, src draw.Exporter) error {
	_, span := tracer.StartSpan(ctx, "export.png")
	defer span.End()

	img, err := src.Flatten()
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	if err := png.Encode(w, img); err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("encode png: %w", err)
	}
	tracer.SetOK(span)
	return nil
}

// PNG writes live-draws.png into dir and returns its path.
func PNG(ctx context.Context, dir string, src draw.Exporter) (string, error) {
	path := filepath.Join(dir, draw.DefaultFilename)
	return path, writeFile(path, func(w io.Writer) error { return WritePNG(ctx, w, src) })
}

// writeFile writes through a temp file in the same directory so a failed
// export never leaves a truncated file behind.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".livedraws-*")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("chmod export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move export file: %w", err)
	}
	return nil
}
