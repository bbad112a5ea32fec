package imageio

import (
	"bufio"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"image-enhancer/internal/core"
)

// Format is an export container.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// DefaultJPEGQuality is used when ExportOptions.JPEGQuality is zero.
const DefaultJPEGQuality = 92

// Formats lists the export formats, PNG first.
func Formats() []Format {
	return []Format{PNG, JPEG, BMP, TIFF}
}

// ParseFormat accepts format names and their common extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: export format %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	return f, err == nil
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ExportOptions controls encoding. A zero Format means PNG, or the format
// implied by the path for Save.
type ExportOptions struct {
	Format      Format
	JPEGQuality int
}

// Encode writes r to w. Alpha is kept by every format except JPEG.
func Encode(w io.Writer, r *core.Raster, opts ExportOptions) error {
	if err := r.Validate(); err != nil {
		return err
	}
	format := opts.Format
	if format == "" {
		format = PNG
	}

	img := r.ToImage()
	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		q := opts.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		if q < 1 || q > 100 {
			return fmt.Errorf("jpeg quality %d out of range 1-100", q)
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: export format %q", ErrUnsupportedFormat, format)
}

// DefaultFilename names an export after the current time, e.g.
// enhanced-image-2025-09-05T12-34-56-789Z.png.
func DefaultFilename(now time.Time, f Format) string {
	if f == "" {
		f = PNG
	}
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "enhanced-image-" + stamp + f.Extension()
}

// Save encodes r into path through a temporary file in the same directory,
// so a failed export never leaves a truncated file behind.
func Save(path string, r *core.Raster, opts ExportOptions) error {
	if opts.Format == "" {
		if f, ok := FormatFromPath(path); ok {
			opts.Format = f
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".enhanced-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, r, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Write streams an export to an arbitrary destination such as a dialog
// writer, closing it afterwards.
func Write(wc io.WriteCloser, r *core.Raster, opts ExportOptions) error {
	bw := bufio.NewWriter(wc)
	if err := Encode(bw, r, opts); err != nil {
		wc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
