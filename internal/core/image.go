// Source and output raster holder shared by the session and the GUI
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ImageData keeps the immutable source raster and the latest rendered output.
// Rasters handed out are shared, so callers must treat them as read-only.
type ImageData struct {
	mu        sync.RWMutex
	original  *Raster
	processed *Raster
	hasImage  bool
	metadata  ImageMetadata
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Name   string
	Format string
	Origin string
	Width  int
	Height int
	Size   int64 // Encoded size in bytes
}

// NewImageData creates an empty container
func NewImageData() *ImageData {
	return &ImageData{}
}

// SetOriginal replaces the source raster. The previous output is dropped.
func (img *ImageData) SetOriginal(r *Raster, meta ImageMetadata) error {
	if err := r.ValidateSource(); err != nil {
		return fmt.Errorf("cannot set source: %w", err)
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	if meta.Format == "" {
		meta.Format = getFormatFromName(meta.Name)
	}
	meta.Width = r.Width
	meta.Height = r.Height

	img.original = r
	img.processed = nil
	img.hasImage = true
	img.metadata = meta
	return nil
}

// SetProcessed stores the latest output raster.
func (img *ImageData) SetProcessed(r *Raster) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if !img.hasImage {
		return fmt.Errorf("no original image loaded")
	}
	if r == nil {
		return fmt.Errorf("cannot set empty processed image")
	}
	img.processed = r
	return nil
}

// GetOriginal returns the source raster or nil.
func (img *ImageData) GetOriginal() *Raster {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.original
}

// GetProcessed returns the last output, falling back to the source when nothing was rendered yet.
func (img *ImageData) GetProcessed() *Raster {
	img.mu.RLock()
	defer img.mu.RUnlock()
	if img.processed == nil {
		return img.original
	}
	return img.processed
}

func (img *ImageData) HasImage() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.hasImage
}

func (img *ImageData) GetMetadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

// Clear drops both rasters.
func (img *ImageData) Clear() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = nil
	img.processed = nil
	img.hasImage = false
	img.metadata = ImageMetadata{}
}

func getFormatFromName(name string) string {
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
