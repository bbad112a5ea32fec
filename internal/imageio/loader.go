// Image acquisition from URLs, files and readers
package imageio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"image-enhancer/internal/core"
)

// DefaultFallbackProxy is prepended to the original URL for the retry.
const DefaultFallbackProxy = "https://cors-anywhere.herokuapp.com/"

var imageURLPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|bmp|webp|svg)(\?.*)?$`)

var supportedFileExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".tif", ".tiff"}

// Origins reported in Source.Origin.
const (
	OriginURL    = "url"
	OriginProxy  = "proxy"
	OriginFile   = "file"
	OriginReader = "reader"
)

// Source is a decoded image together with where it came from.
type Source struct {
	Raster *core.Raster
	Name   string
	Format string
	Origin string
	Size   int64
}

// Metadata converts the source description for core.ImageData.
func (s Source) Metadata() core.ImageMetadata {
	return core.ImageMetadata{
		Name:   s.Name,
		Format: s.Format,
		Origin: s.Origin,
		Width:  s.Raster.Width,
		Height: s.Raster.Height,
		Size:   s.Size,
	}
}

// LoaderOptions configures network acquisition.
type LoaderOptions struct {
	Timeout time.Duration
	// FallbackProxy is a URL prefix used for one retry; empty disables it.
	FallbackProxy string
	UserAgent     string
	// MaxBytes caps the encoded size read from any source.
	MaxBytes int64
	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Timeout:       30 * time.Second,
		FallbackProxy: DefaultFallbackProxy,
		UserAgent:     "image-enhancer/1.0",
		MaxBytes:      50 << 20,
	}
}

// Loader handles image acquisition
type Loader struct {
	opts   LoaderOptions
	client *http.Client
	logger logrus.FieldLogger
}

func NewLoader(logger logrus.FieldLogger, opts ...func(*LoaderOptions)) *Loader {
	o := DefaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Loader{opts: o, client: client, logger: logger}
}

// ValidateURL accepts absolute http(s) URLs that end in a known image extension,
// optionally followed by a query string.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidURL, raw)
	}
	if !imageURLPattern.MatchString(raw) {
		return fmt.Errorf("%w: %q does not name a supported image", ErrInvalidURL, raw)
	}
	return nil
}

// LoadURL fetches and decodes raw. When the direct attempt fails for any
// reason, it is retried once through the fallback proxy.
func (l *Loader) LoadURL(ctx context.Context, raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if err := ValidateURL(raw); err != nil {
		l.logger.WithError(err).WithField("url", raw).Debug("LOADER: rejected URL")
		return Source{}, err
	}

	start := time.Now()
	src, err := l.fetch(ctx, raw, raw)
	if err == nil {
		src.Origin = OriginURL
		l.logLoaded(src, start)
		return src, nil
	}

	if l.opts.FallbackProxy == "" || ctx.Err() != nil {
		l.logger.WithError(err).WithField("url", raw).Error("LOADER: failed to load image")
		return Source{}, err
	}

	l.logger.WithError(err).WithField("url", raw).Warn("LOADER: direct load failed, retrying through proxy")
	src, proxyErr := l.fetch(ctx, l.opts.FallbackProxy+raw, raw)
	if proxyErr == nil {
		src.Origin = OriginProxy
		l.logLoaded(src, start)
		return src, nil
	}

	l.logger.WithError(proxyErr).WithField("url", raw).Error("LOADER: proxy load failed")
	return Source{}, &AcquisitionError{
		Source: raw,
		Status: firstStatus(err, proxyErr),
		Err:    errors.Join(err, proxyErr),
	}
}

// fetch downloads target and decodes it; name is the URL reported to the user.
func (l *Loader) fetch(ctx context.Context, target, name string) (Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Source{}, &AcquisitionError{Source: target, Err: err}
	}
	req.Header.Set("Accept", "image/*")
	if l.opts.UserAgent != "" {
		req.Header.Set("User-Agent", l.opts.UserAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Source{}, &AcquisitionError{Source: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Source{}, &AcquisitionError{
			Source: target,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response %s", resp.Status),
		}
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		return Source{}, &AcquisitionError{Source: target, Status: resp.StatusCode, Err: err}
	}
	r, format, err := Decode(data, name)
	if err != nil {
		return Source{}, &AcquisitionError{Source: target, Status: resp.StatusCode, Err: err}
	}
	return Source{Raster: r, Name: name, Format: format, Size: int64(len(data))}, nil
}

// LoadFile reads and decodes a local image.
func (l *Loader) LoadFile(path string) (Source, error) {
	l.logger.WithField("path", path).Debug("LOADER: loading file")

	if !IsSupportedFile(path) {
		return Source{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return Source{}, &AcquisitionError{Source: path, Err: err}
	}
	defer f.Close()

	src, err := l.LoadReader(f, filepath.Base(path))
	if err != nil {
		var ae *AcquisitionError
		if errors.As(err, &ae) {
			ae.Source = path
		}
		return Source{}, err
	}
	src.Origin = OriginFile
	return src, nil
}

// LoadReader decodes an image from r, e.g. a file picked in a dialog.
func (l *Loader) LoadReader(r io.Reader, name string) (Source, error) {
	start := time.Now()
	data, err := l.readLimited(r)
	if err != nil {
		return Source{}, &AcquisitionError{Source: name, Err: err}
	}
	raster, format, err := Decode(data, name)
	if err != nil {
		l.logger.WithError(err).WithField("name", name).Error("LOADER: decode failed")
		return Source{}, &AcquisitionError{Source: name, Err: err}
	}
	src := Source{Raster: raster, Name: name, Format: format, Origin: OriginReader, Size: int64(len(data))}
	l.logLoaded(src, start)
	return src, nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	if l.opts.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.opts.MaxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", l.opts.MaxBytes)
	}
	return data, nil
}

func (l *Loader) logLoaded(src Source, start time.Time) {
	l.logger.WithFields(logrus.Fields{
		"name":        src.Name,
		"origin":      src.Origin,
		"format":      src.Format,
		"width":       src.Raster.Width,
		"height":      src.Raster.Height,
		"bytes":       src.Size,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("LOADER: image loaded")
}

// IsSupportedFile reports whether path has an extension LoadFile accepts.
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedFileExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// SupportedExtensions lists file extensions accepted by LoadFile.
func SupportedExtensions() []string {
	out := make([]string, len(supportedFileExtensions))
	copy(out, supportedFileExtensions)
	return out
}

func firstStatus(errs ...error) int {
	for _, err := range errs {
		var ae *AcquisitionError
		if errors.As(err, &ae) && ae.Status != 0 {
			return ae.Status
		}
	}
	return 0
}
