package imageio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-enhancer/internal/core"
)

type servers struct {
	origin *httptest.Server
	proxy  *httptest.Server

	mu         sync.Mutex
	proxyHits  []string
	userAgents []string
}

func newServers(t *testing.T) *servers {
	t.Helper()
	img := pngBytes(t, 3, 2)
	s := &servers{}

	s.origin = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.userAgents = append(s.userAgents, r.UserAgent())
		s.mu.Unlock()

		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(img)
		case "/blocked.png", "/forbidden.png":
			http.Error(w, "forbidden", http.StatusForbidden)
		case "/garbage.png":
			w.Write([]byte("<html>not an image</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.origin.Close)

	// The proxy receives the original URL as its path.
	s.proxy = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.proxyHits = append(s.proxyHits, r.RequestURI)
		s.mu.Unlock()

		if strings.HasSuffix(r.RequestURI, "/blocked.png") || strings.HasSuffix(r.RequestURI, "/garbage.png") {
			w.Write(img)
			return
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(s.proxy.Close)
	return s
}

func (s *servers) loader(t *testing.T, opts ...func(*LoaderOptions)) *Loader {
	logger, _ := logtest.NewNullLogger()
	proxy := func(o *LoaderOptions) {
		o.FallbackProxy = s.proxy.URL + "/"
		o.UserAgent = "enhancer-test"
	}
	return NewLoader(logger, append([]func(*LoaderOptions){proxy}, opts...)...)
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com/a.png",
		"http://example.com/path/photo.JPEG",
		"https://example.com/a.webp?width=400&q=80",
		"  https://example.com/vector.svg  ",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{
		"example.com/a.png",
		"ftp://example.com/a.png",
		"https://example.com/page.html",
		"https://example.com/a.png#frag",
		"https:///a.png",
		"not a url",
	}
	for _, u := range invalid {
		assert.ErrorIs(t, ValidateURL(u), ErrInvalidURL, u)
	}
	assert.ErrorIs(t, ValidateURL("   "), ErrEmptyURL)
}

func TestLoadURLDirect(t *testing.T) {
	s := newServers(t)
	src, err := s.loader(t).LoadURL(context.Background(), s.origin.URL+"/ok.png")
	require.NoError(t, err)

	assert.Equal(t, OriginURL, src.Origin)
	assert.Equal(t, "png", src.Format)
	assert.Equal(t, 3, src.Raster.Width)
	assert.Equal(t, 2, src.Raster.Height)
	assert.Equal(t, s.origin.URL+"/ok.png", src.Name)
	assert.Positive(t, src.Size)
	assert.Empty(t, s.proxyHits)
	assert.Equal(t, []string{"enhancer-test"}, s.userAgents)

	meta := src.Metadata()
	assert.Equal(t, 3, meta.Width)
	assert.Equal(t, OriginURL, meta.Origin)
}

func TestLoadURLFallsBackToProxy(t *testing.T) {
	s := newServers(t)
	for _, path := range []string{"/blocked.png", "/garbage.png"} {
		target := s.origin.URL + path
		src, err := s.loader(t).LoadURL(context.Background(), target)
		require.NoError(t, err, path)
		assert.Equal(t, OriginProxy, src.Origin)
		assert.Equal(t, target, src.Name)
	}
	assert.Equal(t, []string{
		"/" + s.origin.URL + "/blocked.png",
		"/" + s.origin.URL + "/garbage.png",
	}, s.proxyHits)
}

func TestLoadURLBothAttemptsFail(t *testing.T) {
	s := newServers(t)
	_, err := s.loader(t).LoadURL(context.Background(), s.origin.URL+"/forbidden.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAcquisitionFailed))

	var ae *AcquisitionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, s.origin.URL+"/forbidden.png", ae.Source)
	assert.Len(t, s.proxyHits, 1)

	assert.Equal(t,
		"Failed to load image. Access to this image is forbidden by the server. Please try a different image or website.",
		Describe(err))
}

func TestLoadURLProxyPrefixDoesNotChangeHint(t *testing.T) {
	s := newServers(t)
	l := s.loader(t, func(o *LoaderOptions) { o.FallbackProxy = s.proxy.URL + "/cors-anywhere/" })

	_, err := l.LoadURL(context.Background(), s.origin.URL+"/img403.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cors-anywhere")
	assert.Equal(t, []string{"/cors-anywhere/" + s.origin.URL + "/img403.png"}, s.proxyHits)
	assert.Equal(t, "Failed to load image. Please try a different image or website.", Describe(err))
}

func TestLoadURLWithoutProxy(t *testing.T) {
	s := newServers(t)
	l := s.loader(t, func(o *LoaderOptions) { o.FallbackProxy = "" })

	_, err := l.LoadURL(context.Background(), s.origin.URL+"/blocked.png")
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.Empty(t, s.proxyHits)
}

func TestLoadURLRejectsInvalidBeforeRequest(t *testing.T) {
	s := newServers(t)
	_, err := s.loader(t).LoadURL(context.Background(), s.origin.URL+"/page.html")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.False(t, errors.Is(err, ErrAcquisitionFailed))
	assert.Empty(t, s.userAgents)
}

func TestLoadURLMaxBytes(t *testing.T) {
	s := newServers(t)
	l := s.loader(t, func(o *LoaderOptions) {
		o.MaxBytes = 16
		o.FallbackProxy = ""
	})
	_, err := l.LoadURL(context.Background(), s.origin.URL+"/ok.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestLoadURLCanceledContextSkipsProxy(t *testing.T) {
	s := newServers(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.loader(t).LoadURL(ctx, s.origin.URL+"/ok.png")
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.proxyHits)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(good, pngBytes(t, 5, 5), 0o644))

	logger, _ := logtest.NewNullLogger()
	l := NewLoader(logger)

	src, err := l.LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, OriginFile, src.Origin)
	assert.Equal(t, "photo.png", src.Name)
	assert.Equal(t, 5, src.Raster.Width)

	_, err = l.LoadFile(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "Please select a valid image file (JPEG, PNG, GIF, etc.)", Describe(err))

	_, err = l.LoadFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o644))
	_, err = l.LoadFile(broken)
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.ErrorIs(t, err, core.ErrInvalidSource)
	assert.Equal(t, "Error loading the selected image. Please try another file.", Describe(err))
}

func TestLoadReader(t *testing.T) {
	l := NewLoader(nil)
	src, err := l.LoadReader(strings.NewReader(string(pngBytes(t, 2, 3))), "clip.png")
	require.NoError(t, err)
	assert.Equal(t, OriginReader, src.Origin)
	assert.Equal(t, 3, src.Raster.Height)
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Contains(t, exts, ".webp")
	assert.Contains(t, exts, ".tiff")
	exts[0] = ".exe"
	assert.NotContains(t, SupportedExtensions(), ".exe")
}

func TestRandomSample(t *testing.T) {
	for i := 0; i < 10; i++ {
		u := RandomSample()
		assert.Contains(t, SampleURLs, u)
		assert.NoError(t, ValidateURL(u))
	}
}
