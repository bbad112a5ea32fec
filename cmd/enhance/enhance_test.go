package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-enhancer/internal/core"
	"image-enhancer/internal/imageio"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testRaster(w, h int) *core.Raster {
	r := core.NewRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := r.PixOffset(x, y)
			r.Pix[i] = uint8(x * 255 / w)
			r.Pix[i+1] = uint8(y * 255 / h)
			r.Pix[i+2] = 90
			r.Pix[i+3] = 255
		}
	}
	return r
}

func writeInput(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, imageio.Save(path, testRaster(w, h), imageio.ExportOptions{}))
	return path
}

func loadOutput(t *testing.T, path string) *core.Raster {
	t.Helper()
	src, err := imageio.NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	return src.Raster
}

func TestRenderScalesAndWrites(t *testing.T) {
	in := writeInput(t, 8, 6)
	out := filepath.Join(t.TempDir(), "out.png")

	stdout, err := run(t, "render", "--in", in, "--scale", "2", "--out", out)
	require.NoError(t, err)

	r := loadOutput(t, out)
	assert.Equal(t, 16, r.Width)
	assert.Equal(t, 12, r.Height)
	assert.Contains(t, stdout, "8 × 6 px -> 16 × 12 px")
	assert.Contains(t, stdout, "Wrote "+out+" (png)")
}

func TestRenderPresetBlackWhite(t *testing.T) {
	in := writeInput(t, 10, 10)
	out := filepath.Join(t.TempDir(), "bw.png")

	stdout, err := run(t, "render", "-i", in, "--preset", "BlackWhite", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Preset: blackwhite (sepia false)")

	r := loadOutput(t, out)
	for i := 0; i < len(r.Pix); i += 4 {
		require.Equal(t, r.Pix[i], r.Pix[i+1])
		require.Equal(t, r.Pix[i], r.Pix[i+2])
	}
}

func TestRenderFlagsOverridePreset(t *testing.T) {
	in := writeInput(t, 6, 6)
	out := filepath.Join(t.TempDir(), "out.png")

	stdout, err := run(t, "render", "--in", in, "--preset", "vintage", "--contrast", "1", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "brightness=1.1 contrast=1 saturation=0.8")
}

func TestRenderFormatSelection(t *testing.T) {
	in := writeInput(t, 6, 4)
	dir := t.TempDir()

	out := filepath.Join(dir, "out.bin")
	stdout, err := run(t, "render", "--in", in, "--format", "jpg", "--quality", "80", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(jpeg)")
	assert.Equal(t, "jpeg", loadFormat(t, out))

	out = filepath.Join(dir, "out.tif")
	_, err = run(t, "render", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Equal(t, "tiff", loadFormat(t, out))
}

func loadFormat(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, format, err := imageio.Decode(data, "")
	require.NoError(t, err)
	return format
}

func TestRenderDefaultFilename(t *testing.T) {
	in := writeInput(t, 4, 4)
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "enhancer.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[export]\ndirectory = \""+filepath.ToSlash(dir)+"\"\n"), 0o644))

	_, err := run(t, "render", "--config", cfgPath, "--in", in)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "enhanced-image-*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRenderRejectsInvalidParameters(t *testing.T) {
	in := filepath.Join(t.TempDir(), "never-read.png")
	tests := []struct {
		name string
		args []string
	}{
		{"negative brightness", []string{"--brightness", "-1"}},
		{"zero scale", []string{"--scale", "0"}},
		{"huge scale", []string{"--scale", "1e7"}},
		{"unknown preset", []string{"--preset", "grainy"}},
		{"unknown interpolation", []string{"--interp", "cubic"}},
		{"bad quality", []string{"--quality", "0"}},
		{"bad format", []string{"--format", "gif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"render", "--in", in}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
			assert.Equal(t, 2, exitCode(err))
		})
	}
}

func TestRenderSourceFlags(t *testing.T) {
	_, err := run(t, "render")
	assert.Error(t, err)

	_, err = run(t, "render", "--in", "a.png", "--url", "https://example.com/a.png")
	assert.Error(t, err)
}

func TestRenderAcquisitionErrors(t *testing.T) {
	_, err := run(t, "render", "--in", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, imageio.ErrAcquisitionFailed)
	assert.Equal(t, 1, exitCode(err))

	_, err = run(t, "render", "--in", "notes.txt")
	assert.ErrorIs(t, err, imageio.ErrUnsupportedFormat)
}

func TestRenderURL(t *testing.T) {
	in := writeInput(t, 5, 5)
	data, err := os.ReadFile(in)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "out.png")
	stdout, err := run(t, "render", "--url", srv.URL+"/photo.png", "--sharpness", "0.5", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Enhanced "+srv.URL+"/photo.png")
	assert.Equal(t, 5, loadOutput(t, out).Width)
}

func TestRenderMetrics(t *testing.T) {
	in := writeInput(t, 24, 24)
	out := filepath.Join(t.TempDir(), "out.png")

	stdout, err := run(t, "render", "--in", in, "--contrast", "1.3", "--metrics", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Quality: ")
	assert.Contains(t, stdout, "psnr")
	assert.Contains(t, stdout, "ssim")
}

func TestPresetsCommand(t *testing.T) {
	stdout, err := run(t, "presets")
	require.NoError(t, err)
	for _, name := range []string{"none", "vintage", "blackwhite", "sepia", "vibrant"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "SEPIA")
}

func TestParamsCommand(t *testing.T) {
	stdout, err := run(t, "params")
	require.NoError(t, err)
	for _, want := range []string{"scale", "sharpness", "lanczos3", "nearest", "tiff"} {
		assert.Contains(t, stdout, want)
	}
}

func TestParamsCommandSingleParameter(t *testing.T) {
	stdout, err := run(t, "params", "sharpness")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Strength of the 3x3 sharpening kernel")
	assert.NotContains(t, stdout, "brightness")
	assert.NotContains(t, stdout, "Interpolations:")

	_, err = run(t, "params", "gamma")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestRenderFlagCompletion(t *testing.T) {
	stdout, err := run(t, "__complete", "render", "--preset", "")
	require.NoError(t, err)
	for _, name := range []string{"none", "vintage", "blackwhite", "sepia", "vibrant"} {
		assert.Contains(t, stdout, name)
	}

	stdout, err = run(t, "__complete", "render", "--interp", "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "lanczos3")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&core.ParamError{Field: "scale"}))
	assert.Equal(t, 3, exitCode(&core.SourceError{Reason: "empty image"}))
	assert.Equal(t, 1, exitCode(os.ErrNotExist))
}
