package pipeline

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/presets"
	"image-enhancer/internal/store"
)

type fakeEvaluator struct {
	calls int
	ref   *core.Raster
	err   error
}

func (f *fakeEvaluator) Evaluate(reference, output *core.Raster) (map[string]float64, error) {
	f.calls++
	f.ref = reference
	if f.err != nil {
		return nil, f.err
	}
	return map[string]float64{"psnr": 42, "ssim": 0.9}, nil
}

func newTestSession(t *testing.T) (*Session, *store.Store, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	st := store.New()
	return NewSession(st, logger), st, hook
}

func TestSessionLoadRenders(t *testing.T) {
	s, _, _ := newTestSession(t)
	var results []Result
	s.SetCallbacks(func(r Result) { results = append(results, r) }, func(err error) {
		t.Fatalf("unexpected error: %v", err)
	})

	assert.Nil(t, s.Output())
	src := testRaster(5, 4)
	require.NoError(t, s.Load(src, core.ImageMetadata{Name: "a.png", Origin: "file"}))

	require.Len(t, results, 1)
	assert.True(t, results[0].Output.Equal(src))
	assert.Same(t, results[0].Output, s.Output())
	assert.Same(t, src, s.Source())
	assert.Equal(t, "png", s.Metadata().Format)
	assert.True(t, s.HasImage())
}

func TestSessionLogsAppliedStages(t *testing.T) {
	s, st, hook := newTestSession(t)
	st.Set(core.Partial{Scale: core.Float(2), Sharpness: core.Float(0.5)})
	require.NoError(t, s.Load(testRaster(4, 3), core.ImageMetadata{}))

	var stages []string
	for _, e := range hook.AllEntries() {
		if e.Message == "SESSION: stage applied" {
			stages = append(stages, e.Data["stage"].(string))
			assert.Equal(t, 8, e.Data["width"])
		}
	}
	assert.Equal(t, []string{StageResize, StageSharpen}, stages)
}

func TestSessionRejectsEmptySource(t *testing.T) {
	s, _, hook := newTestSession(t)
	err := s.Load(core.NewRaster(0, 0), core.ImageMetadata{Name: "empty.png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidSource)
	assert.False(t, s.HasImage())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSessionRerendersOnEveryChange(t *testing.T) {
	s, st, _ := newTestSession(t)
	var results []Result
	s.SetCallbacks(func(r Result) { results = append(results, r) }, nil)

	// No source yet: changes do not render.
	st.Set(core.Partial{Brightness: core.Float(1.2)})
	assert.Empty(t, results)

	src := testRaster(6, 6)
	require.NoError(t, s.Load(src, core.ImageMetadata{Name: "a.png"}))
	require.Len(t, results, 1)
	assert.True(t, results[0].Output.Equal(algorithms.AdjustTone(src, 1.2, 1, 1)))

	st.Set(core.Partial{Scale: core.Float(2)})
	require.Len(t, results, 2)
	assert.Equal(t, 12, results[1].Output.Width)

	require.NoError(t, st.ApplyPreset("sepia"))
	require.Len(t, results, 3)
	assert.True(t, results[2].State.Sepia)
	assert.Equal(t, presets.Sepia, results[2].State.Preset)

	st.ResetAll()
	require.Len(t, results, 4)
	assert.True(t, results[3].Output.Equal(src), "reset renders the source unchanged")
}

func TestSessionFoldsChangesDuringRender(t *testing.T) {
	s, st, _ := newTestSession(t)
	var results []Result
	s.SetCallbacks(func(r Result) {
		results = append(results, r)
		if len(results) == 1 {
			// Store changes from inside a callback must not nest renders.
			st.Set(core.Partial{Contrast: core.Float(1.5)})
			st.Set(core.Partial{Contrast: core.Float(0.5)})
			assert.Len(t, results, 1)
		}
	}, nil)

	require.NoError(t, s.Load(testRaster(4, 4), core.ImageMetadata{Name: "a.png"}))
	require.Len(t, results, 2, "two pending changes collapse into one render")
	assert.Equal(t, 0.5, results[1].State.Params.Contrast)
}

func TestSessionSetInterpolation(t *testing.T) {
	s, st, _ := newTestSession(t)
	count := 0
	s.SetCallbacks(func(Result) { count++ }, nil)
	require.NoError(t, s.Load(testRaster(4, 4), core.ImageMetadata{}))
	st.Set(core.Partial{Scale: core.Float(3)})
	require.Equal(t, 2, count)

	s.SetInterpolation(algorithms.NearestNeighbor)
	assert.Equal(t, 3, count)
	assert.Equal(t, algorithms.NearestNeighbor, s.Interpolation())

	s.SetInterpolation(algorithms.NearestNeighbor)
	assert.Equal(t, 3, count, "unchanged kernel does not re-render")

	// Nearest neighbor at 3x replicates every source pixel into a 3x3 block.
	out := s.Output()
	src := s.Source()
	assert.Equal(t, src.Pix[:4], out.Pix[:4])
	assert.Equal(t, src.Pix[:4], out.Pix[out.PixOffset(2, 2):out.PixOffset(2, 2)+4])
}

func TestSessionMetrics(t *testing.T) {
	s, st, hook := newTestSession(t)
	eval := &fakeEvaluator{}
	s.SetEvaluator(eval)

	var last Result
	s.SetCallbacks(func(r Result) { last = r }, nil)
	st.Set(core.Partial{Scale: core.Float(2), Saturation: core.Float(0)})
	require.NoError(t, s.Load(testRaster(3, 3), core.ImageMetadata{}))

	require.Equal(t, 1, eval.calls)
	assert.Equal(t, 42.0, last.Metrics["psnr"])
	assert.Equal(t, 6, eval.ref.Width, "reference is resized like the output")
	assert.False(t, eval.ref.Equal(last.Output), "reference has no tone adjustment")

	eval.err = errors.New("boom")
	s.Refresh()
	assert.Nil(t, last.Metrics)
	assert.NotNil(t, last.Output, "metric failures do not fail the render")

	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "SESSION: metrics failed" {
			found = true
		}
	}
	assert.True(t, found)

	s.SetEvaluator(nil)
	s.Refresh()
	assert.Equal(t, 2, eval.calls)
}

func TestSessionClear(t *testing.T) {
	s, st, _ := newTestSession(t)
	count := 0
	s.SetCallbacks(func(Result) { count++ }, nil)
	require.NoError(t, s.Load(testRaster(2, 2), core.ImageMetadata{}))
	s.Clear()

	assert.False(t, s.HasImage())
	assert.Nil(t, s.Output())
	st.Set(core.Partial{Brightness: core.Float(2)})
	assert.Equal(t, 1, count)
}

func TestSessionNilLogger(t *testing.T) {
	s := NewSession(store.New(), nil)
	require.NoError(t, s.Load(testRaster(2, 2), core.ImageMetadata{}))
	assert.NotNil(t, s.Output())
}
