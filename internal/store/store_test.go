package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-enhancer/internal/core"
	"image-enhancer/internal/presets"
)

func TestStoreDefaults(t *testing.T) {
	s := New()
	assert.Equal(t, core.DefaultParams(), s.Params())
	assert.Equal(t, presets.None, s.State().Preset)
	assert.False(t, s.State().Sepia)
}

func TestSetMergesAndNotifiesOnce(t *testing.T) {
	s := New()
	var got []State
	s.Subscribe(func(st State) { got = append(got, st) })

	s.Set(core.Partial{Brightness: core.Float(1.4)})
	require.Len(t, got, 1)
	assert.Equal(t, 1.4, got[0].Params.Brightness)
	assert.Equal(t, 1.0, got[0].Params.Contrast)

	s.Set(core.Partial{Scale: core.Float(2), Sharpness: core.Float(0.5)})
	require.Len(t, got, 2)
	assert.Equal(t, core.Params{Scale: 2, Brightness: 1.4, Contrast: 1, Saturation: 1, Sharpness: 0.5}, s.Params())
}

func TestSetKeepsPresetAndSepia(t *testing.T) {
	s := New()
	require.NoError(t, s.ApplyPreset("sepia"))
	s.Set(core.Partial{Sharpness: core.Float(0.2)})

	st := s.State()
	assert.Equal(t, presets.Sepia, st.Preset)
	assert.True(t, st.Sepia)
}

func TestSetChecked(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(State) { calls++ })

	err := s.SetChecked(core.Partial{Contrast: core.Float(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Equal(t, 0, calls)
	assert.Equal(t, core.DefaultParams(), s.Params())

	require.NoError(t, s.SetChecked(core.Partial{Contrast: core.Float(1.5)}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.5, s.Params().Contrast)
}

func TestApplyPresetLeavesScaleAndSharpness(t *testing.T) {
	s := New()
	s.Set(core.Partial{Scale: core.Float(1.5), Sharpness: core.Float(0.6)})

	require.NoError(t, s.ApplyPreset("vintage"))
	assert.Equal(t, core.Params{Scale: 1.5, Brightness: 1.1, Contrast: 1.2, Saturation: 0.8, Sharpness: 0.6}, s.Params())
	assert.Equal(t, presets.Vintage, s.State().Preset)
}

func TestApplyNoneVersusResetAll(t *testing.T) {
	s := New()
	s.Set(core.Partial{Scale: core.Float(2), Sharpness: core.Float(0.5)})
	require.NoError(t, s.ApplyPreset("sepia"))

	require.NoError(t, s.ApplyPreset("none"))
	st := s.State()
	assert.Equal(t, core.Params{Scale: 2, Brightness: 1, Contrast: 1, Saturation: 1, Sharpness: 0}, st.Params)
	assert.False(t, st.Sepia)
	assert.Equal(t, presets.None, st.Preset)

	require.NoError(t, s.ApplyPreset("vibrant"))
	s.ResetAll()
	assert.Equal(t, DefaultState(), s.State())
	assert.Equal(t, core.Params{Scale: 1, Brightness: 1, Contrast: 1, Saturation: 1, Sharpness: 0}, s.Params())
}

func TestApplyUnknownPreset(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(State) { calls++ })

	err := s.ApplyPreset("lomo")
	assert.ErrorIs(t, err, presets.ErrUnknownPreset)
	assert.Equal(t, 0, calls)
}

func TestSubscribersRunInOrderOutsideLock(t *testing.T) {
	s := New()
	var order []int
	s.Subscribe(func(State) {
		order = append(order, 1)
		// Reading the store from a listener must not deadlock.
		_ = s.Params()
	})
	s.Subscribe(nil)
	s.Subscribe(func(State) { order = append(order, 2) })

	s.ResetAll()
	assert.Equal(t, []int{1, 2}, order)
}

func TestConcurrentSet(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			s.Set(core.Partial{Brightness: core.Float(v)})
			_ = s.State()
		}(float64(i) / 10)
	}
	wg.Wait()
	assert.NoError(t, s.Params().Validate())
}
