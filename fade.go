package ambient

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeIn ramps the engine intensity from 0 to its target after mount.
type fadeIn struct {
	tween   *gween.Tween
	target  float64
	value   float64
	seconds float64
	elapsed float64
	done    bool
}

// newFadeIn creates a fade toward target over seconds. A non-positive
// duration starts fully faded in.
func newFadeIn(target, seconds float64) *fadeIn {
	f := &fadeIn{target: target, seconds: seconds}
	if seconds <= 0 {
		f.value = target
		f.done = true
		return f
	}
	f.tween = gween.New(0, float32(target), float32(seconds), ease.OutCubic)
	return f
}

// Update advances the fade by dt seconds and returns the current intensity.
func (f *fadeIn) Update(dt float64) float64 {
	if f.done {
		return f.value
	}
	f.elapsed += dt
	val, finished := f.tween.Update(float32(dt))
	f.value = float64(val)
	if finished {
		f.value = f.target
		f.done = true
	}
	return f.value
}

// retarget changes the final intensity, restarting the remaining ramp from
// the current value.
func (f *fadeIn) retarget(target float64) {
	f.target = target
	if f.done || f.elapsed >= f.seconds {
		f.value = target
		f.done = true
		return
	}
	remaining := f.seconds - f.elapsed
	f.seconds, f.elapsed = remaining, 0
	f.tween = gween.New(float32(f.value), float32(target), float32(remaining), ease.OutCubic)
}
