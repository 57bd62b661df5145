// Package track defines the keyframe track contract consumed by the animation
// runtime, and Keyframes, a concrete linear track.
//
// A track is immutable once built: the runtime only reads its keys, metadata and
// events, and asks it to Interpolate a frame into a raw value.
package track

import (
	"fmt"
	"strings"

	"github.com/decker502/animrt/pkg/value"
)

// LoopMode controls what happens when playback passes the end of a range.
type LoopMode int

const (
	// LoopCycle restarts from the beginning of the range.
	LoopCycle LoopMode = iota
	// LoopRelative restarts but accumulates the range offset on every cycle.
	LoopRelative
	// LoopConstant holds the value at the end of the range after the first pass.
	LoopConstant
	// LoopYoyo plays the range forward then backward.
	LoopYoyo
)

// String returns the config spelling of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopCycle:
		return "cycle"
	case LoopRelative:
		return "relative"
	case LoopConstant:
		return "constant"
	case LoopYoyo:
		return "yoyo"
	default:
		return "unknown"
	}
}

// ParseLoopMode converts a config string into a LoopMode. Empty means cycle.
func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cycle":
		return LoopCycle, nil
	case "relative":
		return LoopRelative, nil
	case "constant":
		return LoopConstant, nil
	case "yoyo":
		return LoopYoyo, nil
	default:
		return 0, fmt.Errorf("unknown loop mode %q", s)
	}
}

// Key is a single keyframe.
type Key struct {
	Frame float64
	Value value.Value
}

// Event fires once playback reaches Frame.
// OnlyOnce events are removed from a runtime animation after firing; the others
// are re-armed every time the animation loops.
type Event struct {
	Name     string
	Frame    float64
	OnlyOnce bool
	Action   func(currentFrame float64)
}

// Range is a named [From, To] frame window.
type Range struct {
	Name string
	From float64
	To   float64
}

// Blending describes the one-shot smoothing window applied when an animation
// starts writing a property: the value moves from whatever the property held
// toward the animated value, advancing by Speed per write.
type Blending struct {
	Enabled bool
	Speed   float64
	// Easing reshapes the blend factor; nil means linear.
	Easing func(t float64) float64
}

// Properties is a per-target override of the track's loop and blending settings.
type Properties struct {
	LoopMode *LoopMode
	Blending *Blending
}

// State is the per-runtime-animation interpolation scratch state.
type State struct {
	// Key caches the index of the last key segment used, speeding up sequential lookups.
	Key int
	// RepeatCount is the number of completed passes over the current range.
	RepeatCount int
	// LoopMode is the effective loop mode (track mode or target override).
	LoopMode LoopMode
	// Offset is the per-cycle accumulation for LoopRelative.
	Offset value.Value
	// HighLimit is the value at the end of the range, held by LoopConstant.
	HighLimit value.Value
}

// Track is the read-only keyframe data the runtime animates.
type Track interface {
	// Name identifies the track (used by Animatable.Stop name filters).
	Name() string
	// TargetProperty is the dotted property path written on the target, e.g. "position.x".
	TargetProperty() string
	DataType() value.Kind
	FramePerSecond() float64
	LoopMode() LoopMode
	Blending() Blending
	// Keys returns the keyframes sorted by frame. Callers must not modify the slice.
	Keys() []Key
	Events() []Event
	// Range looks up a named frame window.
	Range(name string) (Range, bool)
	// Interpolate evaluates the track at frame. It must not mutate the track.
	Interpolate(frame float64, state *State) value.Value
}
