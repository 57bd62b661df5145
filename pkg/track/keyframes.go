package track

import (
	"errors"
	"fmt"
	"sort"

	"github.com/decker502/animrt/pkg/value"
)

// ErrNoKeys is returned when a track is built without keyframes.
var ErrNoKeys = errors.New("track has no keys")

// Keyframes is an immutable track with linear interpolation between keys.
//
// Quaternion keys are slerped, Color3 keys are blended in RGB and matrices are
// either decomposed (scale/rotation/translation), lerped element-wise, or stepped,
// depending on WithMatrixInterpolation.
type Keyframes struct {
	name     string
	property string
	kind     value.Kind
	fps      float64
	loopMode LoopMode
	blending Blending
	keys     []Key
	events   []Event
	ranges   map[string]Range

	matrixLerp      bool
	matrixDecompose bool
}

// Option configures a Keyframes track at construction time.
type Option func(*Keyframes)

// WithLoopMode sets the track loop mode (default LoopCycle).
func WithLoopMode(mode LoopMode) Option {
	return func(k *Keyframes) { k.loopMode = mode }
}

// WithBlending enables the blend-in window.
func WithBlending(b Blending) Option {
	return func(k *Keyframes) { k.blending = b }
}

// WithEvents attaches frame events.
func WithEvents(events ...Event) Option {
	return func(k *Keyframes) { k.events = append(k.events, events...) }
}

// WithRanges attaches named frame windows.
func WithRanges(ranges ...Range) Option {
	return func(k *Keyframes) {
		for _, r := range ranges {
			k.ranges[r.Name] = r
		}
	}
}

// WithMatrixInterpolation controls matrix keys. With interpolate=false matrices
// step from key to key; decompose selects scale/rotation/translation blending
// over element-wise lerp. Both default to true.
func WithMatrixInterpolation(interpolate, decompose bool) Option {
	return func(k *Keyframes) {
		k.matrixLerp = interpolate
		k.matrixDecompose = decompose
	}
}

// New builds a keyframe track.
//
// Keys are sorted by frame. If the first key is after frame 0, a copy of it is
// inserted at frame 0 so every track starts at 0.
func New(name, property string, kind value.Kind, fps float64, keys []Key, opts ...Option) (*Keyframes, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("track %q: %w", name, ErrNoKeys)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("track %q: fps must be positive, got %v", name, fps)
	}
	for i, key := range keys {
		if key.Value == nil || key.Value.Kind() != kind {
			return nil, fmt.Errorf("track %q: key %d is not a %s", name, i, kind)
		}
	}

	sorted := make([]Key, len(keys), len(keys)+1)
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	if sorted[0].Frame > 0 {
		sorted = append([]Key{{Frame: 0, Value: sorted[0].Value}}, sorted...)
	}

	k := &Keyframes{
		name:            name,
		property:        property,
		kind:            kind,
		fps:             fps,
		keys:            sorted,
		ranges:          make(map[string]Range),
		matrixLerp:      true,
		matrixDecompose: true,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// MustNew is New for statically known tracks; it panics on error.
func MustNew(name, property string, kind value.Kind, fps float64, keys []Key, opts ...Option) *Keyframes {
	k, err := New(name, property, kind, fps, keys, opts...)
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Keyframes) Name() string            { return k.name }
func (k *Keyframes) TargetProperty() string  { return k.property }
func (k *Keyframes) DataType() value.Kind    { return k.kind }
func (k *Keyframes) FramePerSecond() float64 { return k.fps }
func (k *Keyframes) LoopMode() LoopMode      { return k.loopMode }
func (k *Keyframes) Blending() Blending      { return k.blending }
func (k *Keyframes) Keys() []Key             { return k.keys }
func (k *Keyframes) Events() []Event         { return k.events }

// Range looks up a named frame window.
func (k *Keyframes) Range(name string) (Range, bool) {
	r, ok := k.ranges[name]
	return r, ok
}

// Interpolate evaluates the track at frame.
//
// With LoopConstant the cached high-limit value is returned once the range has
// been completed at least once; with LoopRelative the per-cycle offset is added
// RepeatCount times.
func (k *Keyframes) Interpolate(frame float64, state *State) value.Value {
	if state != nil && state.LoopMode == LoopConstant && state.RepeatCount > 0 && state.HighLimit != nil {
		return state.HighLimit
	}

	v := k.sample(frame, state)

	if state != nil && state.LoopMode == LoopRelative && state.Offset != nil && state.RepeatCount != 0 {
		v = value.ScaleAndAdd(v, state.Offset, float64(state.RepeatCount))
	}
	return v
}

func (k *Keyframes) sample(frame float64, state *State) value.Value {
	keys := k.keys
	last := len(keys) - 1
	if last == 0 || frame <= keys[0].Frame {
		return keys[0].Value
	}
	if frame >= keys[last].Frame {
		return keys[last].Value
	}

	start := 0
	if state != nil && state.Key > 0 && state.Key < last {
		start = state.Key
		for start > 0 && keys[start].Frame >= frame {
			start--
		}
	}

	for i := start; i < last; i++ {
		a, b := keys[i], keys[i+1]
		if b.Frame < frame {
			continue
		}
		if state != nil {
			state.Key = i
		}
		span := b.Frame - a.Frame
		if span <= 0 {
			return b.Value
		}
		return k.lerp(a.Value, b.Value, (frame-a.Frame)/span)
	}
	return keys[last].Value
}

func (k *Keyframes) lerp(a, b value.Value, gradient float64) value.Value {
	if k.kind != value.KindMatrix {
		return value.Lerp(a, b, gradient)
	}
	switch {
	case !k.matrixLerp:
		return a
	case k.matrixDecompose:
		return value.DecomposeLerp(a.(value.Matrix), b.(value.Matrix), gradient)
	default:
		return value.Lerp(a, b, gradient)
	}
}
