package track

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/animrt/pkg/value"
	"github.com/go-gl/mathgl/mgl64"
)

func floatKeys(pairs ...float64) []Key {
	keys := make([]Key, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		keys = append(keys, Key{Frame: pairs[i], Value: value.Float(pairs[i+1])})
	}
	return keys
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("empty", "x", value.KindFloat, 60, nil); !errors.Is(err, ErrNoKeys) {
		t.Errorf("Expected ErrNoKeys, got %v", err)
	}
	if _, err := New("fps", "x", value.KindFloat, 0, floatKeys(0, 1)); err == nil {
		t.Error("Expected error for zero fps")
	}
	mixed := []Key{{Frame: 0, Value: value.Float(0)}, {Frame: 1, Value: value.Vector2{1, 1}}}
	if _, err := New("mixed", "x", value.KindFloat, 60, mixed); err == nil {
		t.Error("Expected error for mismatched key kind")
	}
}

func TestNew_SortsAndPadsFirstKey(t *testing.T) {
	k := MustNew("pad", "x", value.KindFloat, 60, floatKeys(20, 2, 10, 1))

	keys := k.Keys()
	if len(keys) != 3 {
		t.Fatalf("Expected 3 keys after padding, got %d", len(keys))
	}
	if keys[0].Frame != 0 || keys[0].Value != value.Float(1) {
		t.Errorf("Expected padded key {0 1}, got %+v", keys[0])
	}
	if keys[1].Frame != 10 || keys[2].Frame != 20 {
		t.Errorf("Expected keys sorted by frame, got %+v", keys)
	}
}

func TestInterpolate_Linear(t *testing.T) {
	k := MustNew("lin", "x", value.KindFloat, 60, floatKeys(0, 0, 10, 10, 20, 0))

	tests := []struct {
		frame float64
		want  float64
	}{
		{-5, 0},
		{0, 0},
		{5, 5},
		{10, 10},
		{15, 5},
		{25, 0},
	}
	state := &State{}
	for _, tt := range tests {
		got := k.Interpolate(tt.frame, state)
		if math.Abs(float64(got.(value.Float))-tt.want) > 1e-9 {
			t.Errorf("frame %v: expected %v, got %v", tt.frame, tt.want, got)
		}
	}
}

// The cached key index must not break lookups that move backwards.
func TestInterpolate_KeyCacheBackwards(t *testing.T) {
	k := MustNew("lin", "x", value.KindFloat, 60, floatKeys(0, 0, 10, 10, 20, 20, 30, 30))
	state := &State{}

	k.Interpolate(25, state)
	got := k.Interpolate(5, state)
	if got != value.Float(5) {
		t.Errorf("Expected 5 after seeking back, got %v", got)
	}
}

func TestInterpolate_LoopModes(t *testing.T) {
	k := MustNew("lin", "x", value.KindFloat, 60, floatKeys(0, 0, 10, 10))

	relative := &State{LoopMode: LoopRelative, RepeatCount: 2, Offset: value.Float(10)}
	if got := k.Interpolate(5, relative); got != value.Float(25) {
		t.Errorf("Expected relative 25, got %v", got)
	}

	constant := &State{LoopMode: LoopConstant, RepeatCount: 1, HighLimit: value.Float(10)}
	if got := k.Interpolate(2, constant); got != value.Float(10) {
		t.Errorf("Expected constant high limit 10, got %v", got)
	}

	// First pass of a constant loop still samples normally.
	first := &State{LoopMode: LoopConstant, HighLimit: value.Float(10)}
	if got := k.Interpolate(2, first); got != value.Float(2) {
		t.Errorf("Expected 2 on first pass, got %v", got)
	}
}

func TestInterpolate_Quaternion(t *testing.T) {
	q0 := value.IdentityQuaternion()
	q1 := value.Quaternion(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	k := MustNew("rot", "rotation", value.KindQuaternion, 60, []Key{{0, q0}, {10, q1}})

	got := k.Interpolate(5, nil)
	want := value.Quaternion(mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}))
	if !value.ApproxEqual(got, want, 1e-6) {
		t.Errorf("Expected 45 degree rotation, got %+v", got)
	}
}

func TestInterpolate_MatrixModes(t *testing.T) {
	a := value.IdentityMatrix()
	b := value.Matrix(mgl64.HomogRotate3DZ(math.Pi / 2))
	keys := []Key{{0, a}, {10, b}}

	decomposed := MustNew("m", "matrix", value.KindMatrix, 60, keys)
	want := value.Matrix(mgl64.HomogRotate3DZ(math.Pi / 4))
	if got := decomposed.Interpolate(5, nil); !value.ApproxEqual(got, want, 1e-6) {
		t.Errorf("Expected decomposed rotation, got %v", got)
	}

	elementwise := MustNew("m", "matrix", value.KindMatrix, 60, keys, WithMatrixInterpolation(true, false))
	if got := elementwise.Interpolate(5, nil); !value.ApproxEqual(got, value.Lerp(a, b, 0.5), 1e-9) {
		t.Errorf("Expected element-wise lerp, got %v", got)
	}

	stepped := MustNew("m", "matrix", value.KindMatrix, 60, keys, WithMatrixInterpolation(false, false))
	if got := stepped.Interpolate(5, nil); got != a {
		t.Errorf("Expected stepped matrix to hold the left key, got %v", got)
	}
}

func TestRangesAndOptions(t *testing.T) {
	ease := func(t float64) float64 { return t * t }
	k := MustNew("opts", "x", value.KindFloat, 30, floatKeys(0, 0, 60, 1),
		WithLoopMode(LoopYoyo),
		WithBlending(Blending{Enabled: true, Speed: 0.1, Easing: ease}),
		WithRanges(Range{Name: "idle", From: 0, To: 30}),
		WithEvents(Event{Name: "hit", Frame: 15}),
	)

	if k.LoopMode() != LoopYoyo {
		t.Errorf("Expected yoyo, got %v", k.LoopMode())
	}
	if b := k.Blending(); !b.Enabled || b.Speed != 0.1 {
		t.Errorf("Unexpected blending %+v", b)
	}
	if r, ok := k.Range("idle"); !ok || r.To != 30 {
		t.Errorf("Expected idle range, got %+v %v", r, ok)
	}
	if _, ok := k.Range("walk"); ok {
		t.Error("Expected missing range")
	}
	if len(k.Events()) != 1 || k.Events()[0].Name != "hit" {
		t.Errorf("Unexpected events %+v", k.Events())
	}
}

func TestParseLoopMode(t *testing.T) {
	for _, mode := range []LoopMode{LoopCycle, LoopRelative, LoopConstant, LoopYoyo} {
		got, err := ParseLoopMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseLoopMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if got, _ := ParseLoopMode(""); got != LoopCycle {
		t.Errorf("Expected empty string to mean cycle, got %v", got)
	}
	if _, err := ParseLoopMode("pingpong"); err == nil {
		t.Error("Expected error for unknown loop mode")
	}
}
