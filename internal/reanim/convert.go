package reanim

import (
	"fmt"

	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// Ranges returns the named frame windows of every "anim_*" definition track:
// the first and last frame in which the definition is visible.
// Definitions that are never visible are skipped.
func (r *ReanimXML) Ranges() []track.Range {
	var ranges []track.Range
	for i := range r.Tracks {
		t := &r.Tracks[i]
		if !t.IsDefinition() {
			continue
		}
		first, last := -1, -1
		for f, frame := range t.Resolve() {
			if !frame.Visible {
				continue
			}
			if first < 0 {
				first = f
			}
			last = f
		}
		if first >= 0 {
			ranges = append(ranges, track.Range{Name: t.Name, From: float64(first), To: float64(last)})
		}
	}
	return ranges
}

// PartTracks are the keyframe tracks derived from one part track.
type PartTracks struct {
	Part string
	// Position is a Vector3 track on "position" (z = 0).
	Position *track.Keyframes
	// Scaling is a Vector3 track on "scaling" (z = 1).
	Scaling *track.Keyframes
	// Skew is a Vector2 track on "skew", in degrees.
	Skew *track.Keyframes
}

// Tracks returns the non-nil tracks in a fixed order.
func (p PartTracks) Tracks() []track.Track {
	var out []track.Track
	for _, k := range []*track.Keyframes{p.Position, p.Scaling, p.Skew} {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// BuildPartTracks converts every part track into keyframe tracks, one key per
// reanim frame. Every produced track carries the file's named ranges so a
// clip can be played with track.Range lookups. Constant channels (e.g. a part
// that never scales) are omitted.
func (r *ReanimXML) BuildPartTracks(opts ...track.Option) ([]PartTracks, error) {
	ranges := r.Ranges()
	opts = append([]track.Option{track.WithRanges(ranges...)}, opts...)
	fps := float64(r.FPS)

	var parts []PartTracks
	for i := range r.Tracks {
		t := &r.Tracks[i]
		if t.IsDefinition() || len(t.Frames) == 0 {
			continue
		}
		frames := t.Resolve()

		position := make([]track.Key, len(frames))
		scaling := make([]track.Key, len(frames))
		skew := make([]track.Key, len(frames))
		for f, rf := range frames {
			frame := float64(f)
			position[f] = track.Key{Frame: frame, Value: value.Vector3{rf.X, rf.Y, 0}}
			scaling[f] = track.Key{Frame: frame, Value: value.Vector3{rf.ScaleX, rf.ScaleY, 1}}
			skew[f] = track.Key{Frame: frame, Value: value.Vector2{rf.SkewX, rf.SkewY}}
		}

		pt := PartTracks{Part: t.Name}
		var err error
		if pt.Position, err = buildChannel(t.Name, "position", value.KindVector3, fps, position, opts); err != nil {
			return nil, err
		}
		if pt.Scaling, err = buildChannel(t.Name, "scaling", value.KindVector3, fps, scaling, opts); err != nil {
			return nil, err
		}
		if pt.Skew, err = buildChannel(t.Name, "skew", value.KindVector2, fps, skew, opts); err != nil {
			return nil, err
		}
		parts = append(parts, pt)
	}
	return parts, nil
}

// buildChannel returns nil for a channel whose value never changes.
func buildChannel(part, property string, kind value.Kind, fps float64, keys []track.Key, opts []track.Option) (*track.Keyframes, error) {
	if isConstant(keys) {
		return nil, nil
	}
	k, err := track.New(part+"/"+property, property, kind, fps, keys, opts...)
	if err != nil {
		return nil, fmt.Errorf("part '%s': %w", part, err)
	}
	return k, nil
}

func isConstant(keys []track.Key) bool {
	for _, k := range keys[1:] {
		if k.Value != keys[0].Value {
			return false
		}
	}
	return true
}
