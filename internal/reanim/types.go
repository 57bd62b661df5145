// Package reanim reads Reanim skeletal animation files and turns them into
// keyframe tracks for the animation runtime.
//
// A reanim file holds one track per sprite part ("head", "body", ...) plus
// "anim_*" definition tracks whose visibility windows name the frame ranges
// of each clip ("anim_idle", "anim_walk", ...).
package reanim

// ReanimXML is the root of a parsed reanim file.
type ReanimXML struct {
	// FPS is the playback rate of every track in the file.
	FPS int `xml:"fps"`

	Tracks []Track `xml:"track"`
}

// Track is either a part track (per-frame transforms) or an "anim_*"
// definition track (visibility only).
type Track struct {
	Name   string  `xml:"name"`
	Frames []Frame `xml:"t"`
}

// Frame is one frame of a track. Nil fields inherit the previous frame's
// value; see Resolve.
type Frame struct {
	// FrameNum is the visibility flag: -1 hides the part, 0 shows it.
	FrameNum *int `xml:"f,omitempty"`

	X *float64 `xml:"x,omitempty"`
	Y *float64 `xml:"y,omitempty"`

	ScaleX *float64 `xml:"sx,omitempty"`
	ScaleY *float64 `xml:"sy,omitempty"`

	// SkewX and SkewY are in degrees.
	SkewX *float64 `xml:"kx,omitempty"`
	SkewY *float64 `xml:"ky,omitempty"`

	// ImagePath references the sprite drawn for this part, e.g. "IMAGE_REANIM_PEASHOOTER_HEAD".
	ImagePath string `xml:"i,omitempty"`
}

// ResolvedFrame is a Frame with inheritance applied: every field is set.
type ResolvedFrame struct {
	Visible        bool
	X, Y           float64
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
	ImagePath      string
}

// IsDefinition reports whether the track is an "anim_*" range definition.
func (t *Track) IsDefinition() bool {
	return len(t.Name) > 5 && t.Name[:5] == "anim_"
}

// Resolve applies cumulative inheritance: a nil field takes the value of the
// previous frame, and the first frame falls back to visible, origin, unit
// scale and no skew.
func (t *Track) Resolve() []ResolvedFrame {
	out := make([]ResolvedFrame, len(t.Frames))
	cur := ResolvedFrame{Visible: true, ScaleX: 1, ScaleY: 1}
	for i, f := range t.Frames {
		if f.FrameNum != nil {
			cur.Visible = *f.FrameNum != -1
		}
		inherit(&cur.X, f.X)
		inherit(&cur.Y, f.Y)
		inherit(&cur.ScaleX, f.ScaleX)
		inherit(&cur.ScaleY, f.ScaleY)
		inherit(&cur.SkewX, f.SkewX)
		inherit(&cur.SkewY, f.SkewY)
		if f.ImagePath != "" {
			cur.ImagePath = f.ImagePath
		}
		out[i] = cur
	}
	return out
}

func inherit(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
