package main

import (
	"math"
	"strings"

	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/value"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func rotationZ(tc *components.TransformComponent) float64 {
	return value.RotationZ(tc.Rotation)
}
