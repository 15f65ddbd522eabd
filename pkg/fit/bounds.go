// Package fit normalizes avatar and garment subtrees to a canonical frame,
// places a garment on a body and recolors garments without touching
// materials shared with other instances.
//
// All functions operate on a *scene.Node borrowed for the duration of the
// call. They keep no state between calls and are safe to use concurrently
// on independent subtrees.
package fit

import (
	"math"

	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// Epsilon is the smallest extent used as a divisor. Degenerate boxes are
// clamped to it so scale factors stay finite.
const Epsilon = 1e-6

// AABB is an axis-aligned bounding box. Min <= Max component-wise.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math3d.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Width is the X extent.
func (b AABB) Width() float64 { return b.Max.X - b.Min.X }

// Height is the Y extent.
func (b AABB) Height() float64 { return b.Max.Y - b.Min.Y }

// Union returns the smallest box containing both.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// IsFinite reports whether both corners are finite.
func (b AABB) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

// Measurement is the result of Measure.
type Measurement struct {
	Box AABB

	// Contributing counts surfaces whose geometry produced finite bounds.
	Contributing int
	// Skipped counts surfaces ignored because their bounds were not finite.
	Skipped int
}

// Empty reports whether no surface contributed to the box.
func (m Measurement) Empty() bool {
	return m.Contributing == 0
}

// ComputeBounds returns the union AABB of every surface reachable from root,
// in root's parent frame. A subtree without usable geometry yields the zero
// box at the origin.
func ComputeBounds(root *scene.Node) AABB {
	return Measure(root).Box
}

// Measure computes the subtree's bounds and reports which surfaces were used.
// Surfaces with NaN or infinite vertex data are skipped.
func Measure(root *scene.Node) Measurement {
	var m Measurement
	first := true

	root.Walk(func(n *scene.Node, world math3d.Mat4) {
		for _, s := range n.Surfaces {
			box, ok := surfaceBounds(s, world)
			if !ok {
				if s != nil && s.Geometry != nil && len(s.Geometry.Positions) > 0 {
					m.Skipped++
				}
				continue
			}
			if first {
				m.Box = box
				first = false
			} else {
				m.Box = m.Box.Union(box)
			}
			m.Contributing++
		}
	})

	return m
}

// surfaceBounds transforms every vertex of s by world. ok is false when the
// surface has no vertices or any transformed vertex is not finite.
func surfaceBounds(s *scene.Surface, world math3d.Mat4) (AABB, bool) {
	if s == nil || s.Geometry == nil || len(s.Geometry.Positions) == 0 {
		return AABB{}, false
	}

	minV := math3d.Splat3(math.Inf(1))
	maxV := math3d.Splat3(math.Inf(-1))
	for _, p := range s.Geometry.Positions {
		w := world.MulVec3(p)
		if !w.IsFinite() {
			return AABB{}, false
		}
		minV = minV.Min(w)
		maxV = maxV.Max(w)
	}
	return AABB{Min: minV, Max: maxV}, true
}
