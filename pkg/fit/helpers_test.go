package fit

import (
	"math"
	"testing"

	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// boxNode returns a node whose single surface spans the box (lo, hi).
func boxNode(name string, lo, hi math3d.Vec3) *scene.Node {
	positions := make([]math3d.Vec3, 0, 8)
	for i := range 8 {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		positions = append(positions, p)
	}
	geom := &scene.Geometry{
		Positions: positions,
		Indices: []int{
			0, 1, 3, 0, 3, 2, // -z
			4, 6, 7, 4, 7, 5, // +z
			0, 4, 5, 0, 5, 1, // -y
			2, 3, 7, 2, 7, 6, // +y
			0, 2, 6, 0, 6, 4, // -x
			1, 5, 7, 1, 7, 3, // +x
		},
	}
	return scene.NewNode(name).AddSurface(scene.NewSurface(name, geom, scene.DefaultMaterial()))
}

func assertNear(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func assertBoxOrdered(t *testing.T, b AABB) {
	t.Helper()
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		t.Errorf("box %v has min > max", b)
	}
}
