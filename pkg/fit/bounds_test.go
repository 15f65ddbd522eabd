package fit

import (
	"math"
	"testing"

	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

func TestComputeBounds(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *scene.Node
		min, max math3d.Vec3
	}{
		{
			name: "single box",
			build: func() *scene.Node {
				return boxNode("box", math3d.V3(-1, 0, -2), math3d.V3(1, 3, 2))
			},
			min: math3d.V3(-1, 0, -2),
			max: math3d.V3(1, 3, 2),
		},
		{
			name: "root transform applied",
			build: func() *scene.Node {
				n := boxNode("box", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
				n.Translation = math3d.V3(10, 0, 0)
				n.Scale = math3d.Splat3(2)
				return n
			},
			min: math3d.V3(10, 0, 0),
			max: math3d.V3(12, 2, 2),
		},
		{
			name: "children unioned",
			build: func() *scene.Node {
				root := scene.NewNode("root")
				a := boxNode("a", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
				b := boxNode("b", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
				b.Translation = math3d.V3(0, 5, 0)
				return root.AddChild(a).AddChild(b)
			},
			min: math3d.V3(0, 0, 0),
			max: math3d.V3(1, 6, 1),
		},
		{
			name: "rotated child uses exact vertices",
			build: func() *scene.Node {
				root := scene.NewNode("root")
				c := boxNode("c", math3d.V3(0, 0, 0), math3d.V3(2, 1, 1))
				c.Rotation = math3d.QuatFromAxisAngle(math3d.Up(), math.Pi/2)
				return root.AddChild(c)
			},
			min: math3d.V3(0, 0, -2),
			max: math3d.V3(1, 1, 0),
		},
		{
			name: "single point",
			build: func() *scene.Node {
				geom := &scene.Geometry{Positions: []math3d.Vec3{math3d.V3(3, 4, 5)}}
				return scene.NewNode("pt").AddSurface(scene.NewSurface("pt", geom))
			},
			min: math3d.V3(3, 4, 5),
			max: math3d.V3(3, 4, 5),
		},
		{
			name:  "empty subtree",
			build: func() *scene.Node { return scene.NewNode("empty") },
		},
		{
			name:  "nil subtree",
			build: func() *scene.Node { return nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBounds(tt.build())
			assertBoxOrdered(t, b)
			if !b.Min.ApproxEqual(tt.min, 1e-9) || !b.Max.ApproxEqual(tt.max, 1e-9) {
				t.Errorf("bounds = %v, want {%v %v}", b, tt.min, tt.max)
			}
		})
	}
}

func TestMeasureSkipsNonFiniteSurfaces(t *testing.T) {
	root := scene.NewNode("root")
	good := boxNode("good", math3d.V3(0, 0, 0), math3d.V3(1, 2, 1))
	bad := scene.NewNode("bad").AddSurface(scene.NewSurface("bad", &scene.Geometry{
		Positions: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(math.NaN(), 100, 0), math3d.V3(0, math.Inf(1), 0)},
	}))
	root.AddChild(bad).AddChild(good)

	m := Measure(root)
	if m.Contributing != 1 || m.Skipped != 1 {
		t.Errorf("contributing=%d skipped=%d, want 1 and 1", m.Contributing, m.Skipped)
	}
	if !m.Box.Max.ApproxEqual(math3d.V3(1, 2, 1), 1e-9) {
		t.Errorf("box max = %v, want (1,2,1)", m.Box.Max)
	}
}

func TestMeasureAllNonFinite(t *testing.T) {
	n := scene.NewNode("bad").AddSurface(scene.NewSurface("bad", &scene.Geometry{
		Positions: []math3d.Vec3{math3d.V3(math.NaN(), 0, 0)},
	}))

	m := Measure(n)
	if !m.Empty() {
		t.Fatalf("Empty() = false, want true")
	}
	if m.Box != (AABB{}) {
		t.Errorf("box = %v, want zero box", m.Box)
	}
}

func TestAABB(t *testing.T) {
	b := NewAABB(math3d.V3(2, 3, -1), math3d.V3(-2, 1, 1))
	assertBoxOrdered(t, b)
	assertNear(t, "width", b.Width(), 4)
	assertNear(t, "height", b.Height(), 2)
	if c := b.Center(); !c.ApproxEqual(math3d.V3(0, 2, 0), 1e-12) {
		t.Errorf("center = %v, want (0,2,0)", c)
	}

	u := b.Union(NewAABB(math3d.V3(5, 5, 5), math3d.V3(6, 6, 6)))
	if !u.Max.ApproxEqual(math3d.V3(6, 6, 6), 0) || !u.Min.ApproxEqual(math3d.V3(-2, 1, -1), 0) {
		t.Errorf("union = %v", u)
	}
}

func BenchmarkComputeBounds(b *testing.B) {
	root := scene.NewNode("root")
	for i := range 64 {
		c := boxNode("c", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
		c.Translation = math3d.V3(float64(i), 0, 0)
		root.AddChild(c)
	}
	for b.Loop() {
		ComputeBounds(root)
	}
}
