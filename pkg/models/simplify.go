package models

import (
	"github.com/fogleman/simplify"
	"github.com/taigrr/avatarfit/pkg/math3d"
)

// Simplify returns a mesh with at most about maxTriangles faces. Faces are
// decimated per material so colors survive. m is returned unchanged when it
// is already small enough or maxTriangles is not positive.
func Simplify(m *Mesh, maxTriangles int) *Mesh {
	if maxTriangles <= 0 || m.TriangleCount() <= maxTriangles {
		return m
	}
	factor := float64(maxTriangles) / float64(m.TriangleCount())

	groups := map[int][]*simplify.Triangle{}
	var order []int
	for _, f := range m.Faces {
		if _, ok := groups[f.Material]; !ok {
			order = append(order, f.Material)
		}
		groups[f.Material] = append(groups[f.Material], simplify.NewTriangle(
			toVector(m.Vertices[f.V[0]].Position),
			toVector(m.Vertices[f.V[1]].Position),
			toVector(m.Vertices[f.V[2]].Position),
		))
	}

	out := NewMesh(m.Name)
	out.Materials = m.Materials
	for _, mat := range order {
		reduced := simplify.NewMesh(groups[mat]).Simplify(factor)
		for _, t := range reduced.Triangles {
			base := len(out.Vertices)
			for _, v := range [3]simplify.Vector{t.V1, t.V2, t.V3} {
				out.Vertices = append(out.Vertices, MeshVertex{Position: math3d.V3(v.X, v.Y, v.Z)})
			}
			out.Faces = append(out.Faces, Face{V: [3]int{base, base + 1, base + 2}, Material: mat})
		}
	}

	out.CalculateNormals()
	out.CalculateBounds()
	return out
}

func toVector(v math3d.Vec3) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
