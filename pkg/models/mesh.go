// Package models loads glTF assets into scene subtrees, caches parsed
// assets for reuse and bakes subtrees into flat meshes for rendering.
package models

import (
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// Mesh is a world-space snapshot of a scene subtree: every surface's
// triangles transformed by its node's world matrix and concatenated.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []*scene.Material

	// Bounding box (calculated on bake)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Bake flattens root into a Mesh. Surfaces with several material slots use
// the first slot; materials are referenced, not copied. Non-finite
// vertices are kept but faces touching them are dropped.
func Bake(root *scene.Node, name string) *Mesh {
	mesh := NewMesh(name)
	slots := map[*scene.Material]int{}

	root.Walk(func(n *scene.Node, world math3d.Mat4) {
		for _, s := range n.Surfaces {
			if s == nil || s.Geometry == nil {
				continue
			}
			mat := -1
			if len(s.Materials) > 0 && s.Materials[0] != nil {
				m := s.Materials[0]
				idx, ok := slots[m]
				if !ok {
					idx = len(mesh.Materials)
					slots[m] = idx
					mesh.Materials = append(mesh.Materials, m)
				}
				mat = idx
			}

			base := len(mesh.Vertices)
			for _, p := range s.Geometry.Positions {
				mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: world.MulVec3(p)})
			}
			for i := range s.Geometry.TriangleCount() {
				tri := s.Geometry.Triangle(i)
				if !mesh.validFace(base, tri, len(s.Geometry.Positions)) {
					continue
				}
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{base + tri[0], base + tri[1], base + tri[2]},
					Material: mat,
				})
			}
		}
	})

	mesh.CalculateNormals()
	mesh.CalculateBounds()
	return mesh
}

func (m *Mesh) validFace(base int, tri [3]int, count int) bool {
	for _, idx := range tri {
		if idx < 0 || idx >= count || !m.Vertices[base+idx].Position.IsFinite() {
			return false
		}
	}
	return true
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	first := true
	for _, v := range m.Vertices {
		if !v.Position.IsFinite() {
			continue
		}
		if first {
			m.BoundsMin, m.BoundsMax = v.Position, v.Position
			first = false
			continue
		}
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals computes face normals and assigns them to vertices.
// Vertices shared between faces end up with the last face's normal, which
// is fine for flat shading.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// FaceNormal returns the geometric normal of face i.
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	f := m.Faces[i]
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

// Append adds other's faces and materials to m.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	matBase := len(m.Materials)
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Materials = append(m.Materials, other.Materials...)
	for _, f := range other.Faces {
		if f.Material >= 0 {
			f.Material += matBase
		}
		f.V = [3]int{f.V[0] + base, f.V[1] + base, f.V[2] + base}
		m.Faces = append(m.Faces, f)
	}
	m.CalculateBounds()
}

// GetVertex returns the position and normal for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetMaterial returns the material of face i, or nil.
func (m *Mesh) GetMaterial(face int) *scene.Material {
	idx := m.Faces[face].Material
	if idx < 0 || idx >= len(m.Materials) {
		return nil
	}
	return m.Materials[idx]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
