package scene

import (
	"image"

	"github.com/taigrr/avatarfit/pkg/math3d"
)

// Ownership records whether a surface's materials belong to it alone.
type Ownership int

const (
	// OwnershipUnknown means nothing is known; treat as shared.
	OwnershipUnknown Ownership = iota
	// OwnershipShared means the materials may be referenced by other
	// instances loaded from the same source asset.
	OwnershipShared
	// OwnershipExclusive means every material slot was cloned for this
	// surface and nothing else references it.
	OwnershipExclusive
)

func (o Ownership) String() string {
	switch o {
	case OwnershipShared:
		return "shared"
	case OwnershipExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// Surface is one renderable unit: geometry drawn with one or more materials.
type Surface struct {
	Name      string
	Geometry  *Geometry
	Materials []*Material
	Ownership Ownership
}

// NewSurface creates a surface with the given geometry and material slots.
// Ownership starts out unknown.
func NewSurface(name string, geom *Geometry, materials ...*Material) *Surface {
	return &Surface{
		Name:      name,
		Geometry:  geom,
		Materials: materials,
	}
}

// share returns a surface that references the same geometry and materials.
// Both surfaces alias the material slots afterwards, so s loses any
// exclusive claim it had.
func (s *Surface) share() *Surface {
	if s == nil {
		return nil
	}
	s.Ownership = OwnershipShared
	return &Surface{
		Name:      s.Name,
		Geometry:  s.Geometry,
		Materials: append([]*Material(nil), s.Materials...),
		Ownership: OwnershipShared,
	}
}

// Geometry holds triangle data. It is never mutated after load and may be
// shared between instances.
type Geometry struct {
	Positions []math3d.Vec3
	Indices   []int // Triangle list; len is a multiple of 3
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i. Unindexed geometry is
// read as consecutive vertex triples.
func (g *Geometry) Triangle(i int) [3]int {
	if len(g.Indices) > 0 {
		return [3]int{g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]}
	}
	return [3]int{i * 3, i*3 + 1, i*3 + 2}
}

// Material is a PBR material, a subset of the glTF metallic-roughness model.
type Material struct {
	Name      string
	BaseColor [4]float64 // Linear RGBA in 0-1 range
	Metallic  float64
	Roughness float64
	BaseMap   image.Image // Optional, read-only
}

// DefaultMaterial returns the glTF default: opaque white, fully rough.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		BaseColor: [4]float64{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
}

// Clone returns an independent copy. The base texture is immutable and
// stays shared.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}
