// Package scene provides the mesh subtree the fitting engine operates on: a
// tree of transformable nodes carrying renderable surfaces.
//
// A subtree is owned by whoever loaded it. Functions that take a *Node borrow
// it for the duration of the call and do not keep a reference afterwards.
package scene

import (
	"github.com/taigrr/avatarfit/pkg/math3d"
)

// Node is a transformable element of a mesh subtree.
type Node struct {
	Name string

	// Local transform, composed as T·R·S.
	Translation math3d.Vec3
	Rotation    math3d.Quat
	Scale       math3d.Vec3

	Children []*Node
	Surfaces []*Surface
}

// NewNode creates a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math3d.QuatIdentity(),
		Scale:    math3d.One3(),
	}
}

// AddChild appends child and returns n for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// AddSurface appends s and returns n for chaining.
func (n *Node) AddSurface(s *Surface) *Node {
	n.Surfaces = append(n.Surfaces, s)
	return n
}

// LocalMatrix returns the node's local transform.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return math3d.Compose(n.Translation, n.Rotation, n.Scale)
}

// ResetTransform sets the local transform back to identity.
func (n *Node) ResetTransform() {
	n.Translation = math3d.Zero3()
	n.Rotation = math3d.QuatIdentity()
	n.Scale = math3d.One3()
}

// SetTransform replaces the local transform with the decomposition of m.
func (n *Node) SetTransform(m math3d.Mat4) {
	n.Translation, n.Rotation, n.Scale = m.Decompose()
}

// VisitFunc is called once per node during Walk. world is the node's
// transform relative to the frame the walk started in.
type VisitFunc func(n *Node, world math3d.Mat4)

// Walk visits n and all of its descendants depth-first. The root's own local
// transform is included, so world matrices are expressed in the root's
// parent frame.
func (n *Node) Walk(visit VisitFunc) {
	n.walk(math3d.Identity(), visit)
}

func (n *Node) walk(parent math3d.Mat4, visit VisitFunc) {
	if n == nil {
		return
	}
	world := parent.Mul(n.LocalMatrix())
	visit(n, world)
	for _, child := range n.Children {
		child.walk(world, visit)
	}
}

// SurfaceCount returns the number of surfaces in the subtree.
func (n *Node) SurfaceCount() int {
	count := 0
	n.Walk(func(node *Node, _ math3d.Mat4) {
		count += len(node.Surfaces)
	})
	return count
}

// TriangleCount returns the number of triangles in the subtree.
func (n *Node) TriangleCount() int {
	count := 0
	n.Walk(func(node *Node, _ math3d.Mat4) {
		for _, s := range node.Surfaces {
			if s != nil && s.Geometry != nil {
				count += s.Geometry.TriangleCount()
			}
		}
	})
	return count
}

// Instance copies the node tree. Geometry and materials are shared with the
// source rather than duplicated. Surfaces on both sides are tagged
// OwnershipShared, so recoloring either one clones its materials first.
func (n *Node) Instance() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:        n.Name,
		Translation: n.Translation,
		Rotation:    n.Rotation,
		Scale:       n.Scale,
	}
	for _, s := range n.Surfaces {
		out.Surfaces = append(out.Surfaces, s.share())
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Instance())
	}
	return out
}
