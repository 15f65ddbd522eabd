package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// ErrUnsupportedFormat is returned for files that are not .glb or .gltf.
var ErrUnsupportedFormat = errors.New("please upload a valid GLB or GLTF file")

// ValidateFilename accepts names ending in .glb or .gltf, case-insensitively.
// The content itself is only checked when decoded.
func ValidateFilename(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb", ".gltf":
		return nil
	}
	return fmt.Errorf("%q: %w", name, ErrUnsupportedFormat)
}

// GLTFLoader converts glTF documents into scene subtrees.
type GLTFLoader struct {
	// LoadTextures decodes embedded base color textures into
	// Material.BaseMap.
	LoadTextures bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{LoadTextures: true}
}

// LoadFile loads a .glb or .gltf file. External buffers of a .gltf file are
// resolved relative to it.
func (l *GLTFLoader) LoadFile(path string) (*scene.Node, error) {
	if err := ValidateFilename(path); err != nil {
		return nil, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.Build(doc, filepath.Base(path))
}

// Decode reads a self-contained glTF or GLB document from r.
func (l *GLTFLoader) Decode(r io.Reader, name string) (*scene.Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return l.Build(doc, name)
}

// Build converts doc into a subtree. The document's scene nodes hang under
// a synthetic root named name with an identity transform, so callers can
// move the whole asset without disturbing its authored node transforms.
//
// Materials are created once per document and shared by every primitive
// that references them; their surfaces are tagged OwnershipShared.
func (l *GLTFLoader) Build(doc *gltf.Document, name string) (*scene.Node, error) {
	b := &builder{
		doc:       doc,
		loader:    l,
		materials: make([]*scene.Material, len(doc.Materials)),
		visiting:  map[int]bool{},
	}

	root := scene.NewNode(name)
	for _, idx := range b.rootNodes() {
		child, err := b.node(idx)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}
	return root, nil
}

type builder struct {
	doc       *gltf.Document
	loader    *GLTFLoader
	materials []*scene.Material
	fallback  *scene.Material
	visiting  map[int]bool
}

// rootNodes returns the nodes of the default scene, the first scene, or
// every node nobody claims as a child.
func (b *builder) rootNodes() []int {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	claimed := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(claimed) {
				claimed[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !claimed[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *builder) node(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if b.visiting[idx] {
		return nil, fmt.Errorf("node %d: cycle in node hierarchy", idx)
	}
	b.visiting[idx] = true
	defer delete(b.visiting, idx)

	src := b.doc.Nodes[idx]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	n := scene.NewNode(name)
	applyTransform(n, src)

	if src.Mesh != nil {
		if err := b.mesh(n, *src.Mesh); err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	}

	for _, c := range src.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// applyTransform copies a glTF node transform. A non-identity matrix takes
// precedence over TRS, as in the glTF specification. Zero scale and
// rotation are treated as unset.
func applyTransform(n *scene.Node, src *gltf.Node) {
	var m math3d.Mat4
	copy(m[:], src.Matrix[:])
	if m != (math3d.Mat4{}) && !m.IsIdentity() {
		n.SetTransform(m)
		return
	}

	n.Translation = math3d.V3(src.Translation[0], src.Translation[1], src.Translation[2])
	if r := src.Rotation; r != [4]float64{} {
		n.Rotation = math3d.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.Normalize()
	}
	if s := src.Scale; s != [3]float64{} {
		n.Scale = math3d.V3(s[0], s[1], s[2])
	}
}

func (b *builder) mesh(n *scene.Node, idx int) error {
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", idx)
	}
	m := b.doc.Meshes[idx]

	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		geom, err := b.geometry(posIdx, prim.Indices)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
		}

		mat, err := b.material(prim.Material)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
		}

		surfName := m.Name
		if len(m.Primitives) > 1 {
			surfName = fmt.Sprintf("%s.%d", m.Name, pi)
		}
		s := scene.NewSurface(surfName, geom, mat)
		s.Ownership = scene.OwnershipShared
		n.AddSurface(s)
	}
	return nil
}

func (b *builder) geometry(posIdx int, indicesIdx *int) (*scene.Geometry, error) {
	acc, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	geom := &scene.Geometry{Positions: make([]math3d.Vec3, len(positions))}
	for i, p := range positions {
		geom.Positions[i] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	if indicesIdx != nil {
		acc, err := b.accessor(*indicesIdx)
		if err != nil {
			return nil, err
		}
		indices, err := modeler.ReadIndices(b.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		n := len(indices) - len(indices)%3
		geom.Indices = make([]int, 0, n)
		for _, idx := range indices[:n] {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
			}
			geom.Indices = append(geom.Indices, int(idx))
		}
	}
	return geom, nil
}

func (b *builder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

// material returns the shared scene material for a glTF material index.
// Primitives without a material get the glTF default material.
func (b *builder) material(idx *int) (*scene.Material, error) {
	if idx == nil {
		if b.fallback == nil {
			b.fallback = scene.DefaultMaterial()
		}
		return b.fallback, nil
	}
	if *idx < 0 || *idx >= len(b.doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", *idx)
	}
	if m := b.materials[*idx]; m != nil {
		return m, nil
	}

	src := b.doc.Materials[*idx]
	m := scene.DefaultMaterial()
	m.Name = src.Name
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			m.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			m.Roughness = *pbr.RoughnessFactor
		}
		if b.loader.LoadTextures && pbr.BaseColorTexture != nil {
			// A texture that fails to decode only costs the detail.
			if img, err := b.texture(pbr.BaseColorTexture.Index); err == nil {
				m.BaseMap = img
			}
		}
	}
	b.materials[*idx] = m
	return m, nil
}

// texture decodes the image behind a texture from the document's buffers.
func (b *builder) texture(idx int) (image.Image, error) {
	doc := b.doc
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx] == nil || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no source", idx)
	}
	src := *doc.Textures[idx].Source
	if src < 0 || src >= len(doc.Images) || doc.Images[src] == nil {
		return nil, fmt.Errorf("image index %d out of range", src)
	}
	img := doc.Images[src]
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %d is not embedded", src)
	}

	view := *img.BufferView
	if view < 0 || view >= len(doc.BufferViews) || doc.BufferViews[view] == nil {
		return nil, fmt.Errorf("image %d: buffer view %d out of range", src, view)
	}
	bv := doc.BufferViews[view]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
		return nil, fmt.Errorf("image %d: buffer %d out of range", src, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || end > len(buf.Data) {
		return nil, fmt.Errorf("image %d: buffer view out of range", src)
	}

	decoded, _, err := image.Decode(bytes.NewReader(buf.Data[bv.ByteOffset:end]))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", src, err)
	}
	return decoded, nil
}
