// Package gltftest builds small glTF assets for tests.
package gltftest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// boxIndices are the 12 triangles of a box whose corner i has bit 0 set
// for max X, bit 1 for max Y and bit 2 for max Z.
var boxIndices = []uint16{
	0, 2, 1, 1, 2, 3, 4, 5, 6, 5, 7, 6,
	0, 1, 4, 1, 5, 4, 2, 6, 3, 3, 6, 7,
	0, 4, 2, 2, 4, 6, 1, 3, 5, 3, 7, 5,
}

// BoxDoc returns a document with one node holding an axis-aligned box from
// lo to hi. The box uses one white material named "cloth".
func BoxDoc(lo, hi [3]float32) *gltf.Document {
	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{}},
	}

	positions := make([][3]float32, 8)
	for i := range positions {
		for axis := range 3 {
			positions[i][axis] = lo[axis]
			if i&(1<<axis) != 0 {
				positions[i][axis] = hi[axis]
			}
		}
	}
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, boxIndices)

	white := [4]float64{1, 1, 1, 1}
	doc.Materials = []*gltf.Material{{
		Name:                 "cloth",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &white},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "box",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{{
		Name:     "Box",
		Mesh:     gltf.Index(0),
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

// WriteBox saves a box as a GLB file named name in a test temp dir and
// returns its path.
func WriteBox(t testing.TB, name string, lo, hi [3]float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := gltf.SaveBinary(BoxDoc(lo, hi), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

// Box returns the GLB bytes of a box.
func Box(t testing.TB, lo, hi [3]float32) []byte {
	t.Helper()
	data, err := os.ReadFile(WriteBox(t, "box.glb", lo, hi))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}
