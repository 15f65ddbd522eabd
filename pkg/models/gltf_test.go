package models

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// fixtureDoc returns a document with a unit box mesh used by two nodes:
// "Body" at the origin and its child "Arm" moved 2 along X. Both use the
// same material.
func fixtureDoc() *gltf.Document {
	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{}},
	}

	positions := [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	indices := []uint16{
		0, 2, 1, 1, 2, 3,
		4, 5, 6, 5, 7, 6,
		0, 1, 4, 1, 5, 4,
		2, 6, 3, 3, 6, 7,
		0, 4, 2, 2, 4, 6,
		1, 3, 5, 3, 7, 5,
	}
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, indices)

	red := [4]float64{1, 0, 0, 0.75}
	rough := 0.4
	doc.Materials = []*gltf.Material{{
		Name: "cloth",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &red,
			RoughnessFactor: &rough,
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "box",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{
			Name:     "Body",
			Mesh:     gltf.Index(0),
			Children: []int{1},
			Rotation: [4]float64{0, 0, 0, 1},
			Scale:    [3]float64{1, 1, 1},
		},
		{
			Name:        "Arm",
			Mesh:        gltf.Index(0),
			Translation: [3]float64{2, 0, 0},
			Rotation:    [4]float64{0, 0, 0, 1},
			Scale:       [3]float64{1, 1, 1},
		},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := gltf.SaveBinary(fixtureDoc(), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"avatar.glb", true},
		{"AVATAR.GLB", true},
		{"shirt.gltf", true},
		{"dir.glb/model.Gltf", true},
		{"avatar.obj", false},
		{"glb", false},
		{"avatar.glb.zip", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.name)
			if tt.ok && err != nil {
				t.Errorf("ValidateFilename(%q) = %v, want nil", tt.name, err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ValidateFilename(%q) = %v, want ErrUnsupportedFormat", tt.name, err)
			}
		})
	}
}

func TestLoadFileInvalidPath(t *testing.T) {
	_, err := NewGLTFLoader().LoadFile("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func checkFixture(t *testing.T, root *scene.Node, name string) {
	t.Helper()

	if root.Name != name {
		t.Errorf("root name = %q, want %q", root.Name, name)
	}
	if !root.LocalMatrix().IsIdentity() {
		t.Error("synthetic root should have an identity transform")
	}
	if len(root.Children) != 1 || root.Children[0].Name != "Body" {
		t.Fatalf("root children = %v, want [Body]", root.Children)
	}
	body := root.Children[0]
	if len(body.Children) != 1 || body.Children[0].Name != "Arm" {
		t.Fatalf("Body children = %v, want [Arm]", body.Children)
	}
	arm := body.Children[0]
	if !arm.Translation.ApproxEqual(math3d.V3(2, 0, 0), 0) {
		t.Errorf("Arm translation = %v, want (2,0,0)", arm.Translation)
	}

	if got := root.SurfaceCount(); got != 2 {
		t.Errorf("surfaces = %d, want 2", got)
	}
	if got := root.TriangleCount(); got != 24 {
		t.Errorf("triangles = %d, want 24", got)
	}

	bs, as := body.Surfaces[0], arm.Surfaces[0]
	if bs.Materials[0] != as.Materials[0] {
		t.Error("nodes referencing one glTF material should share it")
	}
	if bs.Geometry != as.Geometry {
		t.Error("nodes referencing one glTF mesh should share geometry")
	}
	if bs.Ownership != scene.OwnershipShared {
		t.Errorf("ownership = %v, want shared", bs.Ownership)
	}

	m := bs.Materials[0]
	if m.Name != "cloth" || m.BaseColor != [4]float64{1, 0, 0, 0.75} {
		t.Errorf("material = %q %v, want cloth {1 0 0 0.75}", m.Name, m.BaseColor)
	}
	if m.Roughness != 0.4 || m.Metallic != 1 {
		t.Errorf("metallic/roughness = %v/%v, want 1/0.4", m.Metallic, m.Roughness)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFixture(t, "avatar.glb")
	root, err := NewGLTFLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	checkFixture(t, root, "avatar.glb")
}

func TestLoadFileRejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.obj")
	if err := os.WriteFile(path, []byte("o cube"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewGLTFLoader().LoadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode(t *testing.T) {
	data, err := os.ReadFile(writeFixture(t, "shirt.glb"))
	if err != nil {
		t.Fatal(err)
	}

	root, err := NewGLTFLoader().Decode(bytes.NewReader(data), "shirt.glb")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	checkFixture(t, root, "shirt.glb")
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := NewGLTFLoader().Decode(bytes.NewReader([]byte("not a model")), "x.glb"); err == nil {
		t.Error("Decode of garbage should fail")
	}
}

func TestBuildWithoutScenes(t *testing.T) {
	doc := fixtureDoc()
	doc.Scenes = nil
	doc.Scene = nil

	root, err := NewGLTFLoader().Build(doc, "loose")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Arm is Body's child, so only Body is a root.
	if len(root.Children) != 1 || root.Children[0].Name != "Body" {
		t.Errorf("roots = %v, want [Body]", root.Children)
	}
}

func TestBuildRejectsCycles(t *testing.T) {
	doc := fixtureDoc()
	doc.Nodes[1].Children = []int{0}

	if _, err := NewGLTFLoader().Build(doc, "cycle"); err == nil {
		t.Error("Build should reject a node cycle")
	}
}

func TestBuildMatrixTransform(t *testing.T) {
	doc := fixtureDoc()
	m := math3d.Compose(math3d.V3(0, 3, 0), math3d.QuatIdentity(), math3d.Splat3(2))
	doc.Nodes[0].Matrix = [16]float64(m)

	root, err := NewGLTFLoader().Build(doc, "matrix")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	body := root.Children[0]
	if !body.Translation.ApproxEqual(math3d.V3(0, 3, 0), 1e-12) || !body.Scale.ApproxEqual(math3d.Splat3(2), 1e-12) {
		t.Errorf("transform = %v %v, want translation (0,3,0) scale 2", body.Translation, body.Scale)
	}
}

func TestBuildSkipsBrokenTextures(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(doc *gltf.Document)
	}{
		{"missing buffer view", func(doc *gltf.Document) {
			doc.Images[0].BufferView = gltf.Index(99)
		}},
		{"negative buffer view", func(doc *gltf.Document) {
			doc.Images[0].BufferView = gltf.Index(-1)
		}},
		{"missing buffer", func(doc *gltf.Document) {
			doc.BufferViews[0].Buffer = 5
		}},
		{"negative offset", func(doc *gltf.Document) {
			doc.BufferViews[0].ByteOffset = -4
		}},
		{"view past buffer end", func(doc *gltf.Document) {
			doc.BufferViews[0].ByteLength = 1 << 20
		}},
		{"missing image", func(doc *gltf.Document) {
			doc.Textures[0].Source = gltf.Index(3)
		}},
		{"nil texture", func(doc *gltf.Document) {
			doc.Textures[0] = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fixtureDoc()
			doc.Images = []*gltf.Image{{MimeType: "image/png", BufferView: gltf.Index(0)}}
			doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
			doc.Materials[0].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: 0}
			tt.corrupt(doc)

			b := &builder{doc: doc}
			if _, err := b.texture(0); err == nil {
				t.Error("texture should fail")
			}

			root, err := NewGLTFLoader().Build(doc, "broken")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			m := root.Children[0].Surfaces[0].Materials[0]
			if m.BaseMap != nil {
				t.Error("broken texture should leave BaseMap unset")
			}
			if m.BaseColor != [4]float64{1, 0, 0, 0.75} {
				t.Errorf("base color = %v, want factor kept", m.BaseColor)
			}
		})
	}
}
