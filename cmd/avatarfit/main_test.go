package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/avatarfit/internal/config"
	"github.com/taigrr/avatarfit/internal/gltftest"
)

// isolate keeps the user's config files out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFitCommand(t *testing.T) {
	isolate(t)
	avatar := gltftest.WriteBox(t, "body.glb", [3]float32{-0.25, 0, -0.15}, [3]float32{0.25, 2, 0.15})
	top := gltftest.WriteBox(t, "top.glb", [3]float32{0, 0, 0}, [3]float32{1, 0.5, 0.3})
	pngPath := filepath.Join(t.TempDir(), "fit.png")

	out, err := execute(t, "fit", avatar, top, "--png", pngPath, "--color", "#f44336", "--width", "20", "--height", "30")
	if err != nil {
		t.Fatalf("fit: %v\n%s", err, out)
	}
	for _, want := range []string{"body.glb", "top.glb", "#f44336", "top", "1.700"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 30 {
		t.Errorf("snapshot is %dx%d, want 20x30", b.Dx(), b.Dy())
	}
}

func TestFitCommandErrors(t *testing.T) {
	isolate(t)

	if _, err := execute(t, "fit"); err == nil {
		t.Error("fit without arguments should fail")
	}
	if _, err := execute(t, "fit", "avatar.fbx"); err == nil {
		t.Error("unsupported extension should fail")
	}
	if _, err := execute(t, "fit", "--color", "nope", "x.glb"); err == nil {
		t.Error("invalid color should fail")
	}
}

func TestFitHiddenClothing(t *testing.T) {
	isolate(t)
	avatar := gltftest.WriteBox(t, "body.glb", [3]float32{0, 0, 0}, [3]float32{1, 2, 1})
	robe := gltftest.WriteBox(t, "robe.glb", [3]float32{0, 0, 0}, [3]float32{1, 1, 1})

	out, err := execute(t, "fit", avatar, robe, "--hide-clothing")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !strings.Contains(out, "hidden") {
		t.Errorf("report should mark clothing hidden:\n%s", out)
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "out.yaml")

	out, err := execute(t, "config", "--out", path, "--addr", ":9090")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("output = %q, want %q", out, path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %s, want the flag value", cfg.Server.Addr)
	}
}
