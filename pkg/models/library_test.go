package models

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/taigrr/avatarfit/pkg/fit"
)

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(writeFixture(t, "fixture.glb"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestLibraryCachesByContent(t *testing.T) {
	lib := NewLibrary(nil)
	data := fixtureBytes(t)

	a, err := lib.Instantiate("first.glb", data)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	b, err := lib.Instantiate("second.glb", data)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	if hits, misses := lib.Stats(); hits != 1 || misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1 and 1", hits, misses)
	}
	if lib.Len() != 1 {
		t.Errorf("Len = %d, want 1", lib.Len())
	}
	if a == b || a.Children[0] == b.Children[0] {
		t.Error("instances share nodes")
	}
	if a.Name != "first.glb" || b.Name != "second.glb" {
		t.Errorf("names = %q, %q", a.Name, b.Name)
	}
	am, bm := a.Children[0].Surfaces[0].Materials[0], b.Children[0].Surfaces[0].Materials[0]
	if am != bm {
		t.Error("instances should share the cached material until recolored")
	}
}

func TestLibraryRecolorIsolation(t *testing.T) {
	lib := NewLibrary(nil)
	data := fixtureBytes(t)

	a, _ := lib.Instantiate("a.glb", data)
	b, _ := lib.Instantiate("b.glb", data)

	if err := fit.ApplyHexColor(a, "#4caf50"); err != nil {
		t.Fatalf("ApplyHexColor: %v", err)
	}

	if got := fit.MaterialColor(a.Children[0].Surfaces[0].Materials[0]).Hex(); got != "#4caf50" {
		t.Errorf("recolored instance = %s, want #4caf50", got)
	}
	if got := fit.MaterialColor(b.Children[0].Surfaces[0].Materials[0]).Hex(); got != "#ff0000" {
		t.Errorf("other instance = %s, want untouched #ff0000", got)
	}

	// A later instance still sees the original color.
	c, _ := lib.Instantiate("c.glb", data)
	if got := fit.MaterialColor(c.Children[0].Surfaces[0].Materials[0]).Hex(); got != "#ff0000" {
		t.Errorf("new instance = %s, want #ff0000", got)
	}
}

func TestLibraryErrors(t *testing.T) {
	lib := NewLibrary(nil)

	if _, err := lib.Instantiate("avatar.fbx", fixtureBytes(t)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := lib.Instantiate("avatar.glb", []byte("garbage")); err == nil {
		t.Error("garbage should fail to load")
	}
	if lib.Len() != 0 {
		t.Errorf("failed loads were cached: Len = %d", lib.Len())
	}
}

func TestLibraryConcurrent(t *testing.T) {
	lib := NewLibrary(nil)
	data := fixtureBytes(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if _, err := lib.Instantiate("x.glb", data); err != nil {
				t.Errorf("Instantiate: %v", err)
			}
		})
	}
	wg.Wait()

	if hits, misses := lib.Stats(); hits+misses != 8 || misses != 1 {
		t.Errorf("hits=%d misses=%d, want 7 and 1", hits, misses)
	}

	lib.Clear()
	if lib.Len() != 0 {
		t.Errorf("Len after Clear = %d", lib.Len())
	}
}
