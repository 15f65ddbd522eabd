package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/taigrr/avatarfit/pkg/scene"
)

// Library caches parsed assets by content hash. Every Instantiate returns a
// new node tree whose geometry and materials are shared with the cached
// template, so identical uploads are parsed once.
type Library struct {
	loader    *GLTFLoader
	templates map[string]*scene.Node
	mu        sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewLibrary creates an empty library that parses with loader. A nil loader
// means NewGLTFLoader().
func NewLibrary(loader *GLTFLoader) *Library {
	if loader == nil {
		loader = NewGLTFLoader()
	}
	return &Library{
		loader:    loader,
		templates: make(map[string]*scene.Node),
	}
}

// Instantiate validates name, parses data on first sight and returns a
// fresh instance of the asset. The instance's root is named name.
func (l *Library) Instantiate(name string, data []byte) (*scene.Node, error) {
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	l.mu.Lock()
	defer l.mu.Unlock()

	tmpl, ok := l.templates[key]
	if ok {
		l.hits++
	} else {
		l.misses++
		var err error
		tmpl, err = l.loader.Decode(bytes.NewReader(data), name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		l.templates[key] = tmpl
	}

	inst := tmpl.Instance()
	inst.Name = name
	return inst, nil
}

// Len returns the number of cached assets.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.templates)
}

// Clear drops every cached asset. Instances already handed out stay valid.
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates = make(map[string]*scene.Node)
	l.hits = 0
	l.misses = 0
}

// Stats returns cache statistics.
func (l *Library) Stats() (hits, misses int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}
