// Package studio holds the interactive fitting session: one avatar slot,
// one clothing slot, the chosen garment color and clothing visibility.
//
// Every load normalizes the new mesh. Every change to the avatar, the
// clothing, its visibility or the color refits the garment and recolors it.
package studio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/taigrr/avatarfit/internal/config"
	"github.com/taigrr/avatarfit/internal/logger"
	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/models"
	"github.com/taigrr/avatarfit/pkg/render"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// Slot names a mesh slot of the session.
type Slot string

const (
	SlotAvatar   Slot = "avatar"
	SlotClothing Slot = "clothing"
)

func (s Slot) title() string {
	if s == SlotAvatar {
		return "Avatar"
	}
	return "Clothing"
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	TargetHeight float64
	DefaultColor string
	ShowClothing bool
	Fitter       *fit.Fitter
	Library      *models.Library
	Logger       *zap.Logger
}

// OptionsFromConfig maps the fit and studio settings onto Options.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) Options {
	return Options{
		TargetHeight: cfg.Fit.TargetHeight,
		DefaultColor: cfg.Studio.DefaultColor,
		ShowClothing: cfg.Studio.ShowClothing,
		Fitter:       cfg.Fitter(),
		Logger:       log,
	}
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	opts    Options
	log     *zap.Logger
	lib     *models.Library
	fitter  *fit.Fitter
	version uint64

	avatar       *scene.Node
	clothing     *scene.Node
	color        string
	showClothing bool
	lastFit      *fit.Result
	fitErr       error
	message      string
	lastErr      string

	subs   map[int]chan State
	nextID int
}

// New creates an empty session.
func New(opts Options) (*Session, error) {
	if opts.TargetHeight == 0 {
		opts.TargetHeight = fit.DefaultTargetHeight
	}
	if opts.DefaultColor == "" {
		opts.DefaultColor = config.Default().Studio.DefaultColor
	}
	if _, err := fit.ParseColor(opts.DefaultColor); err != nil {
		return nil, err
	}
	if opts.Fitter == nil {
		opts.Fitter = fit.NewFitter()
	}
	if opts.Library == nil {
		opts.Library = models.NewLibrary(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Session{
		opts:   opts,
		log:    opts.Logger.Named("studio"),
		lib:    opts.Library,
		fitter: opts.Fitter,
		subs:   make(map[int]chan State),
	}
	s.color = opts.DefaultColor
	s.showClothing = opts.ShowClothing
	return s, nil
}

// LoadAvatar replaces the avatar with the asset in data.
func (s *Session) LoadAvatar(name string, data []byte) error {
	return s.load(SlotAvatar, name, data)
}

// LoadClothing replaces the garment with the asset in data.
func (s *Session) LoadClothing(name string, data []byte) error {
	return s.load(SlotClothing, name, data)
}

// LoadFile reads path into slot.
func (s *Session) LoadFile(slot Slot, path string) error {
	name := filepath.Base(path)
	if err := models.ValidateFilename(name); err != nil {
		return s.fail(slot, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(slot, err)
	}
	return s.load(slot, name, data)
}

func (s *Session) load(slot Slot, name string, data []byte) error {
	node, err := s.lib.Instantiate(name, data)
	if err != nil {
		return s.fail(slot, err)
	}
	norm, err := fit.Normalize(node, s.opts.TargetHeight)
	if err != nil {
		return s.fail(slot, err)
	}
	s.log.Debug("normalized",
		zap.String("slot", string(slot)),
		zap.String("name", name),
		zap.Float64("scale", norm.Scale),
		logger.Vec3("original_size", norm.OriginalSize),
		logger.Box("bounds", norm.Bounds))

	s.mu.Lock()
	defer s.mu.Unlock()

	if slot == SlotAvatar {
		s.avatar = node
	} else {
		s.clothing = node
	}
	s.lastErr = ""
	s.message = fmt.Sprintf("%s model %q loaded successfully!", slot.title(), name)
	s.log.Info(s.message, zap.Int("triangles", node.TriangleCount()))
	s.refit()
	s.publish()
	return nil
}

func (s *Session) fail(slot Slot, err error) error {
	err = fmt.Errorf("failed to upload %s: %w", slot, err)
	s.log.Warn("upload rejected", zap.String("slot", string(slot)), zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err.Error()
	s.message = ""
	s.publish()
	return err
}

// SetColor changes the garment color.
func (s *Session) SetColor(hex string) error {
	c, err := fit.ParseColor(hex)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = c.Hex()
	s.message = ""
	s.refit()
	s.publish()
	return nil
}

// SetClothingVisible shows or hides the garment.
func (s *Session) SetClothingVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showClothing = visible
	s.message = ""
	s.refit()
	s.publish()
}

// Reset clears both slots and restores the default color and visibility.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatar, s.clothing = nil, nil
	s.color = s.opts.DefaultColor
	s.showClothing = s.opts.ShowClothing
	s.lastFit, s.fitErr = nil, nil
	s.lastErr = ""
	s.message = "Scene reset successfully"
	s.log.Info(s.message)
	s.publish()
}

// refit places and recolors the garment. Callers hold s.mu.
func (s *Session) refit() {
	s.lastFit, s.fitErr = nil, nil
	if s.clothing == nil || !s.showClothing {
		return
	}

	if s.avatar != nil {
		res, err := s.fitter.Fit(s.clothing, s.avatar)
		if err != nil {
			s.fitErr = err
			s.log.Warn("fit failed", zap.String("clothing", s.clothing.Name), zap.Error(err))
		} else {
			s.lastFit = &res
			s.log.Debug("fitted",
				zap.Stringer("class", res.Class),
				zap.Float64("scale", res.Scale),
				logger.Box("garment", res.Garment))
		}
	}

	if err := fit.ApplyHexColor(s.clothing, s.color); err != nil {
		// Malformed slots are skipped; the rest of the garment is colored.
		s.log.Warn("recolor incomplete", zap.Error(err))
	}
}

// LastFit returns the result of the last successful fit.
func (s *Session) LastFit() (fit.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFit == nil {
		return fit.Result{}, false
	}
	return *s.lastFit, true
}

// FitError returns why the last fit failed, if it did.
func (s *Session) FitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fitErr
}

// Frame bakes the visible meshes for the renderer. Meshes above
// maxTriangles are decimated; zero keeps full detail.
func (s *Session) Frame(maxTriangles int) render.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	var frame render.Frame
	add := func(n *scene.Node) *models.Mesh {
		m := models.Bake(n, n.Name)
		if maxTriangles > 0 {
			m = models.Simplify(m, maxTriangles)
		}
		frame.Meshes = append(frame.Meshes, m)
		return m
	}

	if s.avatar != nil {
		add(s.avatar)
	}
	if s.clothing != nil && s.showClothing {
		add(s.clothing)
		if s.lastFit != nil {
			frame.Boxes = append(frame.Boxes, s.lastFit.Garment)
		}
	}
	return frame
}

// Bounds returns the world bounds of the mesh in slot, if one is loaded.
func (s *Session) Bounds(slot Slot) (fit.AABB, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.avatar
	if slot == SlotClothing {
		n = s.clothing
	}
	if n == nil {
		return fit.AABB{}, false
	}
	m := fit.Measure(n)
	return m.Box, !m.Empty()
}
