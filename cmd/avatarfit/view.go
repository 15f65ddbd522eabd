package main

import (
	"context"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/avatarfit/internal/logger"
	"github.com/taigrr/avatarfit/internal/studio"
	"github.com/taigrr/avatarfit/pkg/render"
)

// Controls:
//
//	A/D, Left/Right - Spin
//	W/S, Up/Down    - Tilt
//	Space           - Toggle auto-rotation
//	C               - Next palette color
//	V               - Toggle clothing
//	R               - Reset view
//	?               - Toggle HUD
//	Esc/Q           - Quit
func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view <avatar.glb> [clothing.glb]",
		Short: "Preview the fitted scene in the terminal",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Console logging would tear the picture; keep the file only.
			err := logger.Setup(logger.Options{Level: a.cfg.Logging.Level, File: a.cfg.Logging.LogFile})
			if err != nil {
				return err
			}
			a.log = logger.Log

			s, err := a.session()
			if err != nil {
				return err
			}
			if err := loadArgs(s, args); err != nil {
				return err
			}
			return runView(cmd.Context(), a, s)
		},
	}
}

// spinAxis is one rotation axis whose velocity decays through a critically
// damped spring.
type spinAxis struct {
	velocity float64
	accel    float64
	spring   harmonica.Spring
}

func newSpinAxis(fps int) spinAxis {
	return spinAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// step returns this frame's rotation and decays the velocity toward 0.
func (s *spinAxis) step() float64 {
	d := s.velocity
	s.velocity, s.accel = s.spring.Update(s.velocity, s.accel, 0)
	return d
}

// turntable holds the camera motion of the preview.
type turntable struct {
	yaw, pitch spinAxis
	auto       bool
	fps        int
}

const (
	autoSpin     = 0.6 // radians per second
	impulse      = 0.08
	initialPitch = 0.15
)

func newTurntable(fps int) *turntable {
	return &turntable{
		yaw:   newSpinAxis(fps),
		pitch: newSpinAxis(fps),
		auto:  true,
		fps:   fps,
	}
}

func (t *turntable) reset(cam *render.Camera) {
	t.yaw, t.pitch = newSpinAxis(t.fps), newSpinAxis(t.fps)
	cam.Yaw, cam.Pitch = 0, initialPitch
}

func (t *turntable) update(cam *render.Camera) {
	dYaw := t.yaw.step()
	if t.auto {
		dYaw += autoSpin / float64(t.fps)
	}
	cam.Orbit(dYaw, t.pitch.step())
}

var hudStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#e0e0e0")).
	Background(lipgloss.Color("#1e1e28"))

func hudLine(st studio.State, fps float64, triangles int) string {
	clothing := st.Clothing
	switch {
	case clothing == "":
		clothing = "no clothing"
	case !st.ShowClothing:
		clothing += " (hidden)"
	case st.Fit != nil:
		clothing += " " + st.Fit.Class
	case st.FitError != "":
		clothing += " fit failed"
	}
	return hudStyle.Render(fmt.Sprintf(" %s | %s | %s | %d tris | %.0f FPS | c color  v clothing  space spin  esc quit ",
		st.Avatar, clothing, st.Color, triangles, fps))
}

func runView(ctx context.Context, a *app, s *studio.Session) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	fps := a.cfg.Preview.FPS
	opts := a.cfg.RenderOptions()
	opts.Width, opts.Height = render.TerminalSize(width, max(height-1, 1))
	renderer := render.NewRenderer(opts)

	spin := newTurntable(fps)
	spin.reset(renderer.Camera())
	showHUD := true
	palette := a.cfg.Studio.Palette
	paletteIdx := 0

	var (
		frame     render.Frame
		version   uint64
		triangles int
		fpsFrames int
		fpsValue  float64
		fpsTime   = time.Now()
	)
	rebake := func() {
		st := s.State()
		if st.Version == version && frame.Meshes != nil {
			return
		}
		version = st.Version
		frame = s.Frame(a.cfg.Preview.MaxTriangles)
		triangles = 0
		for _, m := range frame.Meshes {
			triangles += m.TriangleCount()
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				renderer.Resize(render.TerminalSize(width, max(height-1, 1)))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("esc", "q", "ctrl+c"):
					return nil
				case ev.MatchString("a", "left"):
					spin.yaw.velocity -= impulse
				case ev.MatchString("d", "right"):
					spin.yaw.velocity += impulse
				case ev.MatchString("w", "up"):
					spin.pitch.velocity += impulse / 2
				case ev.MatchString("s", "down"):
					spin.pitch.velocity -= impulse / 2
				case ev.MatchString("space"):
					spin.auto = !spin.auto
				case ev.MatchString("r"):
					spin.reset(renderer.Camera())
				case ev.MatchString("c"):
					if len(palette) > 0 {
						paletteIdx = (paletteIdx + 1) % len(palette)
						if err := s.SetColor(palette[paletteIdx].Hex); err != nil {
							a.log.Sugar().Warnf("palette color %s: %v", palette[paletteIdx].Name, err)
						}
					}
				case ev.MatchString("v"):
					s.SetClothingVisible(!s.State().ShowClothing)
				case ev.MatchString("?", "shift+/"):
					showHUD = !showHUD
				}
			}

		case <-ticker.C:
			rebake()
			spin.update(renderer.Camera())

			fb := renderer.Render(frame)
			fbRows := height
			if showHUD {
				fbRows = height - 1
			}
			fb.Draw(term, uv.Rect(0, 0, width, fbRows))

			fpsFrames++
			if elapsed := time.Since(fpsTime); elapsed >= time.Second {
				fpsValue = float64(fpsFrames) / elapsed.Seconds()
				fpsFrames, fpsTime = 0, time.Now()
			}
			if showHUD && height > 1 {
				line := hudLine(s.State(), fpsValue, triangles)
				uv.NewStyledString(line).Draw(term, uv.Rect(0, height-1, width, 1))
			}

			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
