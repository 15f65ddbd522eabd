package main

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/avatarfit/internal/studio"
	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5c6bc0"))
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9800"))
)

func newFitCmd(a *app) *cobra.Command {
	var (
		pngPath string
		yaw     float64
		hide    bool
	)
	cmd := &cobra.Command{
		Use:   "fit <avatar.glb> [clothing.glb]",
		Short: "Normalize an avatar, fit a garment to it and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := loadArgs(s, args); err != nil {
				return err
			}
			if hide {
				s.SetClothingVisible(false)
			}

			fmt.Fprintln(cmd.OutOrStdout(), report(s))

			if pngPath == "" {
				return nil
			}
			return writeSnapshot(a, s, pngPath, yaw)
		},
	}
	cmd.Flags().StringVarP(&pngPath, "png", "o", "", "Write a rendered snapshot to this PNG file")
	cmd.Flags().Float64Var(&yaw, "yaw", 0.5, "Snapshot camera yaw in radians")
	cmd.Flags().BoolVar(&hide, "hide-clothing", false, "Leave the garment out")
	return cmd
}

// report formats the session's fit for the terminal.
func report(s *studio.Session) string {
	st := s.State()
	var b strings.Builder

	row := func(label, format string, args ...any) {
		b.WriteString(labelStyle.Render(label))
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	b.WriteString(titleStyle.Render("avatar") + "\n")
	row("file", "%s", st.Avatar)
	if box, ok := s.Bounds(studio.SlotAvatar); ok {
		row("size", "%s", formatSize(box))
	}

	if st.Clothing == "" {
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString(titleStyle.Render("clothing") + "\n")
	row("file", "%s", st.Clothing)
	row("color", "%s", st.Color)
	switch {
	case !st.ShowClothing:
		row("fit", "hidden")
	case st.FitError != "":
		b.WriteString(warnStyle.Render("fit failed: "+st.FitError) + "\n")
	case st.Fit != nil:
		row("class", "%s", st.Fit.Class)
		row("scale", "%.4f", st.Fit.Scale)
		if box, ok := s.Bounds(studio.SlotClothing); ok {
			row("size", "%s", formatSize(box))
			row("bounds", "(%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)",
				box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSize(box fit.AABB) string {
	size := box.Size()
	return fmt.Sprintf("%.3f × %.3f × %.3f", size.X, size.Y, size.Z)
}

func writeSnapshot(a *app, s *studio.Session, path string, yaw float64) error {
	frame := s.Frame(a.cfg.Preview.MaxTriangles)
	img := render.Snapshot(a.cfg.RenderOptions(), frame, a.cfg.Preview.Supersample, yaw)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
