package fit

import (
	"errors"
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// ParseColor parses a "#RRGGBB" or "#RGB" string. The leading '#' is optional.
func ParseColor(s string) (colorful.Color, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 7 && len(hex) != 4 {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	return c, nil
}

// MaterialColor returns a material's base color. Base colors are stored as
// linear RGB, the way glTF stores baseColorFactor.
func MaterialColor(m *scene.Material) colorful.Color {
	return colorful.LinearRgb(m.BaseColor[0], m.BaseColor[1], m.BaseColor[2])
}

// ApplyHexColor parses hex and applies it with ApplyColor.
func ApplyHexColor(root *scene.Node, hex string) error {
	c, err := ParseColor(hex)
	if err != nil {
		return err
	}
	return ApplyColor(root, c)
}

// ApplyColor sets the base color of every material slot reachable from
// root. Alpha is kept.
//
// Unless a surface is already OwnershipExclusive, each of its slots is
// cloned before being written, so instances that share materials with root
// keep their color. A malformed slot does not stop the traversal; all such
// failures are joined into the returned error.
func ApplyColor(root *scene.Node, c colorful.Color) error {
	if root == nil {
		return ErrNilSubtree
	}

	r, g, b := c.LinearRgb()
	var errs []error

	root.Walk(func(n *scene.Node, _ math3d.Mat4) {
		for si, s := range n.Surfaces {
			if s == nil {
				errs = append(errs, fmt.Errorf("node %q surface %d: %w: nil surface", n.Name, si, ErrMalformedMaterial))
				continue
			}
			if len(s.Materials) == 0 {
				errs = append(errs, fmt.Errorf("node %q surface %q: %w: no material slots", n.Name, s.Name, ErrMalformedMaterial))
				continue
			}

			slots := s.Materials
			if s.Ownership != scene.OwnershipExclusive {
				// The slot slice may alias another surface's as well.
				slots = make([]*scene.Material, len(s.Materials))
			}
			for i, m := range s.Materials {
				if m == nil {
					errs = append(errs, fmt.Errorf("node %q surface %q slot %d: %w: nil material", n.Name, s.Name, i, ErrMalformedMaterial))
					continue
				}
				if s.Ownership != scene.OwnershipExclusive {
					m = m.Clone()
				}
				m.BaseColor[0], m.BaseColor[1], m.BaseColor[2] = r, g, b
				slots[i] = m
			}
			s.Materials = slots
			s.Ownership = scene.OwnershipExclusive
		}
	})

	return errors.Join(errs...)
}
