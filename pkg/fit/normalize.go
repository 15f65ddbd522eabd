package fit

import (
	"fmt"
	"math"

	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// DefaultTargetHeight is the canonical standing height in scene units.
const DefaultTargetHeight = 1.7

// NormalizationResult describes what Normalize did. Callers may ignore it.
type NormalizationResult struct {
	OriginalSize   math3d.Vec3
	NormalizedSize math3d.Vec3
	Scale          float64
	Bounds         AABB // Post-normalization bounds
}

// Normalize rescales root so its bounding box is targetHeight tall, centers
// it horizontally on the origin and rests its lowest point on y = 0.
//
// Only the root's local transform is modified. A flat or single-point
// subtree is scaled by targetHeight/Epsilon; that is large but finite.
func Normalize(root *scene.Node, targetHeight float64) (NormalizationResult, error) {
	if root == nil {
		return NormalizationResult{}, ErrNilSubtree
	}
	if !(targetHeight > 0) || math.IsInf(targetHeight, 0) {
		return NormalizationResult{}, fmt.Errorf("%w: %v", ErrInvalidHeight, targetHeight)
	}

	before := ComputeBounds(root)
	height := math.Max(before.Height(), Epsilon)
	scale := targetHeight / height

	root.Scale = root.Scale.Scale(scale)

	// Scaling about the root pivot moves the box; bring its x/z center back
	// onto the origin.
	scaled := ComputeBounds(root)
	center := scaled.Center()
	root.Translation = root.Translation.Sub(math3d.V3(center.X, 0, center.Z))

	grounded := ComputeBounds(root)
	root.Translation.Y -= grounded.Min.Y

	after := ComputeBounds(root)
	return NormalizationResult{
		OriginalSize:   before.Size(),
		NormalizedSize: after.Size(),
		Scale:          scale,
		Bounds:         after,
	}, nil
}
