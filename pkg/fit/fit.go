package fit

import (
	"fmt"
	"math"

	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// DefaultMargin shrinks the fitted garment slightly inside the body
// silhouette to avoid z-fighting at the boundary.
const DefaultMargin = 0.95

// Result describes a successful fit.
type Result struct {
	Class       Class
	Scale       float64
	WidthRatio  float64
	HeightRatio float64
	Body        AABB // Body bounds used for the fit
	Garment     AABB // Garment bounds after the fit
}

// Fitter places garments on bodies.
type Fitter struct {
	Margin float64
	Policy Policy
}

// NewFitter returns a Fitter with the default margin and heuristic policy.
func NewFitter() *Fitter {
	return &Fitter{
		Margin: DefaultMargin,
		Policy: DefaultPolicy(),
	}
}

// FitGarmentToBody fits garment onto body with the default Fitter. It
// reports failure instead of returning an error; on false the garment's
// transform should not be trusted.
func FitGarmentToBody(garment, body *scene.Node) bool {
	return NewFitter().TryFit(garment, body)
}

// TryFit runs Fit and converts any error or panic into false.
func (f *Fitter) TryFit(garment, body *scene.Node) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	_, err := f.Fit(garment, body)
	return err == nil
}

// Fit resets the garment's transform, scales it uniformly to fit inside the
// body's width and height, centers it on the body horizontally and places
// it vertically according to the policy.
//
// On error the garment is left in whatever state the completed steps
// produced.
func (f *Fitter) Fit(garment, body *scene.Node) (Result, error) {
	if garment == nil || body == nil {
		return Result{}, ErrNilSubtree
	}

	// Start from identity so repeated fits do not compound.
	garment.ResetTransform()

	bodyM := Measure(body)
	if bodyM.Empty() {
		return Result{}, fmt.Errorf("%w: body", ErrNoGeometry)
	}
	garmentM := Measure(garment)
	if garmentM.Empty() {
		return Result{}, fmt.Errorf("%w: garment", ErrNoGeometry)
	}
	bodyBox, garmentBox := bodyM.Box, garmentM.Box

	widthRatio := bodyBox.Width() / math.Max(garmentBox.Width(), Epsilon)
	heightRatio := bodyBox.Height() / math.Max(garmentBox.Height(), Epsilon)
	scale := math.Min(widthRatio, heightRatio) * f.margin()
	if !(scale > 0) || math.IsInf(scale, 0) {
		return Result{}, fmt.Errorf("%w: scale %v", ErrDegenerateFit, scale)
	}

	garment.Scale = math3d.Splat3(scale)
	scaled := ComputeBounds(garment)

	bodyCenter, garmentCenter := bodyBox.Center(), scaled.Center()
	garment.Translation.X += bodyCenter.X - garmentCenter.X
	garment.Translation.Z += bodyCenter.Z - garmentCenter.Z

	// Classification uses the garment's unscaled height.
	policy := f.policy()
	class := policy.Classify(garmentBox.Height(), bodyBox.Height())
	garment.Translation.Y += policy.VerticalShift(class, scaled, bodyBox)

	return Result{
		Class:       class,
		Scale:       scale,
		WidthRatio:  widthRatio,
		HeightRatio: heightRatio,
		Body:        bodyBox,
		Garment:     ComputeBounds(garment),
	}, nil
}

func (f *Fitter) margin() float64 {
	if f.Margin <= 0 {
		return DefaultMargin
	}
	return f.Margin
}

func (f *Fitter) policy() Policy {
	if f.Policy == nil {
		return DefaultPolicy()
	}
	return f.Policy
}
