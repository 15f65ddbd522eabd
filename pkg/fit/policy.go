package fit

// Class is the placement category of a garment relative to a body.
type Class int

const (
	// ClassFullBody garments stand on the same ground plane as the body.
	ClassFullBody Class = iota
	// ClassTop garments cover the torso only and hang from shoulder height.
	ClassTop
)

func (c Class) String() string {
	if c == ClassTop {
		return "top"
	}
	return "full-body"
}

// Policy decides how a garment is placed vertically on a body. It is kept
// apart from the bounding-box math so a skeleton-aware policy can replace
// the heuristic without touching Fitter.
type Policy interface {
	// Classify categorizes a garment from its unscaled height and the body
	// height.
	Classify(garmentHeight, bodyHeight float64) Class

	// VerticalShift returns how far the scaled garment must move along Y.
	VerticalShift(class Class, garment, body AABB) float64
}

// Defaults of HeuristicPolicy.
const (
	DefaultTopRatio      = 0.5
	DefaultShoulderRatio = 0.7
)

// HeuristicPolicy classifies by height ratio and places tops at a fixed
// fraction of body height. Both ratios are empirical; no joint data is used.
type HeuristicPolicy struct {
	// TopRatio: a garment shorter than TopRatio × body height is a top.
	TopRatio float64
	// ShoulderRatio: where a top's vertical midpoint goes, as a fraction
	// of body height above the body's lowest point.
	ShoulderRatio float64
}

// DefaultPolicy returns the heuristic with its standard ratios.
func DefaultPolicy() HeuristicPolicy {
	return HeuristicPolicy{
		TopRatio:      DefaultTopRatio,
		ShoulderRatio: DefaultShoulderRatio,
	}
}

// Classify implements Policy.
func (p HeuristicPolicy) Classify(garmentHeight, bodyHeight float64) Class {
	if garmentHeight < bodyHeight*p.TopRatio {
		return ClassTop
	}
	return ClassFullBody
}

// VerticalShift implements Policy.
func (p HeuristicPolicy) VerticalShift(class Class, garment, body AABB) float64 {
	if class == ClassTop {
		shoulder := body.Min.Y + p.ShoulderRatio*body.Height()
		return shoulder - garment.Center().Y
	}
	return body.Min.Y - garment.Min.Y
}
