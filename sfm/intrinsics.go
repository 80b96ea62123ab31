package sfm

// IntrinsicsModelType tags the lens model a camera was calibrated with.
type IntrinsicsModelType int

const (
	InvalidIntrinsicsModel IntrinsicsModelType = iota
	PinholeModel
	FisheyeModel
	BrownConradyModel
)

func (t IntrinsicsModelType) String() string {
	switch t {
	case PinholeModel:
		return "pinhole"
	case FisheyeModel:
		return "fisheye"
	case BrownConradyModel:
		return "brown_conrady"
	}
	return "invalid"
}

// Intrinsics is the closed set of lens models a Camera can carry. Only the
// types in this package implement it.
type Intrinsics interface {
	ModelType() IntrinsicsModelType
	Parameters() []float64
	intrinsics()
}

// Pinhole is a pinhole camera with a two term radial distortion.
type Pinhole struct {
	RadialDistortion1 float64
	RadialDistortion2 float64
}

func (Pinhole) ModelType() IntrinsicsModelType { return PinholeModel }

func (p Pinhole) Parameters() []float64 {
	return []float64{p.RadialDistortion1, p.RadialDistortion2}
}

func (Pinhole) intrinsics() {}

// Fisheye is the equidistant fisheye model with four polynomial terms.
type Fisheye struct {
	K1, K2, K3, K4 float64
}

func (Fisheye) ModelType() IntrinsicsModelType { return FisheyeModel }

func (f Fisheye) Parameters() []float64 {
	return []float64{f.K1, f.K2, f.K3, f.K4}
}

func (Fisheye) intrinsics() {}

// BrownConrady carries three radial and two tangential distortion terms.
type BrownConrady struct {
	RadialK1     float64
	RadialK2     float64
	RadialK3     float64
	TangentialP1 float64
	TangentialP2 float64
}

func (BrownConrady) ModelType() IntrinsicsModelType { return BrownConradyModel }

func (b BrownConrady) Parameters() []float64 {
	return []float64{b.RadialK1, b.RadialK2, b.RadialK3, b.TangentialP1, b.TangentialP2}
}

func (BrownConrady) intrinsics() {}
