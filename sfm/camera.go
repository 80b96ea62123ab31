package sfm

import (
	"github.com/EliCDavis/vector/vector2"
	"github.com/EliCDavis/vector/vector3"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is the calibrated pose and lens of a single view.
type Camera struct {
	// Position is the camera center in world coordinates.
	Position       vector3.Float64
	FocalLength    float64
	PrincipalPoint vector2.Float64
	Intrinsics     Intrinsics
	Width          int
	Height         int

	orientation *r3.Mat
}

// NewCamera returns a camera at the world origin looking down +Z with an
// identity orientation and pinhole intrinsics.
func NewCamera() *Camera {
	return &Camera{
		Position:   vector3.New(0., 0., 0.),
		Intrinsics: Pinhole{},
	}
}

// SetOrientationFromRotationMatrix sets the world-to-camera rotation.
func (c *Camera) SetOrientationFromRotationMatrix(rotation *r3.Mat) {
	m := r3.NewMat(nil)
	m.CloneFrom(rotation)
	c.orientation = m
}

// SetOrientationFromAngleAxis sets the world-to-camera rotation from an
// angle-axis vector.
func (c *Camera) SetOrientationFromAngleAxis(angleAxis r3.Vec) {
	c.orientation = RotationFromAngleAxis(angleAxis)
}

// OrientationAsRotationMatrix returns a copy of the world-to-camera rotation.
func (c *Camera) OrientationAsRotationMatrix() *r3.Mat {
	if c.orientation == nil {
		return r3.Eye()
	}
	m := r3.NewMat(nil)
	m.CloneFrom(c.orientation)
	return m
}

// OrientationAsQuaternion returns the world-to-camera rotation as a unit
// quaternion.
func (c *Camera) OrientationAsQuaternion() quat.Number {
	return QuaternionFromRotation(c.OrientationAsRotationMatrix())
}

// IntrinsicsModelType reports the lens model of the camera, or
// InvalidIntrinsicsModel when none was set.
func (c *Camera) IntrinsicsModelType() IntrinsicsModelType {
	if c.Intrinsics == nil {
		return InvalidIntrinsicsModel
	}
	return c.Intrinsics.ModelType()
}

// CenterFromTranslation computes the world position of a camera from its
// world-to-camera rotation and translation, C = -Rᵀt.
func CenterFromTranslation(rotation *r3.Mat, translation r3.Vec) r3.Vec {
	return r3.Scale(-1, rotation.MulVecTrans(translation))
}
