package sfm

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationFromAngleAxis builds a rotation matrix from an angle-axis vector
// whose norm is the rotation angle in radians.
func RotationFromAngleAxis(angleAxis r3.Vec) *r3.Mat {
	return r3.NewRotation(r3.Norm(angleAxis), angleAxis).Mat()
}

// QuaternionFromRotation converts a rotation matrix to a unit quaternion,
// picking the numerically largest component first (Shepperd's method).
func QuaternionFromRotation(m *r3.Mat) quat.Number {
	var q quat.Number
	trace := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	if trace > 0 {
		t := math.Sqrt(trace + 1)
		q.Real = 0.5 * t
		t = 0.5 / t
		q.Imag = (m.At(2, 1) - m.At(1, 2)) * t
		q.Jmag = (m.At(0, 2) - m.At(2, 0)) * t
		q.Kmag = (m.At(1, 0) - m.At(0, 1)) * t
		return q
	}

	i := 0
	if m.At(1, 1) > m.At(0, 0) {
		i = 1
	}
	if m.At(2, 2) > m.At(i, i) {
		i = 2
	}
	j := (i + 1) % 3
	k := (j + 1) % 3

	t := math.Sqrt(m.At(i, i) - m.At(j, j) - m.At(k, k) + 1)
	v := [3]float64{}
	v[i] = 0.5 * t
	t = 0.5 / t
	q.Real = (m.At(k, j) - m.At(j, k)) * t
	v[j] = (m.At(j, i) + m.At(i, j)) * t
	v[k] = (m.At(k, i) + m.At(i, k)) * t
	q.Imag, q.Jmag, q.Kmag = v[0], v[1], v[2]
	return q
}

// EulerZXY decomposes the rotation m, taken as Ry·Rx·Rz, into x, y and z
// angles in degrees.
func EulerZXY(m mat.Matrix) (x, y, z float64) {
	sx := -m.At(1, 2)
	if sx > 1 {
		sx = 1
	} else if sx < -1 {
		sx = -1
	}
	x = math.Asin(sx)
	if math.Abs(sx) < 1-1e-12 {
		y = math.Atan2(m.At(0, 2), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(1, 1))
	} else {
		// gimbal lock, z folds into y
		y = math.Atan2(-m.At(2, 0), m.At(0, 0))
		z = 0
	}
	return rad2deg(x), rad2deg(y), rad2deg(z)
}

func rad2deg(rad float64) float64 {
	return rad * 180 / math.Pi
}
