package sfm

import (
	"slices"

	"github.com/EliCDavis/vector/vector3"
	"gonum.org/v1/gonum/mat"
)

// Track is a triangulated point and the views that observed it.
type Track struct {
	point   *mat.VecDense
	color   vector3.Float64
	viewIDs []ViewID
}

// NewTrack creates a track at the homogeneous point (x, y, z, w).
func NewTrack(x, y, z, w float64, color vector3.Float64) *Track {
	return &Track{
		point:   mat.NewVecDense(4, []float64{x, y, z, w}),
		color:   color,
		viewIDs: make([]ViewID, 0),
	}
}

// Point returns the homogeneous 4-vector of the track.
func (t *Track) Point() mat.Vector {
	return t.point
}

// Euclidean returns the point divided through by its homogeneous coordinate.
func (t *Track) Euclidean() vector3.Float64 {
	var scaled mat.VecDense
	scaled.ScaleVec(1/t.point.AtVec(3), t.point)
	return vector3.New(scaled.AtVec(0), scaled.AtVec(1), scaled.AtVec(2))
}

// Color is the RGB color of the point, each channel in [0, 255].
func (t *Track) Color() vector3.Float64 {
	return t.color
}

// ViewIDs lists the observing views in the order they were added. The slice
// is a copy.
func (t *Track) ViewIDs() []ViewID {
	return slices.Clone(t.viewIDs)
}

func (t *Track) NumViews() int {
	return len(t.viewIDs)
}

// AddView marks the track as observed by the view. Adding the same view twice
// reports false.
func (t *Track) AddView(viewID ViewID) bool {
	for _, id := range t.viewIDs {
		if id == viewID {
			return false
		}
	}
	t.viewIDs = append(t.viewIDs, viewID)
	return true
}
