package sfm

import (
	"slices"

	"github.com/EliCDavis/vector/vector2"
)

type ViewID uint32

type TrackID uint32

// View is one image of the reconstruction together with the features of the
// tracks it observes.
type View struct {
	name     string
	camera   *Camera
	trackIDs []TrackID
	features map[TrackID]vector2.Float64

	captureTime    float64
	hasCaptureTime bool
}

func NewView(name string, camera *Camera) *View {
	if camera == nil {
		camera = NewCamera()
	}
	return &View{
		name:     name,
		camera:   camera,
		trackIDs: make([]TrackID, 0),
		features: make(map[TrackID]vector2.Float64),
	}
}

func (v *View) Name() string {
	return v.name
}

func (v *View) Camera() *Camera {
	return v.camera
}

// TrackIDs lists the observed tracks in the order their features were added.
// The slice is a copy.
func (v *View) TrackIDs() []TrackID {
	return slices.Clone(v.trackIDs)
}

func (v *View) NumFeatures() int {
	return len(v.trackIDs)
}

// Feature returns the pixel at which the track was observed in this view.
func (v *View) Feature(trackID TrackID) (vector2.Float64, bool) {
	f, ok := v.features[trackID]
	return f, ok
}

// AddFeature records an observation of the track. It reports false and
// leaves the view untouched if the track already has a feature here.
func (v *View) AddFeature(trackID TrackID, feature vector2.Float64) bool {
	if _, ok := v.features[trackID]; ok {
		return false
	}
	v.features[trackID] = feature
	v.trackIDs = append(v.trackIDs, trackID)
	return true
}

func (v *View) SetCaptureTime(t float64) {
	v.captureTime = t
	v.hasCaptureTime = true
}

// CaptureTime returns the acquisition timestamp if one is known.
func (v *View) CaptureTime() (float64, bool) {
	return v.captureTime, v.hasCaptureTime
}
