package opensfm

import (
	"math"
	"sort"
	"strconv"

	"github.com/EliCDavis/vector/vector2"
	"github.com/EliCDavis/vector/vector3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/recolude/sfm-export/sfm"
)

var (
	ErrNoReconstruction      = errors.New("reconstruction index out of range")
	ErrUnknownProjectionType = errors.New("unknown projection type")
	ErrUnknownCamera         = errors.New("shot references unknown camera")
)

// Select returns the reconstruction at index.
func (r ReconstructionJsonSchema) Select(index int) (ReconstructionSchema, error) {
	if index < 0 || index >= len(r) {
		return ReconstructionSchema{}, errors.Wrapf(ErrNoReconstruction, "index %d of %d", index, len(r))
	}
	return r[index], nil
}

// ToModel converts the reconstruction into pixel units. Shots become views in
// name order and points become tracks in id order. Observations are kept when
// both their image and their track belong to the reconstruction.
func (recon ReconstructionSchema) ToModel(observations []Observation) (*sfm.Model, error) {
	model := sfm.NewModel()

	shotNames := make([]string, 0, len(recon.Shots))
	for name := range recon.Shots {
		shotNames = append(shotNames, name)
	}
	sort.Strings(shotNames)

	for _, name := range shotNames {
		shot := recon.Shots[name]
		cameraSchema, ok := recon.Cameras[shot.Camera]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownCamera, "shot %q camera %q", name, shot.Camera)
		}
		camera, err := cameraSchema.toCamera()
		if err != nil {
			return nil, errors.Wrapf(err, "shot %q", name)
		}

		angleAxis := r3.Vec{X: shot.Rotation[0], Y: shot.Rotation[1], Z: shot.Rotation[2]}
		camera.SetOrientationFromAngleAxis(angleAxis)
		center := sfm.CenterFromTranslation(
			camera.OrientationAsRotationMatrix(),
			r3.Vec{X: shot.Translation[0], Y: shot.Translation[1], Z: shot.Translation[2]},
		)
		camera.Position = vector3.New(center.X, center.Y, center.Z)

		viewID, err := model.AddView(name, camera)
		if err != nil {
			return nil, err
		}
		if shot.CaptureTime != 0 {
			model.View(viewID).SetCaptureTime(shot.CaptureTime)
		}
	}

	trackIDs := make(map[string]sfm.TrackID, len(recon.Points))
	for _, id := range sortedPointIDs(recon.Points) {
		p := recon.Points[id]
		trackIDs[id] = model.AddTrack(
			vector3.New(p.Coordinates[0], p.Coordinates[1], p.Coordinates[2]),
			vector3.New(p.Color[0], p.Color[1], p.Color[2]),
		)
	}

	skipped := 0
	for _, obs := range observations {
		viewID, ok := model.ViewIDByName(obs.Image)
		if !ok {
			skipped++
			continue
		}
		trackID, ok := trackIDs[obs.TrackID]
		if !ok {
			skipped++
			continue
		}
		camera := recon.Cameras[recon.Shots[obs.Image].Camera]
		feature := camera.denormalize(obs.X, obs.Y)
		if err := model.AddObservation(viewID, trackID, feature); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("opensfm: %d views, %d tracks, %d observations outside the reconstruction", model.NumViews(), model.NumTracks(), skipped)

	return model, nil
}

func (c CameraSchema) size() float64 {
	return math.Max(float64(c.Width), float64(c.Height))
}

// principalPoint is the pixel that normalized coordinate (0, 0) maps to.
func (c CameraSchema) principalPoint() vector2.Float64 {
	size := c.size()
	x := float64(c.Width)/2 - 0.5
	y := float64(c.Height)/2 - 0.5
	if c.ProjectionType == "brown" {
		x += c.CX * size
		y += c.CY * size
	}
	return vector2.New(x, y)
}

func (c CameraSchema) denormalize(x, y float64) vector2.Float64 {
	size := c.size()
	return vector2.New(
		x*size+float64(c.Width)/2-0.5,
		y*size+float64(c.Height)/2-0.5,
	)
}

func (c CameraSchema) toCamera() (*sfm.Camera, error) {
	camera := sfm.NewCamera()
	camera.Width = c.Width
	camera.Height = c.Height
	camera.PrincipalPoint = c.principalPoint()

	size := c.size()
	switch c.ProjectionType {
	case "perspective":
		camera.FocalLength = c.Focal * size
		camera.Intrinsics = sfm.Pinhole{RadialDistortion1: c.K1, RadialDistortion2: c.K2}
	case "brown":
		camera.FocalLength = c.FocalX * size
		camera.Intrinsics = sfm.BrownConrady{
			RadialK1:     c.K1,
			RadialK2:     c.K2,
			RadialK3:     c.K3,
			TangentialP1: c.P1,
			TangentialP2: c.P2,
		}
	case "fisheye", "fisheye_opencv":
		camera.FocalLength = c.Focal * size
		camera.Intrinsics = sfm.Fisheye{K1: c.K1, K2: c.K2, K3: c.K3, K4: c.K4}
	default:
		return nil, errors.Wrapf(ErrUnknownProjectionType, "%q", c.ProjectionType)
	}
	return camera, nil
}

// sortedPointIDs orders numeric ids by value and places any others after them
// in lexical order.
func sortedPointIDs(points map[string]PointSchema) []string {
	ids := make([]string, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.ParseInt(ids[i], 10, 64)
		b, bErr := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
