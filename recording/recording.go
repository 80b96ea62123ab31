package recording

import (
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/recolude/rap/format"
	"github.com/recolude/rap/format/collection/euler"
	"github.com/recolude/rap/format/collection/event"
	"github.com/recolude/rap/format/collection/position"
	"github.com/recolude/rap/format/encoding"
	eulEnc "github.com/recolude/rap/format/encoding/euler"
	eventEnc "github.com/recolude/rap/format/encoding/event"
	posEnc "github.com/recolude/rap/format/encoding/position"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"

	"github.com/recolude/sfm-export/pointcloud"
	"github.com/recolude/sfm-export/sfm"
)

var digits = regexp.MustCompile("[0-9]+")

type SortPositionByTime []position.Capture

func (a SortPositionByTime) Len() int           { return len(a) }
func (a SortPositionByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortPositionByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

type SortRotationByTime []euler.Capture

func (a SortRotationByTime) Len() int           { return len(a) }
func (a SortRotationByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortRotationByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

type SortEventByTime []event.Capture

func (a SortEventByTime) Len() int           { return len(a) }
func (a SortEventByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortEventByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

// checkViews reports the first listed view id the reconstruction cannot
// resolve.
func checkViews(recon sfm.Reconstruction) error {
	for _, id := range recon.ViewIDs() {
		if recon.View(id) == nil {
			return errors.Wrapf(sfm.ErrUnknownView, "view %d is listed but missing", id)
		}
	}
	return nil
}

// ViewTimes assigns a timestamp to every view. Capture times are used when any
// view has one. Otherwise the first number in each view name is used, and the
// view's position in the reconstruction when the name has none. Listed ids
// without a view get no timestamp.
func ViewTimes(recon sfm.Reconstruction) map[sfm.ViewID]float64 {
	viewIDs := recon.ViewIDs()
	times := make(map[sfm.ViewID]float64, len(viewIDs))

	haveCaptureTimes := false
	for _, id := range viewIDs {
		view := recon.View(id)
		if view == nil {
			continue
		}
		if _, ok := view.CaptureTime(); ok {
			haveCaptureTimes = true
			break
		}
	}

	for i, id := range viewIDs {
		view := recon.View(id)
		if view == nil {
			continue
		}
		if haveCaptureTimes {
			t, _ := view.CaptureTime()
			times[id] = t
			continue
		}
		times[id] = float64(i)
		if index, err := strconv.Atoi(digits.FindString(view.Name())); err == nil {
			times[id] = float64(index)
		}
	}
	return times
}

func cameraSubject(recon sfm.Reconstruction) format.Recording {
	viewIDs := recon.ViewIDs()
	times := ViewTimes(recon)

	positionCaptures := make([]position.Capture, 0, len(viewIDs))
	rotationCaptures := make([]euler.Capture, 0, len(viewIDs))
	eventCaptures := make([]event.Capture, 0, len(viewIDs))

	for _, id := range viewIDs {
		view := recon.View(id)
		if view == nil {
			continue
		}
		camera := view.Camera()
		time := times[id]

		// the recording stores camera-to-world orientation
		x, y, z := sfm.EulerZXY(camera.OrientationAsRotationMatrix().T())
		positionCaptures = append(positionCaptures, position.NewCapture(time, camera.Position.X(), camera.Position.Y(), camera.Position.Z()))
		rotationCaptures = append(rotationCaptures, euler.NewEulerZXYCapture(time, x, y, z))
		eventCaptures = append(eventCaptures, event.NewCapture(time, view.Name(), metadata.NewBlock(map[string]metadata.Property{
			"Focal":        metadata.NewFloat32Property(float32(camera.FocalLength)),
			"Intrinsics":   metadata.NewStringProperty(camera.IntrinsicsModelType().String()),
			"Features":     metadata.NewIntProperty(view.NumFeatures()),
			"Principal X":  metadata.NewFloat32Property(float32(camera.PrincipalPoint.X())),
			"Principal Y":  metadata.NewFloat32Property(float32(camera.PrincipalPoint.Y())),
			"Image Width":  metadata.NewIntProperty(camera.Width),
			"Image Height": metadata.NewIntProperty(camera.Height),
		})))
	}

	sort.Sort(SortPositionByTime(positionCaptures))
	sort.Sort(SortRotationByTime(rotationCaptures))
	sort.Sort(SortEventByTime(eventCaptures))

	return format.NewRecording(
		"cameras",
		"Cameras",
		[]format.CaptureCollection{
			position.NewCollection("Position", positionCaptures),
			euler.NewCollection("Rotation", rotationCaptures),
			event.NewCollection("Custom Event", eventCaptures),
		},
		nil,
		metadata.NewBlock(map[string]metadata.Property{
			"views": metadata.NewIntProperty(len(viewIDs)),
		}),
		[]format.Binary{},
		[]format.BinaryReference{},
	)
}

// FromReconstruction builds a recording with the camera trajectory as a
// subject and the sparse point cloud, plus any extra binaries, attached. It
// fails with sfm.ErrUnknownView when a listed view id has no view.
func FromReconstruction(id, name string, recon sfm.Reconstruction, extra ...format.Binary) (format.Recording, error) {
	if err := checkViews(recon); err != nil {
		return nil, err
	}

	cloud, err := pointcloud.ToRapBinary("points.ply", recon)
	if err != nil {
		return nil, err
	}
	binaries := append([]format.Binary{cloud}, extra...)

	summary := sfm.Summarize(recon)
	return format.NewRecording(
		id,
		name,
		[]format.CaptureCollection{},
		[]format.Recording{cameraSubject(recon)},
		metadata.NewBlock(map[string]metadata.Property{
			"views":        metadata.NewIntProperty(summary.Views),
			"tracks":       metadata.NewIntProperty(summary.Tracks),
			"observations": metadata.NewIntProperty(summary.Observations),
		}),
		binaries,
		[]format.BinaryReference{},
	), nil
}

// Write encodes rec to w in the RAP format.
func Write(w io.Writer, rec format.Recording) error {
	rapWriter := rapio.NewWriter(
		[]encoding.Encoder{
			posEnc.NewEncoder(posEnc.Oct24),
			eulEnc.NewEncoder(eulEnc.Raw16),
			eventEnc.NewEncoder(),
		},
		true,
		w,
		rapio.BST16,
	)

	if _, err := rapWriter.Write(rec); err != nil {
		return errors.Wrap(err, "write rap")
	}
	return nil
}
