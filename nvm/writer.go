package nvm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/recolude/sfm-export/sfm"
)

// floatPrecision is the number of significant digits needed to round trip a
// float64.
const floatPrecision = 17

// Write encodes recon as NVM to nvm and the principal point of every view to
// offsets. Nothing past the first inconsistent track is written.
func Write(nvm, offsets io.Writer, recon sfm.Reconstruction) error {
	e := &encoder{
		nvm:      bufio.NewWriter(nvm),
		offsets:  bufio.NewWriter(offsets),
		views:    make(viewIndex),
		features: make(featureIndex),
	}

	err := e.encode(recon)

	// flush what was written even when encoding failed part way
	if ferr := e.nvm.Flush(); ferr != nil && err == nil {
		err = errors.Wrap(ferr, "flush nvm")
	}
	if ferr := e.offsets.Flush(); ferr != nil && err == nil {
		err = errors.Wrap(ferr, "flush offsets")
	}
	return err
}

// viewIndex maps a view to its camera index in the file.
type viewIndex map[sfm.ViewID]int

// featureIndex maps a view and one of its tracks to the feature index of that
// track within the view. Indices are only unique per view.
type featureIndex map[sfm.ViewID]map[sfm.TrackID]int

type encoder struct {
	nvm      *bufio.Writer
	offsets  *bufio.Writer
	views    viewIndex
	features featureIndex

	poseOnlyNoticed bool
}

func (e *encoder) encode(recon sfm.Reconstruction) error {
	if err := e.line(e.nvm, Version); err != nil {
		return err
	}
	if err := e.line(e.nvm); err != nil {
		return err
	}
	if err := e.writeCameras(recon); err != nil {
		return err
	}
	if err := e.writePoints(recon); err != nil {
		return err
	}
	return e.line(e.nvm, "0")
}

func (e *encoder) writeCameras(recon sfm.Reconstruction) error {
	viewIDs := recon.ViewIDs()
	if err := e.line(e.nvm, strconv.Itoa(len(viewIDs))); err != nil {
		return err
	}

	for _, viewID := range viewIDs {
		view := recon.View(viewID)
		if view == nil {
			return errors.Wrapf(ErrInconsistentReconstruction, "view %d is listed but missing", viewID)
		}
		e.views[viewID] = len(e.views)

		camera := view.Camera()
		q := camera.OrientationAsQuaternion()
		record := []string{
			view.Name(),
			formatFloat(camera.FocalLength),
			formatFloat(q.Real),
			formatFloat(q.Imag),
			formatFloat(q.Jmag),
			formatFloat(q.Kmag),
			formatFloat(camera.Position.X()),
			formatFloat(camera.Position.Y()),
			formatFloat(camera.Position.Z()),
			e.distortion(camera),
			"0",
		}
		if err := e.line(e.nvm, record...); err != nil {
			return err
		}

		err := e.line(e.offsets,
			view.Name(),
			formatFloat(camera.PrincipalPoint.X()),
			formatFloat(camera.PrincipalPoint.Y()),
		)
		if err != nil {
			return err
		}

		local := make(map[sfm.TrackID]int, view.NumFeatures())
		for i, trackID := range view.TrackIDs() {
			local[trackID] = i
		}
		e.features[viewID] = local
	}

	glog.V(1).Infof("Wrote %d cameras", len(viewIDs))
	return nil
}

// distortion returns the single radial term NVM can hold. Cameras without a
// pinhole model are written without distortion.
func (e *encoder) distortion(camera *sfm.Camera) string {
	switch intrinsics := camera.Intrinsics.(type) {
	case sfm.Pinhole:
		return formatFloat(intrinsics.RadialDistortion1)
	case *sfm.Pinhole:
		if intrinsics != nil {
			return formatFloat(intrinsics.RadialDistortion1)
		}
	}

	if !e.poseOnlyNoticed {
		glog.Warningf("Camera intrinsics model %s cannot be stored in NVM, saving camera poses without distortion", camera.IntrinsicsModelType())
		e.poseOnlyNoticed = true
	}
	return "0"
}

func (e *encoder) writePoints(recon sfm.Reconstruction) error {
	trackIDs := recon.TrackIDs()
	if err := e.line(e.nvm, strconv.Itoa(len(trackIDs))); err != nil {
		return err
	}

	for _, trackID := range trackIDs {
		record, err := e.pointRecord(recon, trackID)
		if err != nil {
			return err
		}
		if err := e.line(e.nvm, record...); err != nil {
			return err
		}
	}

	glog.V(1).Infof("Wrote %d points", len(trackIDs))
	return nil
}

func (e *encoder) pointRecord(recon sfm.Reconstruction, trackID sfm.TrackID) ([]string, error) {
	track := recon.Track(trackID)
	if track == nil {
		return nil, errors.Wrapf(ErrInconsistentReconstruction, "track %d is listed but missing", trackID)
	}

	position := track.Euclidean()
	color := track.Color()
	viewIDs := track.ViewIDs()

	record := make([]string, 0, 7+4*len(viewIDs))
	record = append(record,
		formatFloat(position.X()),
		formatFloat(position.Y()),
		formatFloat(position.Z()),
		strconv.Itoa(int(color.X())),
		strconv.Itoa(int(color.Y())),
		strconv.Itoa(int(color.Z())),
		strconv.Itoa(len(viewIDs)),
	)

	for _, viewID := range viewIDs {
		viewIdx, ok := e.views[viewID]
		if !ok {
			return nil, errors.Wrapf(ErrInconsistentReconstruction, "track %d observed by unknown view %d", trackID, viewID)
		}
		featureIdx, ok := e.features[viewID][trackID]
		if !ok {
			return nil, errors.Wrapf(ErrInconsistentReconstruction, "view %d has no feature index for track %d", viewID, trackID)
		}

		view := recon.View(viewID)
		feature, ok := view.Feature(trackID)
		if !ok {
			return nil, errors.Wrapf(ErrInconsistentReconstruction, "view %d has no feature for track %d", viewID, trackID)
		}
		principal := view.Camera().PrincipalPoint
		shifted := feature.Sub(principal)

		record = append(record,
			strconv.Itoa(viewIdx),
			strconv.Itoa(featureIdx),
			formatFloat(shifted.X()),
			formatFloat(shifted.Y()),
		)
	}
	return record, nil
}

func (e *encoder) line(w *bufio.Writer, fields ...string) error {
	if _, err := w.WriteString(strings.Join(fields, " ")); err != nil {
		return errors.Wrap(err, "write record")
	}
	if err := w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write record")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', floatPrecision, 64)
}
