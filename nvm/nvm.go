// Package nvm writes reconstructions in the NVM_V3 text format read by
// VisualSfM and compatible viewers.
//
// NVM stores feature coordinates relative to the principal point of their
// image. Export also writes a sibling _offsets.txt file with the principal
// point of every view so the shift can be undone.
package nvm

import (
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/recolude/sfm-export/sfm"
)

const (
	Version       = "NVM_V3"
	OffsetsSuffix = "_offsets.txt"

	// extensionLen is the length of the ".nvm" suffix replaced by OffsetsSuffix.
	extensionLen = 4
)

// ErrInconsistentReconstruction is returned when a track claims an
// observation that its view does not hold.
var ErrInconsistentReconstruction = errors.New("inconsistent reconstruction")

// OffsetsPath returns the path of the principal point file written alongside
// the NVM file at nvmPath.
func OffsetsPath(nvmPath string) string {
	return nvmPath[:max(len(nvmPath)-extensionLen, 0)] + OffsetsSuffix
}

// Export writes recon to nvmPath and its principal points to
// OffsetsPath(nvmPath). Both files are created or truncated. If nvmPath cannot
// be created the offsets file is not touched.
func Export(nvmPath string, recon sfm.Reconstruction) (err error) {
	glog.Infof("Writing nvm: %s", nvmPath)
	nvmFile, err := os.Create(nvmPath)
	if err != nil {
		glog.Warningf("Could not open nvm file for writing: %s", nvmPath)
		return errors.Wrap(err, "open nvm file")
	}
	defer closeFile(nvmFile, &err)

	offsetsPath := OffsetsPath(nvmPath)
	glog.Infof("Writing optical offsets: %s", offsetsPath)
	offsetsFile, err := os.Create(offsetsPath)
	if err != nil {
		glog.Warningf("Could not open file for writing: %s", offsetsPath)
		return errors.Wrap(err, "open offsets file")
	}
	defer closeFile(offsetsFile, &err)

	return Write(nvmFile, offsetsFile, recon)
}

func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = errors.Wrapf(cerr, "close %s", f.Name())
	}
}
