package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/recolude/sfm-export/opensfm"
	"github.com/recolude/sfm-export/sfm"
)

func loadModel(reconstructionPath, tracksPath string, index int) (*sfm.Model, error) {
	reconFile, err := os.Open(reconstructionPath)
	if err != nil {
		return nil, errors.Wrap(err, "open reconstruction")
	}
	defer reconFile.Close()

	reconstructions, err := opensfm.ReadReconstructions(reconFile)
	if err != nil {
		return nil, err
	}
	if len(reconstructions) > 1 {
		glog.Infof("%s holds %d reconstructions, exporting #%d", reconstructionPath, len(reconstructions), index)
	}
	recon, err := reconstructions.Select(index)
	if err != nil {
		return nil, err
	}

	var observations []opensfm.Observation
	if tracksPath != "" {
		tracksFile, err := os.Open(tracksPath)
		if err != nil {
			return nil, errors.Wrap(err, "open tracks")
		}
		defer tracksFile.Close()

		observations, err = opensfm.ReadTracks(tracksFile)
		if err != nil {
			return nil, err
		}
	}

	return recon.ToModel(observations)
}
