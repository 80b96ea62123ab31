package opensfm

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const tracksVersionPrefix = "OPENSFM_TRACKS_VERSION"

// Observation is one row of tracks.csv. X and Y are normalized image
// coordinates: the image center is 0 and the larger dimension spans 1.
type Observation struct {
	Image     string
	TrackID   string
	FeatureID int
	X, Y      float64
	Scale     float64
	Color     [3]float64
}

// ReadTracks parses an OpenSfM tracks.csv. Files without a version header are
// read as version 0, which carries no feature scale.
func ReadTracks(r io.Reader) ([]Observation, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = '\t'
	csvReader.FieldsPerRecord = -1
	csvReader.ReuseRecord = true

	version := 0
	observations := make([]Observation, 0)
	for line := 1; ; line++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "tracks line %d", line)
		}

		if line == 1 && strings.HasPrefix(record[0], tracksVersionPrefix) {
			version, err = parseTracksVersion(record[0])
			if err != nil {
				return nil, err
			}
			continue
		}

		obs, err := parseObservation(record, version)
		if err != nil {
			return nil, errors.Wrapf(err, "tracks line %d", line)
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

func parseTracksVersion(header string) (int, error) {
	v := strings.TrimPrefix(header, tracksVersionPrefix+"_v")
	version, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("unrecognized tracks header %q", header)
	}
	return version, nil
}

func parseObservation(record []string, version int) (Observation, error) {
	// v0: image track feature x y r g b
	// v1+: image track feature x y scale r g b [segmentation instance]
	colorAt := 6
	if version == 0 {
		colorAt = 5
	}
	if len(record) < colorAt+3 {
		return Observation{}, errors.Errorf("expected at least %d fields, got %d", colorAt+3, len(record))
	}

	featureID, err := strconv.Atoi(record[2])
	if err != nil {
		return Observation{}, errors.Wrap(err, "feature id")
	}

	values := make([]float64, 0, 6)
	fields := []string{record[3], record[4]}
	if version > 0 {
		fields = append(fields, record[5])
	}
	fields = append(fields, record[colorAt:colorAt+3]...)
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Observation{}, errors.Wrapf(err, "field %q", field)
		}
		values = append(values, v)
	}

	obs := Observation{
		Image:     record[0],
		TrackID:   record[1],
		FeatureID: featureID,
		X:         values[0],
		Y:         values[1],
	}
	rest := values[2:]
	if version > 0 {
		obs.Scale = rest[0]
		rest = rest[1:]
	}
	copy(obs.Color[:], rest)
	return obs, nil
}
