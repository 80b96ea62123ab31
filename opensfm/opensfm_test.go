package opensfm_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recolude/sfm-export/opensfm"
	"github.com/recolude/sfm-export/sfm"
)

const reconstructionJSON = `[
	{
		"cameras": {
			"v2 sony 640 480 perspective 0.85": {
				"projection_type": "perspective",
				"width": 640,
				"height": 480,
				"focal": 0.85,
				"k1": -0.1,
				"k2": 0.01
			},
			"v2 gopro 640 480 fisheye 0.5": {
				"projection_type": "fisheye",
				"width": 640,
				"height": 480,
				"focal": 0.5,
				"k1": 0.2,
				"k2": 0.3
			}
		},
		"shots": {
			"02.jpg": {
				"camera": "v2 gopro 640 480 fisheye 0.5",
				"rotation": [0, 0, 0],
				"translation": [0, 0, 0],
				"capture_time": 2
			},
			"01.jpg": {
				"camera": "v2 sony 640 480 perspective 0.85",
				"rotation": [0, 0, 0],
				"translation": [1, 2, 3],
				"capture_time": 1
			}
		},
		"points": {
			"10": {"coordinates": [1, 1, 1], "color": [10, 20, 30]},
			"2": {"coordinates": [2, 2, 2], "color": [40, 50, 60]},
			"extra": {"coordinates": [3, 3, 3], "color": [70, 80, 90]}
		}
	},
	{
		"cameras": {},
		"shots": {},
		"points": {}
	}
]`

func TestReadReconstructions(t *testing.T) {
	reconstructions, err := opensfm.ReadReconstructions(strings.NewReader(reconstructionJSON))
	require.NoError(t, err)
	require.Len(t, reconstructions, 2)

	first := reconstructions[0]
	assert.Len(t, first.Cameras, 2)
	assert.Len(t, first.Shots, 2)
	assert.Len(t, first.Points, 3)

	shot := first.Shots["01.jpg"]
	assert.Equal(t, [3]float64{1, 2, 3}, shot.Translation)
	assert.Equal(t, "v2 sony 640 480 perspective 0.85", shot.Camera)

	_, err = opensfm.ReadReconstructions(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	reconstructions, err := opensfm.ReadReconstructions(strings.NewReader(reconstructionJSON))
	require.NoError(t, err)

	second, err := reconstructions.Select(1)
	require.NoError(t, err)
	assert.Empty(t, second.Shots)

	_, err = reconstructions.Select(2)
	assert.ErrorIs(t, err, opensfm.ErrNoReconstruction)
	_, err = reconstructions.Select(-1)
	assert.ErrorIs(t, err, opensfm.ErrNoReconstruction)
}

func TestReadTracks(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []opensfm.Observation
	}{
		"no header": {
			input: "01.jpg\t10\t4\t0.1\t-0.05\t255\t0\t12\n",
			want: []opensfm.Observation{
				{Image: "01.jpg", TrackID: "10", FeatureID: 4, X: 0.1, Y: -0.05, Color: [3]float64{255, 0, 12}},
			},
		},
		"v0": {
			input: "OPENSFM_TRACKS_VERSION_v0\n01.jpg\t10\t4\t0.1\t-0.05\t255\t0\t12\n",
			want: []opensfm.Observation{
				{Image: "01.jpg", TrackID: "10", FeatureID: 4, X: 0.1, Y: -0.05, Color: [3]float64{255, 0, 12}},
			},
		},
		"v1": {
			input: "OPENSFM_TRACKS_VERSION_v1\n01.jpg\t10\t4\t0.1\t-0.05\t0.004\t255\t0\t12\n",
			want: []opensfm.Observation{
				{Image: "01.jpg", TrackID: "10", FeatureID: 4, X: 0.1, Y: -0.05, Scale: 0.004, Color: [3]float64{255, 0, 12}},
			},
		},
		"v2 with segmentation": {
			input: "OPENSFM_TRACKS_VERSION_v2\n" +
				"01.jpg\t10\t4\t0.1\t-0.05\t0.004\t255\t0\t12\t-1\t-1\n" +
				"02.jpg\t2\t0\t0\t0\t0.002\t1\t2\t3\t5\t7\n",
			want: []opensfm.Observation{
				{Image: "01.jpg", TrackID: "10", FeatureID: 4, X: 0.1, Y: -0.05, Scale: 0.004, Color: [3]float64{255, 0, 12}},
				{Image: "02.jpg", TrackID: "2", FeatureID: 0, Scale: 0.002, Color: [3]float64{1, 2, 3}},
			},
		},
		"empty": {
			input: "",
			want:  []opensfm.Observation{},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := opensfm.ReadTracks(strings.NewReader(tc.input))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("observations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadTracksErrors(t *testing.T) {
	tests := map[string]string{
		"bad header":      "OPENSFM_TRACKS_VERSION_vX\n",
		"too few fields":  "OPENSFM_TRACKS_VERSION_v1\n01.jpg\t10\t4\t0.1\t-0.05\t255\t0\n",
		"bad feature id":  "01.jpg\t10\tfour\t0.1\t-0.05\t255\t0\t12\n",
		"bad coordinates": "01.jpg\t10\t4\tx\t-0.05\t255\t0\t12\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := opensfm.ReadTracks(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestToModel(t *testing.T) {
	reconstructions, err := opensfm.ReadReconstructions(strings.NewReader(reconstructionJSON))
	require.NoError(t, err)
	recon, err := reconstructions.Select(0)
	require.NoError(t, err)

	observations := []opensfm.Observation{
		{Image: "01.jpg", TrackID: "10", X: 0.1, Y: -0.05},
		{Image: "02.jpg", TrackID: "10", X: 0, Y: 0},
		{Image: "01.jpg", TrackID: "extra", X: -0.5, Y: 0.375},
		{Image: "03.jpg", TrackID: "10"},
		{Image: "01.jpg", TrackID: "999"},
	}

	model, err := recon.ToModel(observations)
	require.NoError(t, err)

	require.Equal(t, 2, model.NumViews())
	require.Equal(t, 3, model.NumTracks())

	names := make([]string, 0, 2)
	for _, id := range model.ViewIDs() {
		names = append(names, model.View(id).Name())
	}
	assert.Equal(t, []string{"01.jpg", "02.jpg"}, names)

	colors := make([]float64, 0, 3)
	for _, id := range model.TrackIDs() {
		colors = append(colors, model.Track(id).Color().X())
	}
	assert.Equal(t, []float64{40, 10, 70}, colors, "numeric point ids sort first, by value")

	firstID, ok := model.ViewIDByName("01.jpg")
	require.True(t, ok)
	first := model.View(firstID)
	cam := first.Camera()

	assert.Equal(t, sfm.PinholeModel, cam.IntrinsicsModelType())
	assert.Equal(t, sfm.Pinhole{RadialDistortion1: -0.1, RadialDistortion2: 0.01}, cam.Intrinsics)
	assert.InDelta(t, 0.85*640, cam.FocalLength, 1e-9)
	assert.Equal(t, 319.5, cam.PrincipalPoint.X())
	assert.Equal(t, 239.5, cam.PrincipalPoint.Y())
	assert.Equal(t, 640, cam.Width)
	assert.Equal(t, 480, cam.Height)

	// zero rotation puts the center at -t
	assert.Equal(t, -1., cam.Position.X())
	assert.Equal(t, -2., cam.Position.Y())
	assert.Equal(t, -3., cam.Position.Z())

	captureTime, ok := first.CaptureTime()
	assert.True(t, ok)
	assert.Equal(t, 1., captureTime)

	assert.Equal(t, 2, first.NumFeatures())
	feature, ok := first.Feature(model.TrackIDs()[1])
	require.True(t, ok)
	assert.InDelta(t, 0.1*640+319.5, feature.X(), 1e-9)
	assert.InDelta(t, -0.05*640+239.5, feature.Y(), 1e-9)

	extra, ok := first.Feature(model.TrackIDs()[2])
	require.True(t, ok)
	assert.InDelta(t, -0.5, extra.X(), 1e-9)
	assert.InDelta(t, 0.375*640+239.5, extra.Y(), 1e-9)

	secondID, ok := model.ViewIDByName("02.jpg")
	require.True(t, ok)
	second := model.View(secondID)
	assert.Equal(t, sfm.FisheyeModel, second.Camera().IntrinsicsModelType())
	assert.Equal(t, []sfm.ViewID{firstID, secondID}, model.Track(model.TrackIDs()[1]).ViewIDs())

	summary := sfm.Summarize(model)
	assert.Equal(t, 3, summary.Observations)
}

func TestToModelBrownPrincipalPoint(t *testing.T) {
	recon := opensfm.ReconstructionSchema{
		Cameras: map[string]opensfm.CameraSchema{
			"brown": {
				ProjectionType: "brown",
				Width:          400,
				Height:         800,
				FocalX:         0.75,
				FocalY:         0.76,
				CX:             0.01,
				CY:             -0.02,
				K1:             0.1,
				P2:             0.003,
			},
		},
		Shots: map[string]opensfm.ShotSchema{
			"a.jpg": {Camera: "brown"},
		},
	}

	model, err := recon.ToModel(nil)
	require.NoError(t, err)

	cam := model.View(model.ViewIDs()[0]).Camera()
	assert.InDelta(t, 0.75*800, cam.FocalLength, 1e-9)
	assert.InDelta(t, 199.5+0.01*800, cam.PrincipalPoint.X(), 1e-9)
	assert.InDelta(t, 399.5-0.02*800, cam.PrincipalPoint.Y(), 1e-9)
	assert.Equal(t, sfm.BrownConrady{RadialK1: 0.1, TangentialP2: 0.003}, cam.Intrinsics)

	_, ok := model.View(model.ViewIDs()[0]).CaptureTime()
	assert.False(t, ok)
}

func TestToModelErrors(t *testing.T) {
	t.Run("unknown projection", func(t *testing.T) {
		recon := opensfm.ReconstructionSchema{
			Cameras: map[string]opensfm.CameraSchema{"c": {ProjectionType: "spherical"}},
			Shots:   map[string]opensfm.ShotSchema{"a.jpg": {Camera: "c"}},
		}
		_, err := recon.ToModel(nil)
		assert.ErrorIs(t, err, opensfm.ErrUnknownProjectionType)
	})

	t.Run("unknown camera", func(t *testing.T) {
		recon := opensfm.ReconstructionSchema{
			Shots: map[string]opensfm.ShotSchema{"a.jpg": {Camera: "missing"}},
		}
		_, err := recon.ToModel(nil)
		assert.ErrorIs(t, err, opensfm.ErrUnknownCamera)
	})
}
