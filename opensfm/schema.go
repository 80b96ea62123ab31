package opensfm

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// ReconstructionJsonSchema is the top level of an OpenSfM reconstruction.json,
// which holds one entry per connected component.
type ReconstructionJsonSchema []ReconstructionSchema

type ReconstructionSchema struct {
	Cameras map[string]CameraSchema `json:"cameras"`
	Shots   map[string]ShotSchema   `json:"shots"`
	Points  map[string]PointSchema  `json:"points"`
}

// CameraSchema covers the perspective, brown and fisheye projections.
// Focal lengths and principal point offsets are normalized by the larger
// image dimension.
type CameraSchema struct {
	ProjectionType string  `json:"projection_type"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Focal          float64 `json:"focal"`
	FocalX         float64 `json:"focal_x"`
	FocalY         float64 `json:"focal_y"`
	CX             float64 `json:"c_x"`
	CY             float64 `json:"c_y"`
	K1             float64 `json:"k1"`
	K2             float64 `json:"k2"`
	K3             float64 `json:"k3"`
	K4             float64 `json:"k4"`
	P1             float64 `json:"p1"`
	P2             float64 `json:"p2"`
}

// ShotSchema is the pose of one image. Rotation is a world-to-camera
// angle-axis vector and Translation the matching translation.
type ShotSchema struct {
	Camera      string     `json:"camera"`
	Rotation    [3]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
	CaptureTime float64    `json:"capture_time"`
	Orientation int        `json:"orientation"`
	Scale       float64    `json:"scale"`
}

type PointSchema struct {
	Coordinates [3]float64 `json:"coordinates"`
	Color       [3]float64 `json:"color"`
}

// ReadReconstructions decodes a reconstruction.json document.
func ReadReconstructions(r io.Reader) (ReconstructionJsonSchema, error) {
	var reconstructions ReconstructionJsonSchema
	if err := json.NewDecoder(r).Decode(&reconstructions); err != nil {
		return nil, errors.Wrap(err, "decode reconstruction json")
	}
	return reconstructions, nil
}
