package pointcloud

import (
	"bytes"
	"io"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	"github.com/pkg/errors"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"

	"github.com/recolude/sfm-export/sfm"
)

// FromReconstruction builds a point cloud of the Euclidean track positions
// with colors scaled to [0, 1].
func FromReconstruction(recon sfm.Reconstruction) modeling.Mesh {
	trackIDs := recon.TrackIDs()
	positionData := make([]vector3.Float64, 0, len(trackIDs))
	colorData := make([]vector3.Float64, 0, len(trackIDs))

	for _, id := range trackIDs {
		track := recon.Track(id)
		if track == nil {
			continue
		}
		positionData = append(positionData, track.Euclidean())
		colorData = append(colorData, track.Color().DivByConstant(255.))
	}

	return modeling.NewPointCloud(
		map[string][]vector3.Vector[float64]{
			modeling.PositionAttribute: positionData,
			modeling.ColorAttribute:    colorData,
		},
		nil,
		nil,
		nil,
	)
}

// WritePLY writes the reconstruction's points as a binary PLY file.
func WritePLY(w io.Writer, recon sfm.Reconstruction) error {
	return writeCloud(w, FromReconstruction(recon))
}

func writeCloud(w io.Writer, cloud modeling.Mesh) error {
	if err := ply.WriteBinary(w, cloud); err != nil {
		return errors.Wrap(err, "write ply")
	}
	return nil
}

// pointCount is the number of points that made it into cloud, which is less
// than the track count when listed tracks cannot be resolved.
func pointCount(cloud modeling.Mesh) int {
	return len(cloud.View().Float3Data[modeling.PositionAttribute])
}

// ToRapBinary wraps the PLY point cloud in a RAP binary named name.
func ToRapBinary(name string, recon sfm.Reconstruction) (rapio.Binary, error) {
	cloud := FromReconstruction(recon)

	buf := bytes.Buffer{}
	if err := writeCloud(&buf, cloud); err != nil {
		return rapio.Binary{}, err
	}

	return rapio.NewBinary(name, buf.Bytes(), metadata.NewBlock(map[string]metadata.Property{
		"points": metadata.NewIntProperty(pointCount(cloud)),
	})), nil
}
