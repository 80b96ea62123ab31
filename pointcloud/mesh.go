package pointcloud

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	"github.com/pkg/errors"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"
)

// MeshFileToRapBinary loads a PLY point cloud or triangle mesh, such as a
// densified reconstruction, scales it and wraps it as a RAP binary.
func MeshFileToRapBinary(plyFile string, scale vector3.Float64) (rapio.Binary, error) {
	f, err := os.Open(plyFile)
	if err != nil {
		return rapio.Binary{}, errors.Wrap(err, "open mesh")
	}
	defer f.Close()

	mesh, err := ply.ReadMesh(f)
	if err != nil {
		return rapio.Binary{}, errors.Wrapf(err, "read mesh %s", plyFile)
	}

	var parsedMesh modeling.Mesh
	switch mesh.Topology() {
	case modeling.PointTopology:
		view := mesh.View()
		parsedMesh = modeling.NewPointCloud(map[string][]vector3.Vector[float64]{
			modeling.PositionAttribute: view.Float3Data[modeling.PositionAttribute],
			modeling.ColorAttribute:    view.Float3Data[modeling.ColorAttribute],
		}, nil, nil, nil).
			Scale(vector3.Zero[float64](), scale)

	case modeling.TriangleTopology:
		parsedMesh = mesh.
			CopyFloat3Attribute(*mesh, modeling.PositionAttribute).
			CopyFloat3Attribute(*mesh, modeling.NormalAttribute).
			Scale(vector3.Zero[float64](), scale).
			FlipTriWinding()

	default:
		return rapio.Binary{}, errors.Errorf("unimplemented topology: %d", mesh.Topology())
	}

	meshData := bytes.Buffer{}
	if err := ply.WriteBinary(&meshData, parsedMesh); err != nil {
		return rapio.Binary{}, errors.Wrap(err, "write mesh")
	}
	return rapio.NewBinary(filepath.Base(plyFile), meshData.Bytes(), metadata.NewBlock(map[string]metadata.Property{
		"points": metadata.NewIntProperty(len(mesh.View().Indices)),
	})), nil
}
