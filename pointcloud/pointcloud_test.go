package pointcloud_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector2"
	"github.com/EliCDavis/vector/vector3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recolude/sfm-export/pointcloud"
	"github.com/recolude/sfm-export/sfm"
)

func testModel(t *testing.T) *sfm.Model {
	t.Helper()
	model := sfm.NewModel()
	viewID, err := model.AddView("a.jpg", nil)
	require.NoError(t, err)

	first := model.AddTrack(vector3.New(1., 2., 3.), vector3.New(255., 0., 51.))
	model.AddHomogeneousTrack(4, 6, 8, 2, vector3.New(0., 255., 0.))
	require.NoError(t, model.AddObservation(viewID, first, vector2.New(1., 1.)))
	return model
}

func TestFromReconstruction(t *testing.T) {
	cloud := pointcloud.FromReconstruction(testModel(t))
	assert.Equal(t, modeling.PointTopology, cloud.Topology())

	view := cloud.View()
	positions := view.Float3Data[modeling.PositionAttribute]
	colors := view.Float3Data[modeling.ColorAttribute]
	require.Len(t, positions, 2)
	require.Len(t, colors, 2)

	assert.Equal(t, vector3.New(1., 2., 3.), positions[0])
	assert.Equal(t, vector3.New(2., 3., 4.), positions[1])
	assert.InDelta(t, 1, colors[0].X(), 1e-12)
	assert.InDelta(t, 0.2, colors[0].Z(), 1e-12)
	assert.InDelta(t, 1, colors[1].Y(), 1e-12)
}

func TestWritePLY(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, pointcloud.WritePLY(&buf, testModel(t)))

	header := buf.String()
	assert.True(t, strings.HasPrefix(header, "ply\n"))
	assert.Contains(t, header, "binary_little_endian")
	assert.Contains(t, header, "element vertex 2")

	mesh, err := ply.ReadMesh(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, modeling.PointTopology, mesh.Topology())

	positions := mesh.View().Float3Data[modeling.PositionAttribute]
	require.Len(t, positions, 2)
	assert.InDelta(t, 2, positions[1].X(), 1e-6)
	assert.InDelta(t, 4, positions[1].Z(), 1e-6)
}

func TestToRapBinary(t *testing.T) {
	_, err := pointcloud.ToRapBinary("points.ply", testModel(t))
	assert.NoError(t, err)
}

func TestMeshFileToRapBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dense.ply")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pointcloud.WritePLY(f, testModel(t)))
	require.NoError(t, f.Close())

	_, err = pointcloud.MeshFileToRapBinary(path, vector3.New(2., 2., 2.))
	assert.NoError(t, err)

	_, err = pointcloud.MeshFileToRapBinary(filepath.Join(dir, "missing.ply"), vector3.New(1., 1., 1.))
	assert.Error(t, err)
}
