package sfm

import (
	"slices"

	"github.com/EliCDavis/vector/vector2"
	"github.com/EliCDavis/vector/vector3"
	"github.com/pkg/errors"
)

var (
	ErrUnknownView          = errors.New("unknown view")
	ErrUnknownTrack         = errors.New("unknown track")
	ErrDuplicateView        = errors.New("duplicate view name")
	ErrDuplicateObservation = errors.New("duplicate observation")
)

// Reconstruction is the read-only view of a scene that exporters consume.
// ViewIDs and TrackIDs define the iteration order of the scene.
type Reconstruction interface {
	ViewIDs() []ViewID
	TrackIDs() []TrackID
	View(id ViewID) *View
	Track(id TrackID) *Track
}

// Model is an in-memory Reconstruction. Views and tracks iterate in the
// order they were added.
type Model struct {
	viewIDs  []ViewID
	trackIDs []TrackID
	views    map[ViewID]*View
	tracks   map[TrackID]*Track
	names    map[string]ViewID

	nextViewID  ViewID
	nextTrackID TrackID
}

func NewModel() *Model {
	return &Model{
		viewIDs:  make([]ViewID, 0),
		trackIDs: make([]TrackID, 0),
		views:    make(map[ViewID]*View),
		tracks:   make(map[TrackID]*Track),
		names:    make(map[string]ViewID),
	}
}

// ViewIDs returns a copy of the view ids in insertion order.
func (m *Model) ViewIDs() []ViewID {
	return slices.Clone(m.viewIDs)
}

// TrackIDs returns a copy of the track ids in insertion order.
func (m *Model) TrackIDs() []TrackID {
	return slices.Clone(m.trackIDs)
}

// View returns nil for ids that are not part of the model.
func (m *Model) View(id ViewID) *View {
	return m.views[id]
}

// Track returns nil for ids that are not part of the model.
func (m *Model) Track(id TrackID) *Track {
	return m.tracks[id]
}

func (m *Model) NumViews() int {
	return len(m.viewIDs)
}

func (m *Model) NumTracks() int {
	return len(m.trackIDs)
}

// ViewIDByName looks up a view by its image name.
func (m *Model) ViewIDByName(name string) (ViewID, bool) {
	id, ok := m.names[name]
	return id, ok
}

// AddView adds a view and returns its id. View names are unique.
func (m *Model) AddView(name string, camera *Camera) (ViewID, error) {
	if _, ok := m.names[name]; ok {
		return 0, errors.Wrapf(ErrDuplicateView, "view %q", name)
	}
	id := m.nextViewID
	m.nextViewID++

	m.views[id] = NewView(name, camera)
	m.viewIDs = append(m.viewIDs, id)
	m.names[name] = id
	return id, nil
}

// AddTrack adds a track at the Euclidean point and returns its id.
func (m *Model) AddTrack(point vector3.Float64, color vector3.Float64) TrackID {
	return m.AddHomogeneousTrack(point.X(), point.Y(), point.Z(), 1, color)
}

// AddHomogeneousTrack adds a track at the homogeneous point (x, y, z, w).
func (m *Model) AddHomogeneousTrack(x, y, z, w float64, color vector3.Float64) TrackID {
	id := m.nextTrackID
	m.nextTrackID++

	m.tracks[id] = NewTrack(x, y, z, w, color)
	m.trackIDs = append(m.trackIDs, id)
	return id
}

// AddObservation records that the view saw the track at feature. The view's
// feature list and the track's view list are updated together.
func (m *Model) AddObservation(viewID ViewID, trackID TrackID, feature vector2.Float64) error {
	view, ok := m.views[viewID]
	if !ok {
		return errors.Wrapf(ErrUnknownView, "view %d", viewID)
	}
	track, ok := m.tracks[trackID]
	if !ok {
		return errors.Wrapf(ErrUnknownTrack, "track %d", trackID)
	}
	if _, seen := view.Feature(trackID); seen {
		return errors.Wrapf(ErrDuplicateObservation, "view %d track %d", viewID, trackID)
	}
	view.AddFeature(trackID, feature)
	track.AddView(viewID)
	return nil
}
