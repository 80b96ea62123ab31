package sfm

import (
	"fmt"
	"sort"
	"strings"
)

// Summary counts the contents of a reconstruction.
type Summary struct {
	Views        int
	Tracks       int
	Observations int
	Models       map[IntrinsicsModelType]int
}

func Summarize(recon Reconstruction) Summary {
	s := Summary{
		Views:  len(recon.ViewIDs()),
		Tracks: len(recon.TrackIDs()),
		Models: make(map[IntrinsicsModelType]int),
	}
	for _, id := range recon.ViewIDs() {
		view := recon.View(id)
		if view == nil {
			continue
		}
		s.Observations += view.NumFeatures()
		s.Models[view.Camera().IntrinsicsModelType()]++
	}
	return s
}

func (s Summary) String() string {
	models := make([]string, 0, len(s.Models))
	for t, n := range s.Models {
		models = append(models, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(models)
	return fmt.Sprintf("views=%d tracks=%d observations=%d intrinsics[%s]",
		s.Views, s.Tracks, s.Observations, strings.Join(models, " "))
}
