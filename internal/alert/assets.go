package alert

import (
	"fmt"
	"os"

	"github.com/banshee-data/hazard.monitor/internal/hazard"
)

// AssetLibrary maps each zone label to a pre-rendered spoken-word clip.
// Generation and caching of the clips is a collaborator's job; the
// dispatcher only needs a playable file per label.
type AssetLibrary struct {
	paths map[hazard.Zone]string
}

// NewAssetLibrary validates that every referenced clip exists and returns
// the library. Missing files are an error up front rather than a playback
// surprise later.
func NewAssetLibrary(paths map[hazard.Zone]string) (*AssetLibrary, error) {
	for zone, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("audio asset for %v zone: %w", zone, err)
		}
	}
	copied := make(map[hazard.Zone]string, len(paths))
	for zone, path := range paths {
		copied[zone] = path
	}
	return &AssetLibrary{paths: copied}, nil
}

// Path returns the clip path for a zone. The second return is false when
// no asset is registered for that zone.
func (l *AssetLibrary) Path(zone hazard.Zone) (string, bool) {
	path, ok := l.paths[zone]
	return path, ok
}
