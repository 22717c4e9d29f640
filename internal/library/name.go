// Package library derives display values from media records and resolves
// their stored URLs to files on disk.
package library

import (
	"path"

	"github.com/fleapit/fleapit/internal/model"
)

// MediaName returns the most appropriate display name for a media object.
//
// If the media's metadata carries a "name" entry, that value wins. Otherwise
// the record's own name field is used if set. Finally the filename derived
// from the record's URL is used. Pure function of its inputs; meta may be nil
// when no metadata exists.
func MediaName(m *model.Media, meta map[string]string) string {
	if name, ok := meta["name"]; ok && name != "" {
		return name
	}
	if m.Name != "" {
		return m.Name
	}
	return path.Base(m.URL)
}
