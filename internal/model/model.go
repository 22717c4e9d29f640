package model

import "time"

// User represents a library user account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Media represents a single media object in the library. URL and checksum are
// immutable once created; there is no update path.
type Media struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	URL          string    `json:"url"`
	Checksum     string    `json:"checksum"`
	CollectionID int64     `json:"collection"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MediaInfo is the outward-facing shape of a Media record with the on-disk
// location withheld.
type MediaInfo struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	Checksum     string    `json:"checksum"`
	CollectionID int64     `json:"collection"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Info returns the scrubbed view of m.
func (m *Media) Info() *MediaInfo {
	return &MediaInfo{
		ID:           m.ID,
		Name:         m.Name,
		Checksum:     m.Checksum,
		CollectionID: m.CollectionID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Collection groups media objects. A collection may have a parent collection,
// forming a tree; additional parent/child edges live in collection_links.
type Collection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parentCollection"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Artwork represents a piece of artwork attached to a media object, such as a
// cover image or thumbnail source file.
type Artwork struct {
	ID        int64     `json:"id"`
	MediaID   int64     `json:"mediaId"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArtworkInfo is the outward-facing shape of an Artwork record with the
// on-disk location withheld.
type ArtworkInfo struct {
	ID        int64     `json:"id"`
	MediaID   int64     `json:"mediaId"`
	Format    string    `json:"format"`
	Tag       string    `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Info returns the scrubbed view of a.
func (a *Artwork) Info() *ArtworkInfo {
	return &ArtworkInfo{
		ID:        a.ID,
		MediaID:   a.MediaID,
		Format:    a.Format,
		Tag:       a.Tag,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// MetadataRow is one (owner, key) pair in the sparse metadata form.
type MetadataRow struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"ownerId"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}
