package database

import (
	"context"

	"github.com/fleapit/fleapit/internal/model"
)

// Database defines the persistence interface for all domain objects.
//
// Write operations surface typed constraint errors (NotNullError,
// ValidationError, UniqueConstraintError) so callers can classify them;
// lookups by id return ErrNotFound when no record matches.
type Database interface {
	// Users
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Media
	CreateMedia(ctx context.Context, m *model.Media) error
	GetMedia(ctx context.Context, id int64) (*model.Media, error)
	ListMedia(ctx context.Context, limit, offset int) ([]*model.Media, error)
	ListMediaByCollection(ctx context.Context, collectionID int64) ([]*model.Media, error)
	DeleteMedia(ctx context.Context, id int64) error

	// Collections
	CreateCollection(ctx context.Context, c *model.Collection) error
	GetCollection(ctx context.Context, id int64) (*model.Collection, error)
	ListCollections(ctx context.Context) ([]*model.Collection, error)
	ListTopLevelCollections(ctx context.Context) ([]*model.Collection, error)
	ListChildCollections(ctx context.Context, parentID int64) ([]*model.Collection, error)
	LinkCollections(ctx context.Context, parentID, childID int64) error

	// Artwork
	CreateArtwork(ctx context.Context, a *model.Artwork) error
	GetArtwork(ctx context.Context, id int64) (*model.Artwork, error)
	ListArtwork(ctx context.Context) ([]*model.Artwork, error)
	ListArtworkByMedia(ctx context.Context, mediaID int64) ([]*model.Artwork, error)
	DeleteArtwork(ctx context.Context, id int64) error

	// Sparse media metadata, one row per (media, key)
	ListMediaMetadata(ctx context.Context, mediaID int64) ([]*model.MetadataRow, error)
	UpsertMediaMetadata(ctx context.Context, mediaID int64, key, value string) error
	CreateMediaMetadata(ctx context.Context, mediaID int64, key, value string) error
	DeleteMediaMetadata(ctx context.Context, mediaID int64, key string) error
	DeleteAllMediaMetadata(ctx context.Context, mediaID int64) error

	// Blob collection metadata, one JSON object per collection.
	// GetCollectionMetadata returns (nil, nil) when no row exists.
	GetCollectionMetadata(ctx context.Context, collectionID int64) (map[string]any, error)
	SetCollectionMetadata(ctx context.Context, collectionID int64, meta map[string]any) error
	CountCollectionMetadata(ctx context.Context, collectionID int64) (int, error)

	Close() error
}
