package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/library"
	"github.com/fleapit/fleapit/internal/metadata"
	"github.com/fleapit/fleapit/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	DB             database.Database
	Files          *library.Files
	MediaMeta      *metadata.Sparse
	CollectionMeta *metadata.Blob
	Logger         zerolog.Logger
}

// New wires a Handler over the given database and file resolver. Media
// metadata uses the sparse form; collection metadata uses the blob form.
func New(db database.Database, files *library.Files, logger zerolog.Logger) *Handler {
	return &Handler{
		DB:             db,
		Files:          files,
		MediaMeta:      metadata.NewSparse(mediaMetadataStore{db}),
		CollectionMeta: metadata.NewBlob(collectionMetadataStore{db}),
		Logger:         logger,
	}
}

// mediaMetadataStore adapts Database to the sparse metadata store surface.
type mediaMetadataStore struct {
	db database.Database
}

func (s mediaMetadataStore) List(ctx context.Context, ownerID int64) ([]*model.MetadataRow, error) {
	return s.db.ListMediaMetadata(ctx, ownerID)
}

func (s mediaMetadataStore) Upsert(ctx context.Context, ownerID int64, key, value string) error {
	return s.db.UpsertMediaMetadata(ctx, ownerID, key, value)
}

func (s mediaMetadataStore) Create(ctx context.Context, ownerID int64, key, value string) error {
	return s.db.CreateMediaMetadata(ctx, ownerID, key, value)
}

func (s mediaMetadataStore) Delete(ctx context.Context, ownerID int64, key string) error {
	return s.db.DeleteMediaMetadata(ctx, ownerID, key)
}

func (s mediaMetadataStore) DeleteAll(ctx context.Context, ownerID int64) error {
	return s.db.DeleteAllMediaMetadata(ctx, ownerID)
}

// collectionMetadataStore adapts Database to the blob metadata store surface.
type collectionMetadataStore struct {
	db database.Database
}

func (s collectionMetadataStore) Get(ctx context.Context, ownerID int64) (map[string]any, error) {
	return s.db.GetCollectionMetadata(ctx, ownerID)
}

func (s collectionMetadataStore) Set(ctx context.Context, ownerID int64, obj map[string]any) error {
	return s.db.SetCollectionMetadata(ctx, ownerID, obj)
}

func (s collectionMetadataStore) Count(ctx context.Context, ownerID int64) (int, error) {
	return s.db.CountCollectionMetadata(ctx, ownerID)
}

// pathID parses the {id} URL parameter. The second return is false when the
// parameter is non-numeric or otherwise invalid.
func pathID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into target, writing a 400 envelope
// and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		api.BadRequest(w, api.CodeValidation, "request body must be valid JSON")
		return false
	}
	return true
}
