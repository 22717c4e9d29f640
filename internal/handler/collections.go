package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/model"
)

const (
	codeInvalidCollectionID = "INVALID_COLLECTION_ID"
	codeCollectionNotFound  = "COLLECTION_NOT_FOUND"
)

func invalidCollectionID(w http.ResponseWriter, r *http.Request) {
	api.BadRequest(w, codeInvalidCollectionID,
		fmt.Sprintf("ID '%s' is non-numeric or otherwise invalid", chi.URLParam(r, "id")))
}

func collectionNotFound(w http.ResponseWriter, id int64) {
	api.NotFound(w, codeCollectionNotFound,
		fmt.Sprintf("Collection with ID '%d' does not exist", id))
}

// findCollection loads the collection for the {id} parameter, writing the
// 400 or 404 envelope itself when it returns nil.
func (h *Handler) findCollection(w http.ResponseWriter, r *http.Request) *model.Collection {
	id, ok := pathID(r)
	if !ok {
		invalidCollectionID(w, r)
		return nil
	}

	collection, err := h.DB.GetCollection(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		collectionNotFound(w, id)
		return nil
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return nil
	}
	return collection
}

// ListCollections handles GET /collections.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.DB.ListCollections(r.Context())
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	if collections == nil {
		collections = []*model.Collection{}
	}
	api.WriteJSON(w, http.StatusOK, collections)
}

// ListTopLevelCollections handles GET /collections/top.
func (h *Handler) ListTopLevelCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.DB.ListTopLevelCollections(r.Context())
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	if collections == nil {
		collections = []*model.Collection{}
	}
	api.WriteJSON(w, http.StatusOK, collections)
}

// CreateCollection handles POST /collections.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ParentID *int64 `json:"parentCollection"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	collection := &model.Collection{
		Name:     body.Name,
		ParentID: body.ParentID,
	}
	if err := h.DB.CreateCollection(r.Context(), collection); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusCreated, collection)
}

// FindCollection handles GET /collections/{id}.
func (h *Handler) FindCollection(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}
	api.WriteJSON(w, http.StatusOK, collection)
}

// collectionItems is the response shape for GET /collections/{id}/items.
type collectionItems struct {
	Objects     []*model.Media      `json:"objects"`
	Collections []*model.Collection `json:"collections"`
}

// FindCollectionItems handles GET /collections/{id}/items. Member media and
// child collections are fetched concurrently and joined before responding.
func (h *Handler) FindCollectionItems(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}

	items := collectionItems{
		Objects:     []*model.Media{},
		Collections: []*model.Collection{},
	}

	var g errgroup.Group
	g.Go(func() error {
		media, err := h.DB.ListMediaByCollection(r.Context(), collection.ID)
		if err != nil {
			return err
		}
		if media != nil {
			items.Objects = media
		}
		return nil
	})
	g.Go(func() error {
		children, err := h.DB.ListChildCollections(r.Context(), collection.ID)
		if err != nil {
			return err
		}
		if children != nil {
			items.Collections = children
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, items)
}

// LinkCollection handles POST /collections/{id}/collections -- adds a
// parent/child edge. Linking a collection to itself is a validation error.
func (h *Handler) LinkCollection(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}

	var body struct {
		ChildID int64 `json:"childId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if _, err := h.DB.GetCollection(r.Context(), body.ChildID); errors.Is(err, database.ErrNotFound) {
		collectionNotFound(w, body.ChildID)
		return
	} else if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}

	if err := h.DB.LinkCollections(r.Context(), collection.ID, body.ChildID); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusCreated, api.OK())
}

// FindCollectionMetadata handles GET /collections/{id}/metadata -- the blob
// object, or {} when none is stored.
func (h *Handler) FindCollectionMetadata(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}

	meta, err := h.CollectionMeta.Find(r.Context(), collection.ID)
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, meta)
}

// UpsertCollectionMetadata handles POST /collections/{id}/metadata -- full
// replace of the stored object. 201 when the collection had no metadata row
// before, 200 otherwise.
func (h *Handler) UpsertCollectionMetadata(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}

	var obj map[string]any
	if !decodeBody(w, r, &obj) {
		return
	}

	created, err := h.CollectionMeta.Upsert(r.Context(), collection.ID, obj)
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	api.WriteJSON(w, status, api.OK())
}

// PatchCollectionMetadata handles PATCH /collections/{id}/metadata --
// shallow-merges the body over the stored object.
func (h *Handler) PatchCollectionMetadata(w http.ResponseWriter, r *http.Request) {
	collection := h.findCollection(w, r)
	if collection == nil {
		return
	}

	var obj map[string]any
	if !decodeBody(w, r, &obj) {
		return
	}

	if err := h.CollectionMeta.Patch(r.Context(), collection.ID, obj); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}
