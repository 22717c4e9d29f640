package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/model"
)

const (
	codeInvalidArtworkID = "INVALID_ARTWORK_ID"
	codeArtworkNotFound  = "ARTWORK_NOT_FOUND"
)

func invalidArtworkID(w http.ResponseWriter, r *http.Request) {
	api.BadRequest(w, codeInvalidArtworkID,
		fmt.Sprintf("ID '%s' is non-numeric or otherwise invalid", chi.URLParam(r, "id")))
}

func artworkNotFound(w http.ResponseWriter, id int64) {
	api.NotFound(w, codeArtworkNotFound,
		fmt.Sprintf("Artwork with ID '%d' does not exist", id))
}

// findArtwork loads the artwork record for the {id} parameter, writing the
// 400 or 404 envelope itself when it returns nil.
func (h *Handler) findArtwork(w http.ResponseWriter, r *http.Request) *model.Artwork {
	id, ok := pathID(r)
	if !ok {
		invalidArtworkID(w, r)
		return nil
	}

	artwork, err := h.DB.GetArtwork(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		artworkNotFound(w, id)
		return nil
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return nil
	}
	return artwork
}

// ListArtwork handles GET /artwork. On-disk locations are scrubbed.
func (h *Handler) ListArtwork(w http.ResponseWriter, r *http.Request) {
	artwork, err := h.DB.ListArtwork(r.Context())
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}

	infos := make([]*model.ArtworkInfo, 0, len(artwork))
	for _, a := range artwork {
		infos = append(infos, a.Info())
	}
	api.WriteJSON(w, http.StatusOK, infos)
}

// FindArtwork handles GET /artwork/{id}.
func (h *Handler) FindArtwork(w http.ResponseWriter, r *http.Request) {
	artwork := h.findArtwork(w, r)
	if artwork == nil {
		return
	}
	api.WriteJSON(w, http.StatusOK, artwork.Info())
}

// ViewArtwork handles GET /artwork/{id}/view -- streams the artwork file.
func (h *Handler) ViewArtwork(w http.ResponseWriter, r *http.Request) {
	artwork := h.findArtwork(w, r)
	if artwork == nil {
		return
	}

	file, err := h.Files.Open(artwork.URL)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			artworkNotFound(w, artwork.ID)
			return
		}
		api.DigestError(err, r).Send(w)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	http.ServeContent(w, r, path.Base(artwork.URL), info.ModTime(), file)
}

// DeleteArtwork handles DELETE /artwork/{id}.
func (h *Handler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		invalidArtworkID(w, r)
		return
	}

	err := h.DB.DeleteArtwork(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		artworkNotFound(w, id)
		return
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}
