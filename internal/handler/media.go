package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/library"
	"github.com/fleapit/fleapit/internal/model"
)

const (
	codeInvalidMediaID = "INVALID_MEDIA_OBJECT_ID"
	codeMediaNotFound  = "MEDIA_OBJECT_NOT_FOUND"
)

func invalidMediaID(w http.ResponseWriter, r *http.Request) {
	api.BadRequest(w, codeInvalidMediaID,
		fmt.Sprintf("ID '%s' is non-numeric or otherwise invalid", chi.URLParam(r, "id")))
}

func mediaNotFound(w http.ResponseWriter, id int64) {
	api.NotFound(w, codeMediaNotFound,
		fmt.Sprintf("Media object with ID '%d' does not exist", id))
}

// findMedia loads the media record for the {id} parameter, writing the 400 or
// 404 envelope itself when it returns nil.
func (h *Handler) findMedia(w http.ResponseWriter, r *http.Request) *model.Media {
	id, ok := pathID(r)
	if !ok {
		invalidMediaID(w, r)
		return nil
	}

	media, err := h.DB.GetMedia(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		mediaNotFound(w, id)
		return nil
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return nil
	}
	return media
}

// ListMedia handles GET /media. limit and offset query parameters are passed
// straight through to the store.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	media, err := h.DB.ListMedia(r.Context(), limit, offset)
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	if media == nil {
		media = []*model.Media{}
	}
	api.WriteJSON(w, http.StatusOK, media)
}

// CreateMedia handles POST /media.
func (h *Handler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		URL        string `json:"url"`
		Checksum   string `json:"checksum"`
		Collection int64  `json:"collection"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	media := &model.Media{
		Name:         body.Name,
		URL:          body.URL,
		Checksum:     body.Checksum,
		CollectionID: body.Collection,
	}
	if err := h.DB.CreateMedia(r.Context(), media); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusCreated, media)
}

// FindMedia handles GET /media/{id} -- streams the media file with a
// Content-Disposition filename resolved through the name fallback chain.
func (h *Handler) FindMedia(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}
	h.serveMedia(w, r, media, "inline")
}

// ViewMedia handles GET /media/{id}/view.
func (h *Handler) ViewMedia(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}
	h.serveMedia(w, r, media, "inline")
}

// DownloadMedia handles GET /media/{id}/download.
func (h *Handler) DownloadMedia(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}
	h.serveMedia(w, r, media, "attachment")
}

// serveMedia streams the file behind media with the given disposition. The
// filename comes from the metadata/record/URL fallback chain.
func (h *Handler) serveMedia(w http.ResponseWriter, r *http.Request, media *model.Media, disposition string) {
	meta, err := h.MediaMeta.Fetch(r.Context(), media.ID)
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	name := library.MediaName(media, meta)

	file, err := h.Files.Open(media.URL)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			mediaNotFound(w, media.ID)
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

	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

// FindMediaInfo handles GET /media/{id}/info -- the record with the on-disk
// location scrubbed.
func (h *Handler) FindMediaInfo(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}
	api.WriteJSON(w, http.StatusOK, media.Info())
}

// DeleteMedia handles DELETE /media/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		invalidMediaID(w, r)
		return
	}

	err := h.DB.DeleteMedia(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		mediaNotFound(w, id)
		return
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}

// FindMediaMetadata handles GET /media/{id}/metadata -- all sparse rows
// folded into a flat key/value object.
func (h *Handler) FindMediaMetadata(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}

	meta, err := h.MediaMeta.Fetch(r.Context(), media.ID)
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, meta)
}

// UpdateMediaMetadata handles POST /media/{id}/metadata. Null values delete
// their keys; everything else is upserted.
func (h *Handler) UpdateMediaMetadata(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}

	var bag map[string]any
	if !decodeBody(w, r, &bag) {
		return
	}

	if err := h.MediaMeta.Update(r.Context(), media.ID, bag); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}

// ReplaceMediaMetadata handles PUT /media/{id}/metadata. All existing rows
// are removed and the non-null keys of the body become the new rows.
func (h *Handler) ReplaceMediaMetadata(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}

	var bag map[string]any
	if !decodeBody(w, r, &bag) {
		return
	}

	if err := h.MediaMeta.Replace(r.Context(), media.ID, bag); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}

// FindMediaArtwork handles GET /media/{id}/artwork.
func (h *Handler) FindMediaArtwork(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}

	artwork, err := h.DB.ListArtworkByMedia(r.Context(), media.ID)
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

// CreateMediaArtwork handles POST /media/{id}/artwork. Uniqueness violations
// over (mediaId, format, url) or (mediaId, format, tag) surface as 400s.
func (h *Handler) CreateMediaArtwork(w http.ResponseWriter, r *http.Request) {
	media := h.findMedia(w, r)
	if media == nil {
		return
	}

	var body struct {
		Format string `json:"format"`
		URL    string `json:"url"`
		Tag    string `json:"tag"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	artwork := &model.Artwork{
		MediaID: media.ID,
		Format:  body.Format,
		URL:     body.URL,
		Tag:     body.Tag,
	}
	if err := h.DB.CreateArtwork(r.Context(), artwork); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusCreated, artwork)
}
