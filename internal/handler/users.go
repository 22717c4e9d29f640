package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/model"
)

const (
	codeInvalidUserID = "INVALID_USER_ID"
	codeUserNotFound  = "USER_NOT_FOUND"
)

func invalidUserID(w http.ResponseWriter, r *http.Request) {
	api.BadRequest(w, codeInvalidUserID,
		fmt.Sprintf("ID '%s' is non-numeric or otherwise invalid", chi.URLParam(r, "id")))
}

func userNotFound(w http.ResponseWriter, id int64) {
	api.NotFound(w, codeUserNotFound,
		fmt.Sprintf("User with ID '%d' does not exist", id))
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.DB.ListUsers(r.Context())
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	api.WriteJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user := &model.User{
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	}
	if err := h.DB.CreateUser(r.Context(), user); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusCreated, user)
}

// FindUser handles GET /users/{id}.
func (h *Handler) FindUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		invalidUserID(w, r)
		return
	}

	user, err := h.DB.GetUser(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		userNotFound(w, id)
		return
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /users/{id}. Absent fields keep their stored values.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		invalidUserID(w, r)
		return
	}

	user, err := h.DB.GetUser(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		userNotFound(w, id)
		return
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}

	var body struct {
		Username  *string `json:"username"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Password  *string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if body.Username != nil {
		user.Username = *body.Username
	}
	if body.FirstName != nil {
		user.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		user.LastName = *body.LastName
	}
	if body.Password != nil {
		user.Password = *body.Password
	}

	if err := h.DB.UpdateUser(r.Context(), user); err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		invalidUserID(w, r)
		return
	}

	err := h.DB.DeleteUser(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		userNotFound(w, id)
		return
	}
	if err != nil {
		api.DigestError(err, r).Send(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.OK())
}
