package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fleapit/fleapit/internal/api"
	"github.com/fleapit/fleapit/internal/database"
	"github.com/fleapit/fleapit/internal/handler"
	"github.com/fleapit/fleapit/internal/library"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB     database.Database
	Router chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(db database.Database, files *library.Files, logger zerolog.Logger) *Server {
	h := handler.New(db, files, logger)

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(api.RequestID)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.FindUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.Post("/", h.CreateMedia)

		r.Get("/{id}", h.FindMedia)
		r.Delete("/{id}", h.DeleteMedia)
		r.Get("/{id}/info", h.FindMediaInfo)
		r.Get("/{id}/view", h.ViewMedia)
		r.Get("/{id}/download", h.DownloadMedia)

		r.Get("/{id}/metadata", h.FindMediaMetadata)
		r.Post("/{id}/metadata", h.UpdateMediaMetadata)
		r.Put("/{id}/metadata", h.ReplaceMediaMetadata)

		r.Get("/{id}/artwork", h.FindMediaArtwork)
		r.Post("/{id}/artwork", h.CreateMediaArtwork)
	})

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.ListCollections)
		r.Post("/", h.CreateCollection)

		// /top must be registered before the {id} wildcard so it is not
		// interpreted as id="top".
		r.Get("/top", h.ListTopLevelCollections)

		r.Get("/{id}", h.FindCollection)
		r.Get("/{id}/items", h.FindCollectionItems)
		r.Post("/{id}/collections", h.LinkCollection)

		r.Get("/{id}/metadata", h.FindCollectionMetadata)
		r.Post("/{id}/metadata", h.UpsertCollectionMetadata)
		r.Patch("/{id}/metadata", h.PatchCollectionMetadata)
	})

	r.Route("/artwork", func(r chi.Router) {
		r.Get("/", h.ListArtwork)
		r.Get("/{id}", h.FindArtwork)
		r.Get("/{id}/view", h.ViewArtwork)
		r.Delete("/{id}", h.DeleteArtwork)
	})

	return &Server{DB: db, Router: r}
}

// Health returns a simple health-check response.
func Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
