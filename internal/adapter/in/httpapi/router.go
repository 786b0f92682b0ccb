package httpapi

import (
	"net/http"

	"microblog/internal/service"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the REST surface.
func NewRouter(svc *service.PostService, auth *Authenticator) http.Handler {
	h := NewPostHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/posts", func(r chi.Router) {
		r.Use(auth.WithIdentity)

		r.Get("/", h.HandleList)
		r.Post("/add", h.HandleCreate)
		r.Get("/{postID}", h.HandleGet)
		r.With(RequireIdentity).Put("/{postID}/like", h.HandleToggleLike)
		r.With(RequireIdentity).Delete("/{postID}", h.HandleDelete)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
