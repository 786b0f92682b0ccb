package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"microblog/internal/service"

	"github.com/go-chi/chi/v5"
)

const maxCreateBodyBytes = 1 << 20

type PostHandler struct {
	service *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// HandleList handles GET /api/posts. Accepts an optional limit query param;
// absent or non-positive means the whole collection, matching the service
// contract.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
			return
		}
		limit = n
	}

	posts, err := h.service.GetPosts(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postListResponse(posts))
}

// HandleGet handles GET /api/posts/{postID}.
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse(post))
}

// HandleCreate handles POST /api/posts/add. The body is an arbitrary JSON
// object expected to contain at least a parseable datetime.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}

	datetime, _ := body["datetime"].(string)
	post, err := h.service.CreatePost(r.Context(), service.CreatePostRequest{
		Datetime: datetime,
		Fields:   body,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse(post))
}

// HandleToggleLike handles PUT /api/posts/{postID}/like and responds with the
// resulting likes set.
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "postID"), CallerEmail(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likes": likes})
}

// HandleDelete handles DELETE /api/posts/{postID}. Author-only.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "postID"), CallerEmail(r)); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
