package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"microblog/internal/adapter/out/storage/inmemory"
	"microblog/internal/model"
	"microblog/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestRouter wires the real service and in-memory storage behind the REST
// surface. Tokens of the form "token-<name>" verify to "<name>@x.com".
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	verifier := NewMockTokenVerifier(ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), gomock.Any()).
		AnyTimes().
		DoAndReturn(func(_ context.Context, token string) (model.Identity, error) {
			if name, ok := strings.CutPrefix(token, "token-"); ok {
				return model.Identity{Email: name + "@x.com"}, nil
			}
			return model.Identity{}, errors.New("bad token")
		})

	svc := service.NewPostService(inmemory.NewPostStorage())
	return NewRouter(svc, NewAuthenticator(verifier))
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createPost(t *testing.T, h http.Handler, fields map[string]any) string {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/api/posts/add", "", fields)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreatePost_EchoesFieldsAndID(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/posts/add", "", map[string]any{
		"title":    "A",
		"datetime": "2024-01-01T00:00:00Z",
		"author":   map[string]any{"email": "a@x.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeBody[map[string]any](t, rec)
	require.NotEmpty(t, created["id"])
	require.Equal(t, "A", created["title"])

	// Fetching by the returned id yields the same id and an empty likes set.
	rec = doRequest(t, h, http.MethodGet, "/api/posts/"+created["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[map[string]any](t, rec)
	require.Equal(t, created["id"], got["id"])
	require.Equal(t, []any{}, got["likes"])
	require.Equal(t, "A", got["title"])
	require.NotEmpty(t, got["datetime"])
}

func TestCreatePost_RejectsBadPayloads(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing datetime", body: map[string]any{"title": "A"}},
		{name: "malformed datetime", body: map[string]any{"title": "A", "datetime": "not-a-date"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, h, http.MethodPost, "/api/posts/add", "", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "InvalidRequest", decodeBody[map[string]any](t, rec)["error"])
		})
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	oldID := createPost(t, h, map[string]any{"title": "old", "datetime": "2024-01-01T00:00:00Z"})
	newID := createPost(t, h, map[string]any{"title": "new", "datetime": "2024-06-01T00:00:00Z"})

	rec := doRequest(t, h, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	posts := decodeBody[[]map[string]any](t, rec)
	require.Len(t, posts, 2)
	require.Equal(t, newID, posts[0]["id"])
	require.Equal(t, oldID, posts[1]["id"])
}

func TestListPosts_BadLimit(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/posts?limit=zero", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_ReturnsWholeCollection(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	const n = 55
	for i := 0; i < n; i++ {
		createPost(t, h, map[string]any{
			"title":    fmt.Sprintf("post %d", i),
			"datetime": "2024-01-01T00:00:00Z",
		})
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "no limit", path: "/api/posts"},
		{name: "limit zero", path: "/api/posts?limit=0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, h, http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, decodeBody[[]map[string]any](t, rec), n)
		})
	}
}

func TestGetPost_NotFound(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/posts/no-such-id", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NotFound", decodeBody[map[string]any](t, rec)["error"])
}

func TestToggleLike_Involution(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	id := createPost(t, h, map[string]any{
		"title":    "A",
		"datetime": "2024-01-01T00:00:00Z",
		"author":   map[string]any{"email": "a@x.com"},
	})

	rec := doRequest(t, h, http.MethodPut, "/api/posts/"+id+"/like", "token-b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{"b@x.com"}, decodeBody[map[string]any](t, rec)["likes"])

	rec = doRequest(t, h, http.MethodPut, "/api/posts/"+id+"/like", "token-b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{}, decodeBody[map[string]any](t, rec)["likes"])
}

func TestToggleLike_RequiresAuth(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	id := createPost(t, h, map[string]any{"title": "A", "datetime": "2024-01-01T00:00:00Z"})

	rec := doRequest(t, h, http.MethodPut, "/api/posts/"+id+"/like", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleLike_PostNotFound(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPut, "/api/posts/no-such-id/like", "token-b", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost_AuthorOnly(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	id := createPost(t, h, map[string]any{
		"title":    "A",
		"datetime": "2024-01-01T00:00:00Z",
		"author":   map[string]any{"email": "a@x.com"},
	})

	// Anonymous callers never reach the service.
	rec := doRequest(t, h, http.MethodDelete, "/api/posts/"+id, "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A non-author is forbidden and the post survives.
	rec = doRequest(t, h, http.MethodDelete, "/api/posts/"+id, "token-c", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Forbidden", decodeBody[map[string]any](t, rec)["error"])

	rec = doRequest(t, h, http.MethodGet, "/api/posts/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The author deletes; the post is gone afterwards.
	rec = doRequest(t, h, http.MethodDelete, "/api/posts/"+id, "token-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/posts/"+id, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost_NotFound(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodDelete, "/api/posts/no-such-id", "token-a", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
