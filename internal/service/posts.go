package service

import (
	"context"
	"fmt"
	"maps"

	"microblog/internal/model"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const MaxPostsLimit = 250

//go:generate mockgen -source=posts.go -destination=./post_storage_mock.go -package=service microblog/internal/service PostStorage
type PostStorage interface {
	CreatePost(ctx context.Context, post model.Post) (model.Post, error)
	GetPostByID(ctx context.Context, postID string) (model.Post, error)
	// GetPosts returns posts newest first. A limit of 0 means no limit.
	GetPosts(ctx context.Context, limit int) ([]model.Post, error)
	ToggleLike(ctx context.Context, postID, email string) ([]string, error)
	GetPostAuthorEmail(ctx context.Context, postID string) (string, error)
	DeletePost(ctx context.Context, postID string) error
}

type PostService struct {
	postStorage PostStorage
}

func NewPostService(postStorage PostStorage) *PostService {
	return &PostService{
		postStorage: postStorage,
	}
}

// CreatePost validates the caller payload and writes the post in a single
// insert. The id is generated here, not by the store, so the document never
// exists without one; it is also duplicated into the stored field map.
func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (model.Post, error) {
	if err := validator.New().Struct(req); err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	createdAt, err := dateparse.ParseAny(req.Datetime)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: unparseable datetime %q", ErrInvalidRequest, req.Datetime)
	}

	id := uuid.NewString()

	fields := maps.Clone(req.Fields)
	if fields == nil {
		fields = make(map[string]any)
	}
	delete(fields, "datetime")
	fields["id"] = id

	return s.postStorage.CreatePost(ctx, model.Post{
		ID:          id,
		AuthorEmail: authorEmail(fields),
		CreatedAt:   createdAt,
		Likes:       []string{},
		Fields:      fields,
	})
}

func (s *PostService) GetPostByID(ctx context.Context, postID string) (model.Post, error) {
	if postID == "" {
		return model.Post{}, fmt.Errorf("postID is required: %w", ErrInvalidRequest)
	}
	return s.postStorage.GetPostByID(ctx, postID)
}

// GetPosts returns posts newest first. A non-positive limit returns the whole
// collection; an explicit limit is capped at MaxPostsLimit.
func (s *PostService) GetPosts(ctx context.Context, limit int) ([]model.Post, error) {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxPostsLimit {
		limit = MaxPostsLimit
	}
	return s.postStorage.GetPosts(ctx, limit)
}

// ToggleLike flips membership of the caller email in the post's likes set and
// returns the resulting set. Two calls restore the original set. Anonymous
// callers are rejected.
func (s *PostService) ToggleLike(ctx context.Context, postID, email string) ([]string, error) {
	if postID == "" {
		return nil, fmt.Errorf("postID is required: %w", ErrInvalidRequest)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: caller identity required to like a post", ErrUnauthorized)
	}
	return s.postStorage.ToggleLike(ctx, postID, email)
}

// DeletePost permanently removes a post. Only the post's author may delete it.
func (s *PostService) DeletePost(ctx context.Context, postID, email string) error {
	if postID == "" {
		return fmt.Errorf("postID is required: %w", ErrInvalidRequest)
	}
	if email == "" {
		return fmt.Errorf("%w: caller identity required to delete a post", ErrUnauthorized)
	}

	owner, err := s.postStorage.GetPostAuthorEmail(ctx, postID)
	if err != nil {
		return err
	}
	if owner != email {
		return fmt.Errorf("%w: not the post author", ErrForbidden)
	}
	return s.postStorage.DeletePost(ctx, postID)
}
