package inmemory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"microblog/internal/model"
	"microblog/internal/service"
)

// PostStorage is a map-backed store used for local development and tests.
type PostStorage struct {
	mu   sync.RWMutex
	byID map[string]model.Post
}

func NewPostStorage() *PostStorage {
	return &PostStorage{
		byID: make(map[string]model.Post),
	}
}

func (s *PostStorage) CreatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	s.byID[in.ID] = clonePost(in)
	return in, nil
}

func (s *PostStorage) GetPostByID(_ context.Context, postID string) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.byID[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *PostStorage) GetPosts(_ context.Context, limit int) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PostStorage) ToggleLike(_ context.Context, postID, email string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[postID]
	if !ok {
		return nil, service.ErrNotFound
	}

	if p.HasLike(email) {
		p.Likes = slices.DeleteFunc(slices.Clone(p.Likes), func(e string) bool {
			return e == email
		})
	} else {
		p.Likes = append(slices.Clone(p.Likes), email)
	}
	s.byID[postID] = p
	return slices.Clone(p.Likes), nil
}

func (s *PostStorage) GetPostAuthorEmail(_ context.Context, postID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[postID]
	if !ok {
		return "", service.ErrNotFound
	}
	return p.AuthorEmail, nil
}

func (s *PostStorage) DeletePost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[postID]; !ok {
		return service.ErrNotFound
	}
	delete(s.byID, postID)
	return nil
}

func clonePost(p model.Post) model.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Fields = maps.Clone(p.Fields)
	return p
}
