package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

// PostStorage persists posts in a single table: extracted columns for id,
// author_email, created_at and likes, and a jsonb doc with the caller fields.
type PostStorage struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostStorage(pool *pgxpool.Pool, getter *trmpgx.CtxGetter) *PostStorage {
	return &PostStorage{
		pool:   pool,
		getter: getter,
	}
}

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	doc, err := json.Marshal(in.Fields)
	if err != nil {
		return model.Post{}, fmt.Errorf("marshal post doc: %w", err)
	}

	query, args, err := createPostQuery(in, doc)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Post{}, fmt.Errorf("exec error creating post: %w", err)
	}
	return out, nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID string) (model.Post, error) {
	query, args, err := getPostByIDQuery(postID)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec select post by id: %w", err)
	}
	return out, nil
}

// GetPosts returns posts newest first; a limit of 0 selects the whole table.
func (s *PostStorage) GetPosts(ctx context.Context, limit int) ([]model.Post, error) {
	query, args, err := getPostsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec error selecting posts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// ToggleLike flips membership of email in the likes array in one UPDATE, so
// concurrent toggles by different users cannot overwrite each other.
func (s *PostStorage) ToggleLike(ctx context.Context, postID, email string) ([]string, error) {
	query, args, err := toggleLikeQuery(postID, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)

	var likes []string
	if err := tr.QueryRow(ctx, query, args...).Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("exec update likes: %w", err)
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

func (s *PostStorage) GetPostAuthorEmail(ctx context.Context, postID string) (string, error) {
	query, args, err := getPostAuthorEmailQuery(postID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)

	var email string
	if err := tr.QueryRow(ctx, query, args...).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", service.ErrNotFound
		}
		return "", fmt.Errorf("exec select author_email: %w", err)
	}
	return email, nil
}

func (s *PostStorage) DeletePost(ctx context.Context, postID string) error {
	query, args, err := deletePostQuery(postID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)

	var dummy string
	if err := tr.QueryRow(ctx, query, args...).Scan(&dummy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrNotFound
		}
		return fmt.Errorf("exec delete post: %w", err)
	}
	return nil
}

func postColumns() []string {
	return []string{
		tableinfo.PostIDColumn,
		tableinfo.PostAuthorEmailColumn,
		tableinfo.PostCreatedAtColumn,
		tableinfo.PostLikesColumn,
		tableinfo.PostDocColumn,
	}
}

func createPostQuery(in model.Post, doc []byte) (string, []any, error) {
	return sq.
		Insert(tableinfo.PostsTableName).
		Columns(postColumns()...).
		Values(in.ID, in.AuthorEmail, in.CreatedAt, in.Likes, doc).
		Suffix("RETURNING " + strings.Join(postColumns(), ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func getPostByIDQuery(postID string) (string, []any, error) {
	return sq.
		Select(postColumns()...).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func getPostsQuery(limit int) (string, []any, error) {
	qb := sq.
		Select(postColumns()...).
		From(tableinfo.PostsTableName).
		OrderBy(
			tableinfo.PostCreatedAtColumn+" DESC",
			tableinfo.PostIDColumn+" DESC",
		).
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	return qb.ToSql()
}

func toggleLikeQuery(postID, email string) (string, []any, error) {
	return sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostLikesColumn, sq.Expr(
			"CASE WHEN ? = ANY(likes) THEN array_remove(likes, ?) ELSE array_append(likes, ?) END",
			email, email, email,
		)).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix("RETURNING " + tableinfo.PostLikesColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func getPostAuthorEmailQuery(postID string) (string, []any, error) {
	return sq.
		Select(tableinfo.PostAuthorEmailColumn).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func deletePostQuery(postID string) (string, []any, error) {
	return sq.
		Delete(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix("RETURNING " + tableinfo.PostIDColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func scanPost(row pgx.Row) (model.Post, error) {
	var (
		out model.Post
		doc []byte
	)
	if err := row.Scan(&out.ID, &out.AuthorEmail, &out.CreatedAt, &out.Likes, &doc); err != nil {
		return model.Post{}, err
	}
	if out.Likes == nil {
		out.Likes = []string{}
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &out.Fields); err != nil {
			return model.Post{}, fmt.Errorf("unmarshal post doc: %w", err)
		}
	}
	return out, nil
}
