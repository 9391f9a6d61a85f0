package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/dfryer1193/quill/shared/db"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db:  db,
		now: time.Now,
	}
}

const postColumns = `id, slug, title, author, tags, body, creation_time, change_time, publish`

const insertPostQuery = `
	INSERT INTO posts (id, slug, title, author, tags, body, creation_time, publish)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// Create inserts a new post; a title whose slug is taken fails with domain.ErrDuplicateSlug
func (r *SQLitePostRepository) Create(ctx context.Context, fields domain.PostFields) (string, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return "", fmt.Errorf("post title cannot be empty")
	}

	id := uuid.NewString()
	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, insertPostQuery,
		id,
		domain.Slugify(fields.Title),
		fields.Title,
		fields.Author,
		fields.Tags,
		fields.Body,
		r.now().Unix(),
		fields.Publish,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.NewStoreError("create post", domain.ErrDuplicateSlug)
		}
		return "", domain.NewStoreError("create post", fmt.Errorf("failed to insert post: %w", err))
	}

	return id, nil
}

const listPublishedPostsQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE publish = 1
	ORDER BY creation_time DESC, rowid DESC
`

// FindPublished retrieves published posts ordered by creation time descending
func (r *SQLitePostRepository) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	posts, err := r.queryPosts(ctx, listPublishedPostsQuery)
	if err != nil {
		return nil, domain.NewStoreError("list published posts", err)
	}
	return posts, nil
}

const listPostsQuery = `
	SELECT ` + postColumns + `
	FROM posts
	ORDER BY creation_time ASC, rowid ASC
`

// FindAll retrieves every post in insertion order
func (r *SQLitePostRepository) FindAll(ctx context.Context) ([]*domain.Post, error) {
	posts, err := r.queryPosts(ctx, listPostsQuery)
	if err != nil {
		return nil, domain.NewStoreError("list posts", err)
	}
	return posts, nil
}

const getPostBySlugQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE (slug = ? OR title = ?)
`

const publishedOnlyClause = ` AND publish = 1`

const firstCreatedClause = ` ORDER BY creation_time ASC, rowid ASC LIMIT 1`

// FindBySlug retrieves a post by its slug, or by the title the slug was derived from
func (r *SQLitePostRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}

	query := getPostBySlugQuery
	if publishedOnly {
		query += publishedOnlyClause
	}
	query += firstCreatedClause

	var row postRow
	err := row.scan(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, slug, domain.TitleFromSlug(slug)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post not found: %s: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewStoreError("get post", fmt.Errorf("failed to get post: %w", err))
	}

	return row.toDomain(), nil
}

const postExistsQuery = `SELECT 1 FROM posts WHERE id = ?`

const updatePostQuery = `
	UPDATE posts
	SET slug = ?, title = ?, tags = ?, body = ?, publish = ?, change_time = ?
	WHERE id = ?
`

// Update sets the editable fields and change time of a post; creation time is never touched
func (r *SQLitePostRepository) Update(ctx context.Context, id string, update domain.PostUpdate) error {
	if id == "" {
		return fmt.Errorf("post ID cannot be empty")
	}
	if strings.TrimSpace(update.Title) == "" {
		return fmt.Errorf("post title cannot be empty")
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var exists int
		err := executor.QueryRowContext(txCtx, postExistsQuery, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post not found: %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return domain.NewStoreError("update post", fmt.Errorf("failed to look up post: %w", err))
		}

		_, err = executor.ExecContext(txCtx, updatePostQuery,
			domain.Slugify(update.Title),
			update.Title,
			update.Tags,
			update.Body,
			update.Publish,
			r.now().Unix(),
			id,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.NewStoreError("update post", domain.ErrDuplicateSlug)
			}
			return domain.NewStoreError("update post", fmt.Errorf("failed to update post: %w", err))
		}

		return nil
	})
}

const distinctTagsQuery = `SELECT DISTINCT tags FROM posts`

const distinctPublishedTagsQuery = `SELECT DISTINCT tags FROM posts WHERE publish = 1`

// DistinctTagStrings returns every distinct raw tag string, optionally limited to published posts
func (r *SQLitePostRepository) DistinctTagStrings(ctx context.Context, publishedOnly bool) ([]string, error) {
	query := distinctTagsQuery
	if publishedOnly {
		query = distinctPublishedTagsQuery
	}

	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query+` ORDER BY tags`)
	if err != nil {
		return nil, domain.NewStoreError("list tags", fmt.Errorf("failed to list tags: %w", err))
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, domain.NewStoreError("list tags", fmt.Errorf("failed to scan tag row: %w", err))
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list tags", fmt.Errorf("error iterating tag rows: %w", err))
	}

	return tags, nil
}

func (r *SQLitePostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// postRow is a private struct used to scan database rows
// Times are stored as epoch seconds and change_time stays NULL until the first edit
type postRow struct {
	ID           string        `db:"id"`
	Slug         string        `db:"slug"`
	Title        string        `db:"title"`
	Author       string        `db:"author"`
	Tags         string        `db:"tags"`
	Body         string        `db:"body"`
	CreationTime int64         `db:"creation_time"`
	ChangeTime   sql.NullInt64 `db:"change_time"`
	Publish      bool          `db:"publish"`
}

func (pr *postRow) scan(s scanner) error {
	return s.Scan(
		&pr.ID,
		&pr.Slug,
		&pr.Title,
		&pr.Author,
		&pr.Tags,
		&pr.Body,
		&pr.CreationTime,
		&pr.ChangeTime,
		&pr.Publish,
	)
}

// toDomain converts a postRow to a domain.Post
func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        pr.ID,
		Slug:      pr.Slug,
		Title:     pr.Title,
		Author:    pr.Author,
		Tags:      pr.Tags,
		Body:      pr.Body,
		CreatedAt: time.Unix(pr.CreationTime, 0).UTC(),
		Publish:   pr.Publish,
	}

	if pr.ChangeTime.Valid {
		post.ChangedAt = time.Unix(pr.ChangeTime.Int64, 0).UTC()
	}

	return post
}
