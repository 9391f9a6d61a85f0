// Package kvstore keeps posts in an embedded Badger key-value database.
//
// Each post is a JSON document under "post/<id>"; "slug/<slug>" maps a slug to its id.
// Ids are version 7 UUIDs so key order is creation order.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var _ domain.PostRepository = (*BadgerPostRepository)(nil)

var (
	postPrefix = []byte("post/")
	slugPrefix = []byte("slug/")

	errClosed = errors.New("badger post store is closed")
)

type Config struct {
	// Path is the data directory; empty together with InMemory keeps everything in RAM
	Path     string
	InMemory bool
}

// BadgerPostRepository implements domain.PostRepository on top of Badger
type BadgerPostRepository struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) the Badger database described by cfg
func Open(cfg Config) (*BadgerPostRepository, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	log.Info().Str("path", cfg.Path).Bool("inMemory", cfg.InMemory).Msg("Opened Badger post store")

	return &BadgerPostRepository{
		db:  db,
		now: time.Now,
	}, nil
}

// Ping fails once the database has been closed
func (r *BadgerPostRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errClosed
	}
	return ctx.Err()
}

// Close flushes and closes the database
func (r *BadgerPostRepository) Close() error {
	return r.db.Close()
}

type postDocument struct {
	ID           string `json:"_id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Tags         string `json:"tags"`
	Body         string `json:"body"`
	CreationTime int64  `json:"creationTime"`
	ChangeTime   int64  `json:"changeTime,omitempty"`
	Publish      bool   `json:"publish"`
}

func (d *postDocument) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        d.ID,
		Slug:      d.Slug,
		Title:     d.Title,
		Author:    d.Author,
		Tags:      d.Tags,
		Body:      d.Body,
		CreatedAt: time.Unix(d.CreationTime, 0).UTC(),
		Publish:   d.Publish,
	}
	if d.ChangeTime != 0 {
		post.ChangedAt = time.Unix(d.ChangeTime, 0).UTC()
	}
	return post
}

func postKey(id string) []byte {
	return append(append([]byte{}, postPrefix...), id...)
}

func slugKey(slug string) []byte {
	return append(append([]byte{}, slugPrefix...), slug...)
}

// Create stores a new post document and claims its slug in the same transaction
func (r *BadgerPostRepository) Create(ctx context.Context, fields domain.PostFields) (string, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return "", fmt.Errorf("post title cannot be empty")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", domain.NewStoreError("create post", fmt.Errorf("failed to generate id: %w", err))
	}

	doc := postDocument{
		ID:           id.String(),
		Slug:         domain.Slugify(fields.Title),
		Title:        fields.Title,
		Author:       fields.Author,
		Tags:         fields.Tags,
		Body:         fields.Body,
		CreationTime: r.now().Unix(),
		Publish:      fields.Publish,
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := claimSlug(txn, doc.Slug, doc.ID); err != nil {
			return err
		}
		return putDocument(txn, &doc)
	})
	if err != nil {
		return "", domain.NewStoreError("create post", err)
	}

	return doc.ID, nil
}

// FindPublished returns published posts, newest first
func (r *BadgerPostRepository) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	docs, err := r.scan(func(d *postDocument) bool { return d.Publish })
	if err != nil {
		return nil, domain.NewStoreError("list published posts", err)
	}

	// Reversed key order is newest first; the stable sort keeps it for equal timestamps
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreationTime > docs[j].CreationTime
	})

	return toDomain(docs), nil
}

// FindAll returns every post in creation order
func (r *BadgerPostRepository) FindAll(ctx context.Context) ([]*domain.Post, error) {
	docs, err := r.scan(func(*postDocument) bool { return true })
	if err != nil {
		return nil, domain.NewStoreError("list posts", err)
	}
	return toDomain(docs), nil
}

// FindBySlug resolves slug through the slug index, falling back to a title scan
func (r *BadgerPostRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}

	var found *postDocument
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey(slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc, err := getDocument(txn, string(id))
		if err != nil {
			return err
		}
		if !publishedOnly || doc.Publish {
			found = doc
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError("get post", err)
	}

	if found == nil {
		title := domain.TitleFromSlug(slug)
		docs, err := r.scan(func(d *postDocument) bool {
			return d.Title == title && (!publishedOnly || d.Publish)
		})
		if err != nil {
			return nil, domain.NewStoreError("get post", err)
		}
		if len(docs) > 0 {
			found = docs[0]
		}
	}

	if found == nil {
		return nil, fmt.Errorf("post not found: %s: %w", slug, domain.ErrNotFound)
	}

	return found.toDomain(), nil
}

// Update rewrites the editable fields of a post and moves its slug claim when the title changes
func (r *BadgerPostRepository) Update(ctx context.Context, id string, update domain.PostUpdate) error {
	if id == "" {
		return fmt.Errorf("post ID cannot be empty")
	}
	if strings.TrimSpace(update.Title) == "" {
		return fmt.Errorf("post title cannot be empty")
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		doc, err := getDocument(txn, id)
		if err != nil {
			return err
		}

		newSlug := domain.Slugify(update.Title)
		if newSlug != doc.Slug {
			if err := claimSlug(txn, newSlug, doc.ID); err != nil {
				return err
			}
			if err := txn.Delete(slugKey(doc.Slug)); err != nil {
				return fmt.Errorf("failed to release slug: %w", err)
			}
		}

		doc.Slug = newSlug
		doc.Title = update.Title
		doc.Tags = update.Tags
		doc.Body = update.Body
		doc.Publish = update.Publish
		doc.ChangeTime = r.now().Unix()

		return putDocument(txn, doc)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return domain.NewStoreError("update post", err)
}

// DistinctTagStrings returns the sorted distinct raw tag strings
func (r *BadgerPostRepository) DistinctTagStrings(ctx context.Context, publishedOnly bool) ([]string, error) {
	docs, err := r.scan(func(d *postDocument) bool { return !publishedOnly || d.Publish })
	if err != nil {
		return nil, domain.NewStoreError("list tags", err)
	}

	seen := make(map[string]struct{}, len(docs))
	tags := make([]string, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.Tags]; ok {
			continue
		}
		seen[d.Tags] = struct{}{}
		tags = append(tags, d.Tags)
	}
	sort.Strings(tags)

	return tags, nil
}

// scan walks every post document in key order, keeping those accepted by keep
func (r *BadgerPostRepository) scan(keep func(*postDocument) bool) ([]*postDocument, error) {
	docs := make([]*postDocument, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(postPrefix); it.ValidForPrefix(postPrefix); it.Next() {
			var doc postDocument
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("failed to decode post %s: %w", it.Item().Key(), err)
			}
			if keep(&doc) {
				docs = append(docs, &doc)
			}
		}
		return nil
	})
	return docs, err
}

func claimSlug(txn *badger.Txn, slug, id string) error {
	_, err := txn.Get(slugKey(slug))
	if err == nil {
		return domain.ErrDuplicateSlug
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	return txn.Set(slugKey(slug), []byte(id))
}

func getDocument(txn *badger.Txn, id string) (*postDocument, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("post not found: %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	var doc postDocument
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &doc) }); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", id, err)
	}
	return &doc, nil
}

func putDocument(txn *badger.Txn, doc *postDocument) error {
	val, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}
	if err := txn.Set(postKey(doc.ID), val); err != nil {
		return fmt.Errorf("failed to write post: %w", err)
	}
	return nil
}

func toDomain(docs []*postDocument) []*domain.Post {
	posts := make([]*domain.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts
}
