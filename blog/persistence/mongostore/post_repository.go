package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ domain.PostRepository = (*MongoPostRepository)(nil)

const (
	DefaultURI        = "mongodb://localhost/my_database"
	DefaultDatabase   = "my_database"
	DefaultCollection = "blog"
)

type Config struct {
	URI        string
	Database   string
	Collection string
}

// MongoPostRepository implements domain.PostRepository on a MongoDB collection
type MongoPostRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Connect dials MongoDB, verifies the connection and ensures the collection's indexes
func Connect(ctx context.Context, cfg Config) (*MongoPostRepository, error) {
	if cfg.URI == "" {
		cfg.URI = DefaultURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := NewPostRepository(client.Database(cfg.Database).Collection(cfg.Collection))
	repo.client = client

	if err := repo.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	log.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("Connected to MongoDB post store")

	return repo, nil
}

// NewPostRepository wraps an existing collection
func NewPostRepository(coll *mongo.Collection) *MongoPostRepository {
	return &MongoPostRepository{
		coll: coll,
		now:  time.Now,
	}
}

// Ping checks that the collection's deployment is reachable
func (r *MongoPostRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// Close disconnects the client opened by Connect
func (r *MongoPostRepository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

// EnsureIndexes creates the slug uniqueness index and the published listing index
// The slug index is sparse so documents written before slugs existed do not collide.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "publish", Value: 1}, {Key: "creationTime", Value: -1}},
			Options: options.Index().SetName("publish_creationTime"),
		},
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetName("title"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// postDocument mirrors the documents of the blog collection
type postDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Slug         string             `bson:"slug,omitempty"`
	Title        string             `bson:"title"`
	Author       string             `bson:"author"`
	Tags         string             `bson:"tags"`
	Body         string             `bson:"body"`
	CreationTime int64              `bson:"creationTime"`
	ChangeTime   *int64             `bson:"changeTime,omitempty"`
	Publish      bool               `bson:"publish"`
}

func newPostDocument(fields domain.PostFields, createdAt time.Time) postDocument {
	return postDocument{
		Slug:         domain.Slugify(fields.Title),
		Title:        fields.Title,
		Author:       fields.Author,
		Tags:         fields.Tags,
		Body:         fields.Body,
		CreationTime: createdAt.Unix(),
		Publish:      fields.Publish,
	}
}

func (d *postDocument) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        d.ID.Hex(),
		Slug:      d.Slug,
		Title:     d.Title,
		Author:    d.Author,
		Tags:      d.Tags,
		Body:      d.Body,
		CreatedAt: time.Unix(d.CreationTime, 0).UTC(),
		Publish:   d.Publish,
	}
	if d.ChangeTime != nil {
		post.ChangedAt = time.Unix(*d.ChangeTime, 0).UTC()
	}
	return post
}

func publishedFilter(publishedOnly bool) bson.M {
	if publishedOnly {
		return bson.M{"publish": true}
	}
	return bson.M{}
}

// slugFilter matches the stored slug or, for legacy documents, the title the slug came from
func slugFilter(slug string, publishedOnly bool) bson.M {
	filter := publishedFilter(publishedOnly)
	filter["$or"] = bson.A{
		bson.M{"slug": slug},
		bson.M{"title": domain.TitleFromSlug(slug)},
	}
	return filter
}

// legacyConflictFilter matches documents without a stored slug whose title resolves to the
// same slug as title; the sparse unique index does not cover them
func legacyConflictFilter(title string) bson.M {
	slug := domain.Slugify(title)
	return bson.M{
		"slug":  bson.M{"$exists": false},
		"title": bson.M{"$in": bson.A{strings.TrimSpace(title), domain.TitleFromSlug(slug)}},
	}
}

func updateDocument(update domain.PostUpdate, changedAt time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"slug":       domain.Slugify(update.Title),
		"title":      update.Title,
		"tags":       update.Tags,
		"body":       update.Body,
		"publish":    update.Publish,
		"changeTime": changedAt.Unix(),
	}}
}

var (
	newestFirst = bson.D{{Key: "creationTime", Value: -1}, {Key: "_id", Value: -1}}
	oldestFirst = bson.D{{Key: "creationTime", Value: 1}, {Key: "_id", Value: 1}}
)

// Create inserts a new document; the unique slug index rejects duplicate slugs
func (r *MongoPostRepository) Create(ctx context.Context, fields domain.PostFields) (string, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return "", fmt.Errorf("post title cannot be empty")
	}

	if err := r.checkLegacyConflict(ctx, "create post", legacyConflictFilter(fields.Title)); err != nil {
		return "", err
	}

	doc := newPostDocument(fields, r.now())
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.NewStoreError("create post", domain.ErrDuplicateSlug)
		}
		return "", domain.NewStoreError("create post", fmt.Errorf("failed to insert post: %w", err))
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", domain.NewStoreError("create post", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}

	return id.Hex(), nil
}

// FindPublished returns published posts, newest first
func (r *MongoPostRepository) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	posts, err := r.find(ctx, publishedFilter(true), newestFirst)
	if err != nil {
		return nil, domain.NewStoreError("list published posts", err)
	}
	return posts, nil
}

// FindAll returns every post in insertion order
func (r *MongoPostRepository) FindAll(ctx context.Context) ([]*domain.Post, error) {
	posts, err := r.find(ctx, publishedFilter(false), bson.D{{Key: "_id", Value: 1}})
	if err != nil {
		return nil, domain.NewStoreError("list posts", err)
	}
	return posts, nil
}

// FindBySlug returns the earliest-created document matching slug
func (r *MongoPostRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}

	var doc postDocument
	err := r.coll.FindOne(ctx, slugFilter(slug, publishedOnly), options.FindOne().SetSort(oldestFirst)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("post not found: %s: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewStoreError("get post", fmt.Errorf("failed to get post: %w", err))
	}

	return doc.toDomain(), nil
}

// Update sets the editable fields and change time of the document with the given id
func (r *MongoPostRepository) Update(ctx context.Context, id string, update domain.PostUpdate) error {
	if strings.TrimSpace(update.Title) == "" {
		return fmt.Errorf("post title cannot be empty")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("post not found: %s: %w", id, domain.ErrNotFound)
	}

	conflict := legacyConflictFilter(update.Title)
	conflict["_id"] = bson.M{"$ne": oid}
	if err := r.checkLegacyConflict(ctx, "update post", conflict); err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, updateDocument(update, r.now()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewStoreError("update post", domain.ErrDuplicateSlug)
		}
		return domain.NewStoreError("update post", fmt.Errorf("failed to update post: %w", err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found: %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *MongoPostRepository) checkLegacyConflict(ctx context.Context, op string, filter bson.M) error {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return domain.NewStoreError(op, fmt.Errorf("failed to check slug: %w", err))
	}
	if n > 0 {
		return domain.NewStoreError(op, domain.ErrDuplicateSlug)
	}
	return nil
}

// DistinctTagStrings returns the distinct raw tag strings of the collection
func (r *MongoPostRepository) DistinctTagStrings(ctx context.Context, publishedOnly bool) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "tags", publishedFilter(publishedOnly))
	if err != nil {
		return nil, domain.NewStoreError("list tags", fmt.Errorf("failed to list tags: %w", err))
	}
	return tagStrings(values), nil
}

func tagStrings(values []interface{}) []string {
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.Post, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}
