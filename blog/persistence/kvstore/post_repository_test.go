package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
)

func newTestRepository(t *testing.T) (*BadgerPostRepository, *time.Time) {
	repo, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	now := time.Date(2018, 10, 6, 23, 7, 59, 0, time.UTC)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func mustCreate(t *testing.T, repo *BadgerPostRepository, fields domain.PostFields) string {
	id, err := repo.Create(context.Background(), fields)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", fields.Title, err)
	}
	return id
}

func TestBadgerPostRepository_CreateAndFind(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	fields := domain.PostFields{
		Title:   "Hello World",
		Author:  "admin",
		Tags:    "Go, Systems",
		Body:    "<p>about go systems</p>",
		Publish: true,
	}
	id := mustCreate(t, repo, fields)

	post, err := repo.FindBySlug(ctx, "Hello-World", true)
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}

	if post.ID != id {
		t.Errorf("ID = %v, want %v", post.ID, id)
	}
	if post.Title != fields.Title || post.Author != fields.Author || post.Tags != fields.Tags || post.Body != fields.Body {
		t.Errorf("FindBySlug() = %+v, want fields %+v", post, fields)
	}
	if !post.CreatedAt.Equal(*now) {
		t.Errorf("CreatedAt = %v, want %v", post.CreatedAt, *now)
	}
	if !post.ChangedAt.IsZero() {
		t.Errorf("ChangedAt = %v, want zero", post.ChangedAt)
	}
}

func TestBadgerPostRepository_DuplicateSlug(t *testing.T) {
	repo, _ := newTestRepository(t)

	mustCreate(t, repo, domain.PostFields{Title: "Hello World"})

	_, err := repo.Create(context.Background(), domain.PostFields{Title: "Hello-World"})
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Errorf("Create error = %v, want ErrDuplicateSlug", err)
	}
}

func TestBadgerPostRepository_FindBySlug_Unpublished(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, domain.PostFields{Title: "Draft", Publish: false})

	if _, err := repo.FindBySlug(ctx, "Draft", true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindBySlug(publishedOnly) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.FindBySlug(ctx, "Draft", false); err != nil {
		t.Errorf("FindBySlug(any) error = %v", err)
	}
}

func TestBadgerPostRepository_FindPublished_Order(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	base := *now
	mustCreate(t, repo, domain.PostFields{Title: "Oldest", Publish: true})
	*now = base.Add(time.Hour)
	mustCreate(t, repo, domain.PostFields{Title: "Hidden", Publish: false})
	*now = base.Add(2 * time.Hour)
	mustCreate(t, repo, domain.PostFields{Title: "Newest", Publish: true})
	mustCreate(t, repo, domain.PostFields{Title: "Same Second", Publish: true})

	posts, err := repo.FindPublished(ctx)
	if err != nil {
		t.Fatalf("FindPublished failed: %v", err)
	}

	want := []string{"Same Second", "Newest", "Oldest"}
	if len(posts) != len(want) {
		t.Fatalf("FindPublished returned %d posts, want %d", len(posts), len(want))
	}
	for i, title := range want {
		if posts[i].Title != title {
			t.Errorf("posts[%d].Title = %v, want %v", i, posts[i].Title, title)
		}
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 4 || all[0].Title != "Oldest" {
		t.Errorf("FindAll() returned %d posts starting with %q, want 4 starting with Oldest", len(all), all[0].Title)
	}
}

func TestBadgerPostRepository_Update(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	createdAt := *now
	id := mustCreate(t, repo, domain.PostFields{Title: "Before", Author: "admin", Tags: "a"})
	mustCreate(t, repo, domain.PostFields{Title: "Taken"})

	*now = createdAt.Add(time.Hour)
	if err := repo.Update(ctx, id, domain.PostUpdate{Title: "After", Tags: "b", Body: "new", Publish: true}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	post, err := repo.FindBySlug(ctx, "After", true)
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if !post.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", post.CreatedAt, createdAt)
	}
	if !post.ChangedAt.Equal(*now) {
		t.Errorf("ChangedAt = %v, want %v", post.ChangedAt, *now)
	}
	if post.Author != "admin" {
		t.Errorf("Author = %v, want admin", post.Author)
	}

	// The old slug is released and can be claimed again
	if _, err := repo.FindBySlug(ctx, "Before", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old slug lookup error = %v, want ErrNotFound", err)
	}
	mustCreate(t, repo, domain.PostFields{Title: "Before"})

	err = repo.Update(ctx, id, domain.PostUpdate{Title: "Taken"})
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Errorf("Update onto taken slug error = %v, want ErrDuplicateSlug", err)
	}

	err = repo.Update(ctx, "missing", domain.PostUpdate{Title: "Whatever"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update missing error = %v, want ErrNotFound", err)
	}
}

func TestBadgerPostRepository_DistinctTagStrings(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, domain.PostFields{Title: "One", Tags: "Go, Systems", Publish: true})
	mustCreate(t, repo, domain.PostFields{Title: "Two", Tags: "Go, Systems", Publish: true})
	mustCreate(t, repo, domain.PostFields{Title: "Three", Tags: "draft", Publish: false})

	all, err := repo.DistinctTagStrings(ctx, false)
	if err != nil {
		t.Fatalf("DistinctTagStrings failed: %v", err)
	}
	if len(all) != 2 || all[0] != "Go, Systems" || all[1] != "draft" {
		t.Errorf("DistinctTagStrings(all) = %v", all)
	}

	published, err := repo.DistinctTagStrings(ctx, true)
	if err != nil {
		t.Fatalf("DistinctTagStrings failed: %v", err)
	}
	if len(published) != 1 {
		t.Errorf("DistinctTagStrings(published) = %v, want 1 entry", published)
	}
}

func TestBadgerPostRepository_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")

	repo, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := repo.Create(context.Background(), domain.PostFields{Title: "Durable", Publish: true}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	repo, err = Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer repo.Close()

	if _, err := repo.FindBySlug(context.Background(), "Durable", true); err != nil {
		t.Errorf("FindBySlug after reopen error = %v", err)
	}
}

func TestBadgerPostRepository_Ping(t *testing.T) {
	repo, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := repo.Ping(context.Background()); !errors.Is(err, errClosed) {
		t.Errorf("Ping() after Close() error = %v, want %v", err, errClosed)
	}
}
