package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/Sternrassler/property-listings/pkg/batch"
	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/Sternrassler/property-listings/pkg/storage/sqlite"
)

func newTestDB(t *testing.T, opts ...sqlite.Option) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), t.TempDir()+"/test.db", opts...)
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *sqlite.DB, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		p := &properties.Property{
			Title:    fmt.Sprintf("Property %d", i+1),
			Price:    "100.00",
			Location: "Nairobi",
		}
		if err := db.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func sortedIDs(props []properties.Property) []int64 {
	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := t.TempDir() + "/reopen.db"
	ctx := context.Background()

	db, err := sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Create(ctx, &properties.Property{Title: "A", Price: "1.00", Location: "B"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.Close()

	db, err = sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	ids, err := db.ListAllIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids after reopen = %v, want 1 id", ids)
	}
}

func TestListAllIDs_Empty(t *testing.T) {
	db := newTestDB(t)

	ids, err := db.ListAllIDs(context.Background())
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("ids = %#v, want empty non-nil slice", ids)
	}
}

func TestListAllIDs_Order(t *testing.T) {
	db := newTestDB(t)
	want := seed(t, db, 5)

	ids, err := db.ListAllIDs(context.Background())
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}

func TestFindByIDs_SkipsMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ids := seed(t, db, 3)

	if err := db.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	found, err := db.FindByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if got := sortedIDs(found); !reflect.DeepEqual(got, []int64{ids[0], ids[2]}) {
		t.Fatalf("found ids = %v, want %v", got, []int64{ids[0], ids[2]})
	}
}

func TestFindByIDs_Empty(t *testing.T) {
	db := newTestDB(t)

	found, err := db.FindByIDs(context.Background(), []int64{})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("found = %v, want none", found)
	}
}

func TestFindByIDs_Chunked(t *testing.T) {
	db := newTestDB(t, sqlite.WithBatchConfig(batch.Config{ChunkSize: 3, MaxConcurrency: 2}))
	ids := seed(t, db, 10)

	found, err := db.FindByIDs(context.Background(), append(ids, 9999))
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if got := sortedIDs(found); !reflect.DeepEqual(got, ids) {
		t.Fatalf("found ids = %v, want %v", got, ids)
	}
}

func TestPropertyCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := &properties.Property{
		Title:       "Beach House",
		Description: "Ocean view",
		Price:       "350000.00",
		Location:    "Diani",
	}

	// Create.
	if err := db.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected ID to be set")
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	// Get.
	got, err := db.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Beach House" || got.Description != "Ocean view" || got.Price != "350000.00" || got.Location != "Diani" {
		t.Fatalf("get = %+v", got)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, p.CreatedAt)
	}

	// Update.
	update := &properties.Property{ID: p.ID, Title: "Beach Villa", Price: "400000.00", Location: "Diani"}
	if err := db.Update(ctx, update); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !update.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("update changed created_at: %v", update.CreatedAt)
	}
	got, _ = db.Get(ctx, p.ID)
	if got.Title != "Beach Villa" || got.Description != "" {
		t.Fatalf("after update = %+v", got)
	}

	// Delete.
	if err := db.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get(ctx, p.ID); !errors.Is(err, properties.ErrNotFound) {
		t.Fatalf("get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Get(ctx, 42); !errors.Is(err, properties.ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if err := db.Update(ctx, &properties.Property{ID: 42, Title: "x", Price: "1", Location: "y"}); !errors.Is(err, properties.ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := db.Delete(ctx, 42); !errors.Is(err, properties.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestClosedDatabase(t *testing.T) {
	db, err := sqlite.New(context.Background(), t.TempDir()+"/closed.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Close()

	if _, err := db.ListAllIDs(context.Background()); err == nil {
		t.Fatal("expected error from closed database")
	}
}
