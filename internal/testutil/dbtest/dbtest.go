// Package dbtest opens throwaway SQLite property stores for tests.
//
// It lives apart from testutil because it imports the storage layer, which
// pkg/cache tests must not depend on.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/Sternrassler/property-listings/pkg/storage/sqlite"
)

// Open creates an empty database in t.TempDir, closed on cleanup.
func Open(t *testing.T, opts ...sqlite.Option) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "properties.db"), opts...)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// Seeded opens a database holding n sample properties and returns their ids
// in insertion order.
func Seeded(t *testing.T, n int, opts ...sqlite.Option) (*sqlite.DB, []int64) {
	t.Helper()

	db := Open(t, opts...)
	ids := make([]int64, 0, n)
	for i := range n {
		p := Sample(i + 1)
		if err := db.Create(context.Background(), p); err != nil {
			t.Fatalf("Failed to seed property %d: %v", i+1, err)
		}
		ids = append(ids, p.ID)
	}
	return db, ids
}

// Sample returns a valid, unsaved property numbered n.
func Sample(n int) *properties.Property {
	return &properties.Property{
		Title:       fmt.Sprintf("Sample property %d", n),
		Description: "Seeded for tests",
		Price:       fmt.Sprintf("%d.00", 100000+n*1000),
		Location:    "Nairobi",
	}
}
