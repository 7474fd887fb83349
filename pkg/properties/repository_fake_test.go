package properties

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/property-listings/pkg/cache"
)

// fakeRepo is an in-memory Repository that counts storage calls.
type fakeRepo struct {
	mu        sync.Mutex
	rows      map[int64]Property
	nextID    int64
	listCalls int
	findCalls int
	failList  error
	failFind  error
}

func newFakeRepo(ids ...int64) *fakeRepo {
	r := &fakeRepo{rows: make(map[int64]Property)}
	for _, id := range ids {
		r.rows[id] = Property{ID: id, Title: "Property", Location: "Nairobi", Price: "100.00"}
		if id > r.nextID {
			r.nextID = id
		}
	}
	return r
}

func (r *fakeRepo) ListAllIDs(context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.failList != nil {
		return nil, r.failList
	}
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeRepo) FindByIDs(_ context.Context, ids []int64) ([]Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.failFind != nil {
		return nil, r.failFind
	}
	var out []Property
	// Reverse order to prove the service does not rely on storage order.
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := r.rows[ids[i]]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *fakeRepo) Create(_ context.Context, p *Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	r.rows[p.ID] = *p
	return nil
}

func (r *fakeRepo) Update(_ context.Context, p *Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return ErrNotFound
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

// remove deletes a row behind the service's back, like another writer would.
func (r *fakeRepo) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
}

// add inserts a row behind the service's back.
func (r *fakeRepo) add(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[id] = Property{ID: id, Title: "Property", Location: "Mombasa", Price: "1.00"}
}

func (r *fakeRepo) calls() (list, find int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls, r.findCalls
}

// failingStore simulates an unreachable cache store.
type failingStore struct{}

var errStoreDown = errors.Join(cache.ErrStoreUnavailable, errors.New("connection refused"))

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, ...string) error { return errStoreDown }
func (failingStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, errStoreDown
}
func (failingStore) Stats(context.Context) (cache.Stats, error) {
	return cache.Stats{}, errStoreDown
}
func (failingStore) Ping(context.Context) error { return errStoreDown }

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
