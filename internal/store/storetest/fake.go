// Package storetest provides an in-memory Store for unit tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Fake is an in-memory store.Store. Safe for concurrent use.
// WriteErr, when set, is returned by item Create/Update until cleared.
// QuotaLimit, when positive, rejects item creates once the item count
// reaches the limit, simulating a full disk that eviction can relieve.
type Fake struct {
	mu       sync.Mutex
	items    map[string]*model.Item
	projects map[string]*model.Project

	WriteErr   error
	QuotaLimit int
}

// New returns an empty fake store.
func New() *Fake {
	return &Fake{
		items:    make(map[string]*model.Item),
		projects: make(map[string]*model.Project),
	}
}

func (f *Fake) Items() store.Items                      { return &fakeItems{f} }
func (f *Fake) Projects() store.Projects                { return &fakeProjects{f} }
func (f *Fake) HealthPing(ctx context.Context) error    { return nil }
func (f *Fake) Close() error                            { return nil }

// SetWriteErr installs (or clears, with nil) the injected write failure.
func (f *Fake) SetWriteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteErr = err
}

// ItemCount reports how many items are stored.
func (f *Fake) ItemCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeItems struct{ f *Fake }

func (fi *fakeItems) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	if fi.f.WriteErr != nil {
		return nil, fi.f.WriteErr
	}
	if fi.f.QuotaLimit > 0 && len(fi.f.items) >= fi.f.QuotaLimit {
		return nil, model.ErrQuotaExceeded
	}
	out := *it
	now := time.Now().UTC()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	if out.Tags == nil {
		out.Tags = []string{}
	}
	fi.f.items[out.ID] = &out
	cp := out
	return &cp, nil
}

func (fi *fakeItems) Get(ctx context.Context, id string) (*model.Item, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	it, ok := fi.f.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (fi *fakeItems) List(ctx context.Context) ([]*model.Item, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	out := make([]*model.Item, 0, len(fi.f.items))
	for _, it := range fi.f.items {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (fi *fakeItems) ListByStatus(ctx context.Context, status model.Status) ([]*model.Item, error) {
	all, _ := fi.List(ctx)
	var out []*model.Item
	for _, it := range all {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (fi *fakeItems) ListPending(ctx context.Context) ([]*model.Item, error) {
	all, _ := fi.List(ctx)
	var out []*model.Item
	for _, it := range all {
		if it.PendingAIProcessing && it.Status == model.StatusInbox {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (fi *fakeItems) Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error) {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	if fi.f.WriteErr != nil {
		return nil, fi.f.WriteErr
	}
	it, ok := fi.f.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cur := *it
	upd.ApplyTo(&cur)
	cur.UpdatedAt = time.Now().UTC()
	fi.f.items[id] = &cur
	cp := cur
	return &cp, nil
}

func (fi *fakeItems) Delete(ctx context.Context, id string) error {
	fi.f.mu.Lock()
	defer fi.f.mu.Unlock()
	delete(fi.f.items, id)
	return nil
}

type fakeProjects struct{ f *Fake }

func (fp *fakeProjects) Create(ctx context.Context, pr *model.Project) (*model.Project, error) {
	fp.f.mu.Lock()
	defer fp.f.mu.Unlock()
	out := *pr
	now := time.Now().UTC()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	out.CreatedAt = now
	out.UpdatedAt = now
	if out.ItemIDs == nil {
		out.ItemIDs = []string{}
	}
	fp.f.projects[out.ID] = &out
	cp := out
	return &cp, nil
}

func (fp *fakeProjects) Get(ctx context.Context, id string) (*model.Project, error) {
	fp.f.mu.Lock()
	defer fp.f.mu.Unlock()
	pr, ok := fp.f.projects[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (fp *fakeProjects) List(ctx context.Context) ([]*model.Project, error) {
	fp.f.mu.Lock()
	defer fp.f.mu.Unlock()
	out := make([]*model.Project, 0, len(fp.f.projects))
	for _, pr := range fp.f.projects {
		cp := *pr
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (fp *fakeProjects) Update(ctx context.Context, pr *model.Project) (*model.Project, error) {
	fp.f.mu.Lock()
	defer fp.f.mu.Unlock()
	if _, ok := fp.f.projects[pr.ID]; !ok {
		return nil, model.ErrNotFound
	}
	out := *pr
	out.UpdatedAt = time.Now().UTC()
	fp.f.projects[pr.ID] = &out
	cp := out
	return &cp, nil
}

func (fp *fakeProjects) Delete(ctx context.Context, id string) error {
	fp.f.mu.Lock()
	defer fp.f.mu.Unlock()
	delete(fp.f.projects, id)
	return nil
}
