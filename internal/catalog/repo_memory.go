package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores courses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Course
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Course)}
}

func (r *MemoryRepo) Create(_ context.Context, c Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

func (r *MemoryRepo) List(_ context.Context, category string) ([]Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Course{}
	for _, c := range r.byID {
		if category != "" && !strings.EqualFold(c.Category, category) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) Update(_ context.Context, c Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
