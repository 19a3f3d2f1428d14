package history

import (
	"context"
	"sort"
	"sync"
)

// DefaultMemoryPerOwner is how many records MemoryRepo keeps per owner.
const DefaultMemoryPerOwner = maxListLimit

// MemoryRepo stores history in memory and is safe for concurrent use. Each owner keeps at
// most MaxPerOwner records; older ones are dropped on insert.
type MemoryRepo struct {
	MaxPerOwner int

	mu      sync.RWMutex
	byOwner map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{MaxPerOwner: DefaultMemoryPerOwner, byOwner: make(map[string][]Record)}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := append(r.byOwner[rec.OwnerID], rec)
	if r.MaxPerOwner > 0 && len(items) > r.MaxPerOwner {
		items = append([]Record(nil), items[len(items)-r.MaxPerOwner:]...)
	}
	r.byOwner[rec.OwnerID] = items
	return nil
}

// ListByOwner returns records newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	r.mu.RLock()
	items := append([]Record(nil), r.byOwner[ownerID]...)
	r.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []Record{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

// Latest returns the newest record for the owner.
func (r *MemoryRepo) Latest(ctx context.Context, ownerID string) (Record, error) {
	items, err := r.ListByOwner(ctx, ownerID, 1, 0)
	if err != nil {
		return Record{}, err
	}
	if len(items) == 0 {
		return Record{}, ErrNotFound
	}
	return items[0], nil
}
