package catalog

import "context"

// Repo defines persistence operations for catalog courses.
type Repo interface {
	Create(ctx context.Context, c Course) error
	List(ctx context.Context, category string) ([]Course, error)
	Get(ctx context.Context, id string) (Course, error)
	Update(ctx context.Context, c Course) error
	Delete(ctx context.Context, id string) error
}
