package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Input is the editable part of a course.
type Input struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Description string `json:"description"`
	URL         string `json:"url"`
	CreatedBy   string `json:"createdBy"`
}

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, category string) ([]Course, error) {
	return s.Repo.List(ctx, strings.TrimSpace(category))
}

func (s *Service) Create(ctx context.Context, in Input) (Course, error) {
	in, err := clean(in)
	if err != nil {
		return Course{}, err
	}
	now := s.now().UTC()
	c := Course{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Category:    in.Category,
		Level:       in.Level,
		Description: in.Description,
		URL:         in.URL,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Update replaces the editable fields. CreatedBy and CreatedAt are preserved.
func (s *Service) Update(ctx context.Context, id string, in Input) (Course, error) {
	in, err := clean(in)
	if err != nil {
		return Course{}, err
	}
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	existing.Title = in.Title
	existing.Category = in.Category
	existing.Level = in.Level
	existing.Description = in.Description
	existing.URL = in.URL
	existing.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Course{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func clean(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Level = strings.TrimSpace(in.Level)
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Level == "" {
		missing = append(missing, "level")
	}
	if len(missing) > 0 {
		return in, fmt.Errorf("%w: %s required", ErrInvalid, strings.Join(missing, ", "))
	}
	if in.URL != "" {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, fmt.Errorf("%w: url must be an absolute http(s) link", ErrInvalid)
		}
	}
	return in, nil
}
