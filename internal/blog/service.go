package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kiwabc123/supply-admin/internal/catalog"
	"github.com/kiwabc123/supply-admin/internal/ids"
)

// Service owns blog business rules on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// PostInput carries the writable fields of a post.
type PostInput struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CoverURL   string   `json:"cover_url"`
	Publish    bool     `json:"publish"`
	RelatedIDs []string `json:"related_ids"`
}

func (in *PostInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Content = strings.TrimSpace(in.Content)
	in.CoverURL = strings.TrimSpace(in.CoverURL)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if in.Slug == "" {
		in.Slug = catalog.Slugify(in.Title)
	}
	if in.Slug == "" {
		return fmt.Errorf("%w: slug could not be derived from title", ErrInvalidInput)
	}
	seen := map[string]bool{}
	for _, id := range in.RelatedIDs {
		if seen[id] {
			return fmt.Errorf("%w: duplicate related post %s", ErrInvalidInput, id)
		}
		seen[id] = true
	}
	return nil
}

func (s *Service) Create(ctx context.Context, authorID string, in PostInput) (*Post, error) {
	if authorID == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.now()
	p := &Post{
		ID:          ids.New(),
		Title:       in.Title,
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		CoverURL:    in.CoverURL,
		AuthorID:    authorID,
		IsPublished: in.Publish,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Publish {
		p.PublishedAt = &now
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	if len(in.RelatedIDs) > 0 {
		if err := s.relate(ctx, p, in.RelatedIDs); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.store.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *Service) List(ctx context.Context, f Filter) ([]Post, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id string, in PostInput) (*Post, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p.Title = in.Title
	p.Slug = in.Slug
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.CoverURL = in.CoverURL
	if in.Publish && !p.IsPublished {
		p.PublishedAt = &now
	}
	if !in.Publish {
		p.PublishedAt = nil
	}
	p.IsPublished = in.Publish
	p.UpdatedAt = now
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.relate(ctx, p, in.RelatedIDs); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// relate validates every related post exists (and is not the post itself)
// before persisting the relation set.
func (s *Service) relate(ctx context.Context, p *Post, relatedIDs []string) error {
	for _, rid := range relatedIDs {
		if rid == p.ID {
			return fmt.Errorf("%w: post cannot relate to itself", ErrInvalidInput)
		}
		if _, err := s.store.Get(ctx, rid); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: related post %s does not exist", ErrInvalidInput, rid)
			}
			return err
		}
	}
	if err := s.store.SetRelated(ctx, p.ID, relatedIDs); err != nil {
		return err
	}
	p.RelatedIDs = relatedIDs
	return nil
}
