package blog

import "context"

// Store is the persistence contract for blog posts.
type Store interface {
	Create(ctx context.Context, p *Post) error
	Get(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, f Filter) ([]Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
	SetRelated(ctx context.Context, postID string, relatedIDs []string) error
}

// Filter narrows a post listing.
type Filter struct {
	PublishedOnly bool
	AuthorID      string
	Limit         int
	Offset        int
}
