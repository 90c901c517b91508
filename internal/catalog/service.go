package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kiwabc123/supply-admin/internal/ids"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service owns catalog business rules on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService wires a catalog service around the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if !slugPattern.MatchString(in.Slug) {
		return fmt.Errorf("%w: slug must be lowercase letters, digits and dashes", ErrInvalidInput)
	}
	return nil
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.now()
	c := &Category{
		ID:          ids.New(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, limit, offset int) ([]Category, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListCategories(ctx, limit, offset)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Slug = in.Slug
	c.Description = in.Description
	c.UpdatedAt = s.now()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Price       int64  `json:"price"`
	Unit        string `json:"unit"`
	IsActive    *bool  `json:"is_active"`
	Areas       []Area `json:"areas"`
}

func (in *ProductInput) normalize() error {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.CategoryID == "" {
		return fmt.Errorf("%w: category_id is required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	seen := map[Area]bool{}
	for _, a := range in.Areas {
		if !a.IsValid() {
			return fmt.Errorf("%w: unknown area %q", ErrInvalidInput, a)
		}
		if seen[a] {
			return fmt.Errorf("%w: duplicate area %q", ErrInvalidInput, a)
		}
		seen[a] = true
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, in.CategoryID)
		}
		return nil, err
	}
	now := s.now()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p := &Product{
		ID:          ids.New(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Price:       in.Price,
		Unit:        in.Unit,
		IsActive:    active,
		Areas:       in.Areas,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Area != "" && !f.Area.IsValid() {
		return nil, fmt.Errorf("%w: unknown area %q", ErrInvalidInput, f.Area)
	}
	return s.store.ListProducts(ctx, f)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != p.CategoryID {
		if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, in.CategoryID)
			}
			return nil, err
		}
	}
	p.Code = in.Code
	p.Name = in.Name
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Price = in.Price
	p.Unit = in.Unit
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.Areas = in.Areas
	p.UpdatedAt = s.now()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// AttachImage records an uploaded image against a product.
func (s *Service) AttachImage(ctx context.Context, productID, url, altText string, sortOrder int) (*ProductImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	img := &ProductImage{
		ID:        ids.New(),
		ProductID: productID,
		URL:       url,
		AltText:   strings.TrimSpace(altText),
		SortOrder: sortOrder,
		CreatedAt: s.now(),
	}
	if err := s.store.AddProductImage(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// RemoveImage deletes an image record and reports what was removed so the
// caller can clean up the blob behind it.
func (s *Service) RemoveImage(ctx context.Context, imageID string) (*ProductImage, error) {
	return s.store.DeleteProductImage(ctx, imageID)
}
