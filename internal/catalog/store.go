package catalog

import "context"

// Store is the persistence contract for catalog data.
type Store interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error

	AddProductImage(ctx context.Context, img *ProductImage) error
	DeleteProductImage(ctx context.Context, id string) (*ProductImage, error)
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID string
	Area       Area
	ActiveOnly bool
	Query      string
	Limit      int
	Offset     int
}
