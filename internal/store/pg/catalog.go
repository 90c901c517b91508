package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kiwabc123/supply-admin/internal/catalog"
)

// CatalogStore implements catalog.Store on Postgres.
type CatalogStore struct {
	db *sql.DB
}

var _ catalog.Store = (*CatalogStore)(nil)

func NewCatalogStore(s *Store) *CatalogStore { return &CatalogStore{db: s.db} }

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	_, err := s.db.ExecContext(ctx, `
		insert into product_categories(id, name, slug, description, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return catalog.ErrConflict
	}
	return err
}

func (s *CatalogStore) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, `select `+categoryColumns+` from product_categories where id=$1`, id)
	return scanCategory(row)
}

func (s *CatalogStore) GetCategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	row := s.db.QueryRowContext(ctx, `select `+categoryColumns+` from product_categories where slug=$1`, slug)
	return scanCategory(row)
}

func (s *CatalogStore) ListCategories(ctx context.Context, limit, offset int) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+categoryColumns+` from product_categories
		order by name asc
		limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	res, err := s.db.ExecContext(ctx, `
		update product_categories
		set name=$2, slug=$3, description=$4, updated_at=$5
		where id=$1
	`, c.ID, c.Name, c.Slug, c.Description, c.UpdatedAt)
	if isUniqueViolation(err) {
		return catalog.ErrConflict
	}
	if err != nil {
		return err
	}
	return requireRow(res, catalog.ErrNotFound)
}

func (s *CatalogStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from product_categories where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, catalog.ErrNotFound)
}

const productColumns = `id, code, name, description, category_id, price, unit, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		insert into products(id, code, name, description, category_id, price, unit, is_active, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.Code, p.Name, p.Description, p.CategoryID, p.Price, p.Unit, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return catalog.ErrConflict
	}
	if err != nil {
		return err
	}
	if err := insertAreas(ctx, tx, p.ID, p.Areas); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAreas(ctx context.Context, tx *sql.Tx, productID string, areas []catalog.Area) error {
	for _, a := range areas {
		if _, err := tx.ExecContext(ctx, `
			insert into product_areas(product_id, area) values ($1,$2)
		`, productID, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `select `+productColumns+` from products where id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadAreas(ctx, p); err != nil {
		return nil, err
	}
	if err := s.loadImages(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogStore) loadAreas(ctx context.Context, p *catalog.Product) error {
	rows, err := s.db.QueryContext(ctx, `
		select area from product_areas where product_id=$1 order by area asc
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a catalog.Area
		if err := rows.Scan(&a); err != nil {
			return err
		}
		p.Areas = append(p.Areas, a)
	}
	return rows.Err()
}

func (s *CatalogStore) loadImages(ctx context.Context, p *catalog.Product) error {
	rows, err := s.db.QueryContext(ctx, `
		select id, product_id, url, alt_text, sort_order, created_at
		from product_images where product_id=$1
		order by sort_order asc, created_at asc
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var img catalog.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.SortOrder, &img.CreatedAt); err != nil {
			return err
		}
		p.Images = append(p.Images, img)
	}
	return rows.Err()
}

func (s *CatalogStore) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CategoryID != "" {
		where = append(where, "p.category_id = "+arg(f.CategoryID))
	}
	if f.ActiveOnly {
		where = append(where, "p.is_active")
	}
	if f.Area != "" {
		where = append(where, "exists (select 1 from product_areas pa where pa.product_id = p.id and pa.area = "+arg(f.Area)+")")
	}
	if f.Query != "" {
		where = append(where, "(p.name ilike "+arg("%"+f.Query+"%")+" or p.code ilike "+arg("%"+f.Query+"%")+")")
	}
	q := `select p.id, p.code, p.name, p.description, p.category_id, p.price, p.unit, p.is_active, p.created_at, p.updated_at from products p`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += " order by p.name asc limit " + arg(f.Limit) + " offset " + arg(f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadAreas(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update products
		set code=$2, name=$3, description=$4, category_id=$5, price=$6, unit=$7, is_active=$8, updated_at=$9
		where id=$1
	`, p.ID, p.Code, p.Name, p.Description, p.CategoryID, p.Price, p.Unit, p.IsActive, p.UpdatedAt)
	if isUniqueViolation(err) {
		return catalog.ErrConflict
	}
	if err != nil {
		return err
	}
	if err := requireRow(res, catalog.ErrNotFound); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `delete from product_areas where product_id=$1`, p.ID); err != nil {
		return err
	}
	if err := insertAreas(ctx, tx, p.ID, p.Areas); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *CatalogStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from products where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, catalog.ErrNotFound)
}

func (s *CatalogStore) AddProductImage(ctx context.Context, img *catalog.ProductImage) error {
	_, err := s.db.ExecContext(ctx, `
		insert into product_images(id, product_id, url, alt_text, sort_order, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, img.ID, img.ProductID, img.URL, img.AltText, img.SortOrder, img.CreatedAt)
	return err
}

func (s *CatalogStore) DeleteProductImage(ctx context.Context, id string) (*catalog.ProductImage, error) {
	row := s.db.QueryRowContext(ctx, `
		delete from product_images where id=$1
		returning id, product_id, url, alt_text, sort_order, created_at
	`, id)
	var img catalog.ProductImage
	err := row.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.SortOrder, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}
