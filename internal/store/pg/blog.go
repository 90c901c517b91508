package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kiwabc123/supply-admin/internal/blog"
)

// BlogStore implements blog.Store on Postgres.
type BlogStore struct {
	db *sql.DB
}

var _ blog.Store = (*BlogStore)(nil)

func NewBlogStore(s *Store) *BlogStore { return &BlogStore{db: s.db} }

const postColumns = `id, title, slug, excerpt, content, cover_url, author_id, is_published, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*blog.Post, error) {
	var p blog.Post
	var publishedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverURL, &p.AuthorID, &p.IsPublished, &publishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func (s *BlogStore) Create(ctx context.Context, p *blog.Post) error {
	_, err := s.db.ExecContext(ctx, `
		insert into blog_posts(id, title, slug, excerpt, content, cover_url, author_id, is_published, published_at, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverURL, p.AuthorID, p.IsPublished, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return blog.ErrConflict
	}
	return err
}

func (s *BlogStore) Get(ctx context.Context, id string) (*blog.Post, error) {
	row := s.db.QueryRowContext(ctx, `select `+postColumns+` from blog_posts where id=$1`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelated(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BlogStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	row := s.db.QueryRowContext(ctx, `select `+postColumns+` from blog_posts where slug=$1`, slug)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelated(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BlogStore) loadRelated(ctx context.Context, p *blog.Post) error {
	rows, err := s.db.QueryContext(ctx, `
		select related_id from blog_post_relations where post_id=$1 order by related_id asc
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		p.RelatedIDs = append(p.RelatedIDs, id)
	}
	return rows.Err()
}

func (s *BlogStore) List(ctx context.Context, f blog.Filter) ([]blog.Post, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PublishedOnly {
		where = append(where, "is_published")
	}
	if f.AuthorID != "" {
		where = append(where, "author_id = "+arg(f.AuthorID))
	}
	q := `select ` + postColumns + ` from blog_posts`
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	q += " order by created_at desc limit " + arg(f.Limit) + " offset " + arg(f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []blog.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *BlogStore) Update(ctx context.Context, p *blog.Post) error {
	res, err := s.db.ExecContext(ctx, `
		update blog_posts
		set title=$2, slug=$3, excerpt=$4, content=$5, cover_url=$6, is_published=$7, published_at=$8, updated_at=$9
		where id=$1
	`, p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverURL, p.IsPublished, p.PublishedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return blog.ErrConflict
	}
	if err != nil {
		return err
	}
	return requireRow(res, blog.ErrNotFound)
}

func (s *BlogStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from blog_posts where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, blog.ErrNotFound)
}

func (s *BlogStore) SetRelated(ctx context.Context, postID string, relatedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from blog_post_relations where post_id=$1`, postID); err != nil {
		return err
	}
	for _, rid := range relatedIDs {
		if _, err := tx.ExecContext(ctx, `
			insert into blog_post_relations(post_id, related_id) values ($1,$2)
		`, postID, rid); err != nil {
			return err
		}
	}
	return tx.Commit()
}
