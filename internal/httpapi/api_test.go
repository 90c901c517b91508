package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/blob"
	"github.com/kiwabc123/supply-admin/internal/blog"
	"github.com/kiwabc123/supply-admin/internal/catalog"
)

// --- in-memory fixtures ---

type fakeUserStore struct {
	users map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*auth.User{}}
}

func (s *fakeUserStore) Create(ctx context.Context, user *auth.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return auth.ErrConflict
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, userID, hash string) error {
	u, ok := s.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *fakeUserStore) SetActive(ctx context.Context, userID string, active bool) error {
	u, ok := s.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s *fakeUserStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if u, ok := s.users[userID]; ok {
		u.LastLogin = &at
	}
	return nil
}

type fakeCatalogStore struct {
	categories map[string]*catalog.Category
	products   map[string]*catalog.Product
	images     map[string]*catalog.ProductImage
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		categories: map[string]*catalog.Category{},
		products:   map[string]*catalog.Product{},
		images:     map[string]*catalog.ProductImage{},
	}
}

func (s *fakeCatalogStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	for _, e := range s.categories {
		if e.Slug == c.Slug {
			return catalog.ErrConflict
		}
	}
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

func (s *fakeCatalogStore) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCatalogStore) GetCategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	for _, c := range s.categories {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *fakeCatalogStore) ListCategories(ctx context.Context, limit, offset int) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCatalogStore) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	if _, ok := s.categories[c.ID]; !ok {
		return catalog.ErrNotFound
	}
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

func (s *fakeCatalogStore) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := s.categories[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *fakeCatalogStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	for _, e := range s.products {
		if e.Code == p.Code {
			return catalog.ErrConflict
		}
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *fakeCatalogStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakeCatalogStore) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeCatalogStore) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *fakeCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *fakeCatalogStore) AddProductImage(ctx context.Context, img *catalog.ProductImage) error {
	copied := *img
	s.images[img.ID] = &copied
	return nil
}

func (s *fakeCatalogStore) DeleteProductImage(ctx context.Context, id string) (*catalog.ProductImage, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	delete(s.images, id)
	return img, nil
}

type fakeBlogStore struct {
	posts   map[string]*blog.Post
	related map[string][]string
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{posts: map[string]*blog.Post{}, related: map[string][]string{}}
}

func (s *fakeBlogStore) Create(ctx context.Context, p *blog.Post) error {
	for _, e := range s.posts {
		if e.Slug == p.Slug {
			return blog.ErrConflict
		}
	}
	copied := *p
	s.posts[p.ID] = &copied
	return nil
}

func (s *fakeBlogStore) Get(ctx context.Context, id string) (*blog.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	copied := *p
	copied.RelatedIDs = s.related[id]
	return &copied, nil
}

func (s *fakeBlogStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			copied := *p
			copied.RelatedIDs = s.related[p.ID]
			return &copied, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (s *fakeBlogStore) List(ctx context.Context, f blog.Filter) ([]blog.Post, error) {
	var out []blog.Post
	for _, p := range s.posts {
		if f.PublishedOnly && !p.IsPublished {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeBlogStore) Update(ctx context.Context, p *blog.Post) error {
	if _, ok := s.posts[p.ID]; !ok {
		return blog.ErrNotFound
	}
	copied := *p
	s.posts[p.ID] = &copied
	return nil
}

func (s *fakeBlogStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return blog.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakeBlogStore) SetRelated(ctx context.Context, postID string, relatedIDs []string) error {
	s.related[postID] = relatedIDs
	return nil
}

type fakeBlobStore struct {
	uploaded map[string][]byte
	deleted  []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploaded: map[string][]byte{}}
}

func (s *fakeBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.uploaded[key] = data
	return s.URL(key), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeBlobStore) URL(key string) string {
	return "https://blobs.test/supply/" + key
}

func (s *fakeBlobStore) KeyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, "https://blobs.test/supply/")
	if !ok {
		return "", blob.ErrInvalidKey
	}
	return key, nil
}

// --- harness ---

type testEnv struct {
	api   *API
	users *fakeUserStore
}

func newTestAPI(t *testing.T) *testEnv {
	t.Helper()
	codec, err := auth.NewTokenCodec("test-secret", "supply-admin")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	users := newFakeUserStore()
	authn, err := auth.NewAuthenticator(users, codec)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	api := New(Options{
		Auth:    authn,
		Catalog: catalog.NewService(newFakeCatalogStore()),
		Blog:    blog.NewService(newFakeBlogStore()),
		Version: "test",
	})
	return &testEnv{api: api, users: users}
}

func (e *testEnv) seedUser(t *testing.T, email, password string, role auth.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &auth.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": email, "password": password,
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.api.mux.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doWithToken(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, nil, token)
}

func (e *testEnv) doWithHeader(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	rr := httptest.NewRecorder()
	e.api.mux.ServeHTTP(rr, req)
	return rr
}
