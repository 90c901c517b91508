// Package httpapi is the HTTP layer: routing, middleware, and handlers.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/blob"
	"github.com/kiwabc123/supply-admin/internal/blog"
	"github.com/kiwabc123/supply-admin/internal/catalog"
	"github.com/kiwabc123/supply-admin/internal/obs"
)

// ReadyProbe reports backing-store readiness for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options bundles the collaborators the API needs.
type Options struct {
	Auth       *auth.Authenticator
	Catalog    *catalog.Service
	Blog       *blog.Service
	Blobs      blob.Store
	ReadyProbe ReadyProbe
	Version    string
	RateBurst  int
	RatePerSec int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Authenticator
	catalog    *catalog.Service
	blog       *blog.Service
	blobs      blob.Store
	readyProbe ReadyProbe
	version    string
	rateBurst  int
	ratePerSec int
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		catalog:    opts.Catalog,
		blog:       opts.Blog,
		blobs:      opts.Blobs,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		rateBurst:  opts.RateBurst,
		ratePerSec: opts.RatePerSec,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// identity
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/logout", a.requireAuth(a.handleLogout))
	a.mux.HandleFunc("/api/auth/me", a.requireAuth(a.handleMe))

	// catalog
	a.mux.HandleFunc("/api/categories", a.handleCategoriesCollection)
	a.mux.HandleFunc("/api/categories/", a.handleCategoryResource)
	a.mux.HandleFunc("/api/products", a.handleProductsCollection)
	a.mux.HandleFunc("/api/products/", a.handleProductResource)

	// blog
	a.mux.HandleFunc("/api/posts", a.handlePostsCollection)
	a.mux.HandleFunc("/api/posts/", a.handlePostResource)

	// uploads
	a.mux.HandleFunc("/api/upload", a.requireRole(a.handleUpload, auth.RoleAdmin, auth.RoleManager))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the mux wrapped in the full middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 5<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}
