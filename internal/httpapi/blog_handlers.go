package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kiwabc123/supply-admin/internal/audit"
	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/blog"
)

func (a *API) handlePostsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listPosts(w, r)
	case http.MethodPost:
		a.requireRole(a.createPost, catalogWriters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handlePostResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getPost(w, r, path)
	case http.MethodPut:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.updatePost(w, r, path)
		}, catalogWriters...)(w, r)
	case http.MethodDelete:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.deletePost(w, r, path)
		}, catalogDeleters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	f := blog.Filter{
		PublishedOnly: r.URL.Query().Get("published") == "true",
		AuthorID:      strings.TrimSpace(r.URL.Query().Get("author_id")),
		Limit:         queryInt(r, "limit", 100),
		Offset:        queryInt(r, "offset", 0),
	}
	items, err := a.blog.List(r.Context(), f)
	if err != nil {
		handleBlogError(w, r, err)
		return
	}
	if items == nil {
		items = []blog.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var in blog.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	p, err := a.blog.Create(r.Context(), user.ID, in)
	if err != nil {
		handleBlogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "blog.post.create", map[string]any{"post_id": p.ID})
	w.Header().Set("Location", "/api/posts/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// getPost resolves by id first, then by slug, so public links can use either.
func (a *API) getPost(w http.ResponseWriter, r *http.Request, idOrSlug string) {
	p, err := a.blog.Get(r.Context(), idOrSlug)
	if errors.Is(err, blog.ErrNotFound) {
		p, err = a.blog.GetBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		handleBlogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request, id string) {
	var in blog.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.blog.Update(r.Context(), id, in)
	if err != nil {
		handleBlogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "blog.post.update", map[string]any{"post_id": id})
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.blog.Delete(r.Context(), id); err != nil {
		handleBlogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "blog.post.delete", map[string]any{"post_id": id})
	w.WriteHeader(http.StatusNoContent)
}

func handleBlogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, blog.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, blog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
