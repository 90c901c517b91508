package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kiwabc123/supply-admin/internal/audit"
	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/catalog"
)

var (
	catalogWriters  = []auth.Role{auth.RoleAdmin, auth.RoleManager}
	catalogDeleters = []auth.Role{auth.RoleAdmin}
)

func (a *API) handleCategoriesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listCategories(w, r)
	case http.MethodPost:
		a.requireRole(a.createCategory, catalogWriters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCategoryResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getCategory(w, r, id)
	case http.MethodPut:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.updateCategory(w, r, id)
		}, catalogWriters...)(w, r)
	case http.MethodDelete:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.deleteCategory(w, r, id)
		}, catalogDeleters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	items, err := a.catalog.ListCategories(r.Context(), limit, offset)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	if items == nil {
		items = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.category.create", map[string]any{"category_id": c.ID})
	w.Header().Set("Location", "/api/categories/"+c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) getCategory(w http.ResponseWriter, r *http.Request, id string) {
	c, err := a.catalog.GetCategory(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) updateCategory(w http.ResponseWriter, r *http.Request, id string) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.catalog.UpdateCategory(r.Context(), id, in)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.category.update", map[string]any{"category_id": id})
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.catalog.DeleteCategory(r.Context(), id); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.category.delete", map[string]any{"category_id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleProductsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listProducts(w, r)
	case http.MethodPost:
		a.requireRole(a.createProduct, catalogWriters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// /api/products/{id}/images[/{imageID}]
	if strings.Contains(path, "/images") {
		a.handleProductImages(w, r, path)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProduct(w, r, path)
	case http.MethodPut:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.updateProduct(w, r, path)
		}, catalogWriters...)(w, r)
	case http.MethodDelete:
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.deleteProduct(w, r, path)
		}, catalogDeleters...)(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) handleProductImages(w http.ResponseWriter, r *http.Request, path string) {
	parts := strings.Split(path, "/")
	// {id}/images or {id}/images/{imageID}
	switch {
	case len(parts) == 2 && parts[1] == "images" && r.Method == http.MethodPost:
		productID := parts[0]
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.attachProductImage(w, r, productID)
		}, catalogWriters...)(w, r)
	case len(parts) == 3 && parts[1] == "images" && r.Method == http.MethodDelete:
		imageID := parts[2]
		a.requireRole(func(w http.ResponseWriter, r *http.Request) {
			a.removeProductImage(w, r, imageID)
		}, catalogWriters...)(w, r)
	case len(parts) >= 2 && parts[1] == "images":
		methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	f := catalog.ProductFilter{
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
		Area:       catalog.Area(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("area")))),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	items, err := a.catalog.ListProducts(r.Context(), f)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	if items == nil {
		items = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.product.create", map[string]any{
		"product_id": p.ID,
		"code":       p.Code,
	})
	w.Header().Set("Location", "/api/products/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.product.update", map[string]any{"product_id": id})
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.catalog.DeleteProduct(r.Context(), id); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.product.delete", map[string]any{"product_id": id})
	w.WriteHeader(http.StatusNoContent)
}

type attachImageRequest struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
}

func (a *API) attachProductImage(w http.ResponseWriter, r *http.Request, productID string) {
	var req attachImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	img, err := a.catalog.AttachImage(r.Context(), productID, req.URL, req.AltText, req.SortOrder)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.image.attach", map[string]any{
		"product_id": productID,
		"image_id":   img.ID,
	})
	writeJSON(w, http.StatusCreated, img)
}

func (a *API) removeProductImage(w http.ResponseWriter, r *http.Request, imageID string) {
	img, err := a.catalog.RemoveImage(r.Context(), imageID)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	if a.blobs != nil {
		if key, err := a.blobs.KeyFromURL(img.URL); err == nil {
			_ = a.blobs.Delete(r.Context(), key)
		}
	}
	_ = audit.LogEvent(r.Context(), "catalog.image.remove", map[string]any{"image_id": imageID})
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func handleCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
