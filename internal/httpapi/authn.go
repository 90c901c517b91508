package httpapi

import (
	"errors"
	"net/http"

	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/obs"
)

const authHeader = "Authorization"

// rejection captures why a request failed authentication or authorization.
type rejection struct {
	status  int
	message string
	reason  string
}

// authenticate runs the ordered verification steps for a protected request:
// extract the bearer token, verify its signature and claims, then confirm
// the account behind it still exists and is active. It returns the request
// with identity attached, or the rejection to send.
func (a *API) authenticate(r *http.Request) (*http.Request, *rejection) {
	raw, ok := auth.ExtractBearer(r.Header.Get(authHeader))
	if !ok {
		return nil, &rejection{http.StatusUnauthorized, "authentication required", "missing_token"}
	}

	claims, err := a.auth.VerifyToken(raw)
	if err != nil {
		return nil, &rejection{http.StatusUnauthorized, "invalid or expired token", "invalid_token"}
	}

	if err := r.Context().Err(); err != nil {
		return nil, &rejection{http.StatusServiceUnavailable, "request cancelled", "cancelled"}
	}

	user, err := a.auth.ResolveIdentity(r.Context(), claims)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityRevoked) {
			return nil, &rejection{http.StatusUnauthorized, "account no longer valid", "identity_not_found"}
		}
		obs.LogJSON(map[string]any{
			"level":      "error",
			"msg":        "identity_lookup_failed",
			"request_id": RequestIDFromContext(r.Context()),
			"error":      err.Error(),
		})
		return nil, &rejection{http.StatusInternalServerError, "authentication error", "store_error"}
	}

	ctx := auth.ContextWithUser(r.Context(), user)
	ctx = auth.ContextWithClaims(ctx, claims)
	return r.WithContext(ctx), nil
}

func (a *API) reject(w http.ResponseWriter, r *http.Request, rej *rejection) {
	if rej.status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	obs.CountAuthRejection(rej.reason)
	writeError(w, r, rej.status, rej.message)
}

// requireAuth guards a handler behind token verification and the live
// identity check.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, rej := a.authenticate(r)
		if rej != nil {
			a.reject(w, r, rej)
			return
		}
		next(w, req)
	}
}

// requireRole guards a handler behind authentication plus role membership.
// The identity check always runs first, so an unauthenticated caller sees
// 401, never 403.
func (a *API) requireRole(next http.HandlerFunc, allowed ...auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, rej := a.authenticate(r)
		if rej != nil {
			a.reject(w, r, rej)
			return
		}
		user, _ := auth.UserFromContext(req.Context())
		if !user.Role.In(allowed...) {
			obs.CountAuthRejection("insufficient_role")
			writeError(w, req, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, req)
	}
}
