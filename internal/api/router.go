package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avlasiuk/campaignwiz/internal/backend"
)

// NewRouter composes the full HTTP surface: the open forwarding endpoints
// plus the authenticated session surface.
func NewRouter(client *backend.Client, deps AppDeps) http.Handler {
	r := chi.NewRouter()
	RegisterProxyRoutes(r, client)
	RegisterAppRoutes(r, deps)
	return r
}
