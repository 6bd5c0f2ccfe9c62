package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shorty/internal/ratelimit"
)

// BearerAuth is the security scheme name of API-key protected operations.
const BearerAuth = "bearer"

var bearerSecurity = []map[string][]string{{BearerAuth: {}}}

// RegisterSecurityScheme declares the bearer API key scheme in the OpenAPI
// document.
func RegisterSecurityScheme(api huma.API) {
	components := api.OpenAPI().Components
	if components.SecuritySchemes == nil {
		components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}

	components.SecuritySchemes[BearerAuth] = &huma.SecurityScheme{
		Type:        "http",
		Scheme:      "bearer",
		Description: "Account API key",
	}
}

// RegisterRoutes registers the link routes with their rate limit configuration.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	RegisterSecurityScheme(api)

	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/api/v1/shorten",
		Summary:     "Create short link",
		Description: "Stores the URL under the requested id, or a random 12 character id when none is given.",
		Tags:        []string{"Links"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 60},
					{Window: 24 * time.Hour, Max: 5000},
				},
			},
		},
	}, h.CreateShortURL)

	// Redirects are public and pinned to the read scope.
	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{id}",
		Summary:       "Follow short link",
		Description:   "Counts the view and redirects to the stored URL.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.Redirect)

	huma.Register(api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/{id}",
		Summary:     "Link statistics",
		Tags:        []string{"Links"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, h.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "delete",
		Method:      http.MethodPost,
		Path:        "/api/v1/delete/{id}",
		Summary:     "Delete link",
		Tags:        []string{"Links"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/v1/links",
		Summary:     "List own links",
		Tags:        []string{"Links"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusUnauthorized},
	}, h.List)
}
