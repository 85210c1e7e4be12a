package middlewares

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows any origin: the widget script is embedded on customer
// storefronts, so the set of origins is unknowable in advance. The
// user handle is not a credential, so no cookies are involved.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}
