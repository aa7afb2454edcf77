package middleware

import (
	"net/http"

	corslib "github.com/rs/cors"
)

// CORS lets the browser editor on the listed origins call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := corslib.New(corslib.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Cache-Control"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler
}
