package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/", c.serveIndex)
	r.Get("/ws", c.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/preview", c.getPreview)
		r.Route("/spotify", func(r chi.Router) {
			r.Get("/token", c.getStreamingToken)
			r.Get("/playlist/{playlist-id}", c.getStreamingPlaylist)
		})
		r.Route("/v1", func(r chi.Router) {
			r.Get("/healthz", c.healthz)
		})
	})

	return r
}
