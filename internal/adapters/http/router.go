// Package http exposes the reward engine over a JSON REST API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/view-reward-engine/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })

	r.Route("/v1/rewards", func(r chi.Router) {
		r.Get("/config", handler.getConfig)
		r.Put("/config", handler.updateConfig)

		r.Post("/events/video-watched", handler.videoWatched)

		r.Route("/videos", func(r chi.Router) {
			r.Post("/bulk-stats", handler.bulkVideoStats)
			r.Get("/{video_id}/stats", handler.getVideoStats)
			r.Get("/{video_id}/count", handler.getViewCount)
			r.Get("/{video_id}/views", handler.listVideoViews)
		})

		r.Route("/users/{user_id}", func(r chi.Router) {
			r.Get("/views", handler.listUserViews)
			r.Get("/rewards", handler.listUserRewards)
		})

		r.Route("/creators/{creator_id}", func(r chi.Router) {
			r.Get("/rewards", handler.listCreatorRewards)
			r.Get("/shadow-ban", handler.shadowBanStatus)
			r.Post("/shadow-ban", handler.shadowBanCreator)
			r.Delete("/shadow-ban", handler.removeShadowBan)
		})
	})
	return r
}
