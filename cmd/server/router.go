package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-ai/inkwell-api/internal/api"
	apiMiddleware "github.com/inkwell-ai/inkwell-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	blogHandler := api.NewBlogHandler(app.blogService, app.registry, app.logger)
	storyHandler := api.NewStoryHandler(app.storyService, app.registry, app.logger)
	podcastHandler := api.NewPodcastHandler(app.podcastService, app.registry, app.logger)
	cacheHandler := api.NewCacheHandler(app.contentCache, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Blog pipeline endpoints
			r.Post("/blog/research/start", blogHandler.StartResearch)
			r.Get("/blog/research/status/{taskID}", blogHandler.ResearchStatus)
			r.Post("/blog/outline/start", blogHandler.StartOutline)
			r.Get("/blog/outline/status/{taskID}", blogHandler.OutlineStatus)
			r.Post("/blog/content/start", blogHandler.StartContent)
			r.Get("/blog/content/status/{taskID}", blogHandler.ContentStatus)

			// Cache management endpoints
			r.Get("/blog/cache/stats", cacheHandler.ResearchStats)
			r.Delete("/blog/cache/clear", cacheHandler.ClearResearch)
			r.Post("/blog/cache/invalidate", cacheHandler.InvalidateResearch)
			r.Get("/blog/cache/outline/stats", cacheHandler.OutlineStats)
			r.Delete("/blog/cache/outline/clear", cacheHandler.ClearOutline)
			r.Post("/blog/cache/outline/invalidate", cacheHandler.InvalidateOutline)

			// Story video endpoints
			r.Post("/story/video/start", storyHandler.StartVideo)
			r.Get("/story/video/status/{taskID}", storyHandler.VideoStatus)

			// Podcast endpoints
			r.Post("/podcast/script/start", podcastHandler.StartEpisode)
			r.Get("/podcast/script/status/{taskID}", podcastHandler.EpisodeStatus)
		})
	})

	// Generated media is served from the local store.
	r.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(app.mediaStore.Dir()))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
