package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-ai/inkwell-api/internal/api/shared"
	"github.com/inkwell-ai/inkwell-api/internal/cache"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/service"
)

// CacheHandler exposes cache management for the blog pipelines: stats,
// clearing, and targeted invalidation, scoped per key namespace.
type CacheHandler struct {
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCacheHandler creates a new CacheHandler over the given cache.
func NewCacheHandler(contentCache *cache.Cache, logger *slog.Logger) *CacheHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheHandler{
		cache:  contentCache,
		logger: logger.With(slog.String("component", "cache_handler")),
	}
}

// ResearchStats handles GET /api/blog/cache/stats.
func (h *CacheHandler) ResearchStats(w http.ResponseWriter, r *http.Request) {
	h.namespaceStats(w, r, service.ResearchCacheNamespace)
}

// OutlineStats handles GET /api/blog/cache/outline/stats.
func (h *CacheHandler) OutlineStats(w http.ResponseWriter, r *http.Request) {
	h.namespaceStats(w, r, service.OutlineCacheNamespace)
}

// ClearResearch handles DELETE /api/blog/cache/clear.
func (h *CacheHandler) ClearResearch(w http.ResponseWriter, r *http.Request) {
	h.clearNamespace(w, r, service.ResearchCacheNamespace)
}

// ClearOutline handles DELETE /api/blog/cache/outline/clear.
func (h *CacheHandler) ClearOutline(w http.ResponseWriter, r *http.Request) {
	h.clearNamespace(w, r, service.OutlineCacheNamespace)
}

// InvalidateResearch handles POST /api/blog/cache/invalidate. The body names
// the keyword set whose cached research should be dropped.
func (h *CacheHandler) InvalidateResearch(w http.ResponseWriter, r *http.Request) {
	var req InvalidateResearchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if len(req.Keywords) == 0 {
		HandleAPIError(w, r, domain.ErrNoKeywords, "")
		return
	}

	h.invalidateKey(w, r, service.ResearchCacheKey(req.Keywords))
}

// InvalidateOutline handles POST /api/blog/cache/outline/invalidate.
func (h *CacheHandler) InvalidateOutline(w http.ResponseWriter, r *http.Request) {
	var req InvalidateOutlineRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if len(req.Keywords) == 0 {
		HandleAPIError(w, r, domain.ErrNoKeywords, "")
		return
	}

	key := service.OutlineCacheKey(domain.OutlineRequest{
		Research:    &domain.ResearchResult{Keywords: req.Keywords},
		Title:       req.Title,
		Tone:        req.Tone,
		TargetWords: req.TargetWords,
	})
	h.invalidateKey(w, r, key)
}

func (h *CacheHandler) namespaceStats(w http.ResponseWriter, r *http.Request, namespace string) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read cache stats")
		return
	}
	entries, err := h.cache.CountMatching(r.Context(), namespaceMatch(namespace))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read cache stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CacheStatsResponse{
		Namespace: namespace,
		Entries:   entries,
		Stats:     stats,
	})
}

func (h *CacheHandler) clearNamespace(w http.ResponseWriter, r *http.Request, namespace string) {
	removed, err := h.cache.InvalidateMatching(r.Context(), namespaceMatch(namespace))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear cache")
		return
	}

	h.logger.Info("cache namespace cleared",
		slog.String("namespace", namespace),
		slog.Int("removed", removed))
	shared.RespondWithJSON(w, r, http.StatusOK, CacheClearResponse{Invalidated: removed})
}

func (h *CacheHandler) invalidateKey(w http.ResponseWriter, r *http.Request, key string) {
	removed, err := h.cache.InvalidateMatching(r.Context(), func(k string) bool { return k == key })
	if err != nil {
		HandleAPIError(w, r, err, "Failed to invalidate cache entry")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CacheClearResponse{Invalidated: removed})
}

// namespaceMatch matches keys produced by cache.Key for the given namespace.
func namespaceMatch(namespace string) func(key string) bool {
	prefix := namespace + ":"
	return func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}
}
