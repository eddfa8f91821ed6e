package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-api/internal/cache"
	"github.com/inkwell-ai/inkwell-api/internal/config"
	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// Cache key namespaces for the blog pipelines. Exported so the cache
// management endpoints can scope stats and invalidation per pipeline.
const (
	ResearchCacheNamespace = "research"
	OutlineCacheNamespace  = "outline"
)

// BlogService orchestrates the blog writing pipelines: keyword research,
// outline planning, and full content generation. Research and outline
// results are cached so repeated requests with the same normalized inputs
// skip the provider entirely.
type BlogService struct {
	generator generation.TextGenerator
	cache     *cache.Cache
	executor  *task.Executor
	emitter   events.EventEmitter
	cacheCfg  config.CacheConfig
	logger    *slog.Logger
}

// NewBlogService creates a BlogService with the given dependencies.
// The emitter may be nil, which disables asset tracking.
func NewBlogService(
	generator generation.TextGenerator,
	contentCache *cache.Cache,
	executor *task.Executor,
	emitter events.EventEmitter,
	cacheCfg config.CacheConfig,
	logger *slog.Logger,
) (*BlogService, error) {
	if generator == nil {
		return nil, errors.New("text generator cannot be nil")
	}
	if contentCache == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if executor == nil {
		return nil, errors.New("task executor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BlogService{
		generator: generator,
		cache:     contentCache,
		executor:  executor,
		emitter:   emitter,
		cacheCfg:  cacheCfg,
		logger:    logger.With(slog.String("component", "blog_service")),
	}, nil
}

// StartResearch validates the request and launches a background research
// task, returning its ID immediately.
func (s *BlogService) StartResearch(ctx context.Context, req domain.ResearchRequest, userID string) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	stages := []task.Stage{
		{
			Name:  "Researching keywords",
			Start: 0,
			End:   100,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				return s.research(ctx, req, userID, report)
			},
		},
	}
	return s.executor.Launch(task.TypeResearch, stages, nil)
}

// StartOutline validates the request and launches a background outline
// planning task, returning its ID immediately.
func (s *BlogService) StartOutline(ctx context.Context, req domain.OutlineRequest, userID string) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	stages := []task.Stage{
		{
			Name:  "Planning outline",
			Start: 0,
			End:   100,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				return s.outline(ctx, req, userID, report)
			},
		},
	}
	return s.executor.Launch(task.TypeOutline, stages, nil)
}

// StartContent validates the request and launches full content generation:
// one stage writes every planned section, a short final stage assembles the
// post. The completed result is announced for asset tracking.
func (s *BlogService) StartContent(ctx context.Context, req domain.ContentRequest, userID string) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	var sections []domain.BlogSection
	var model string
	stages := []task.Stage{
		{
			Name:  "Writing sections",
			Start: 0,
			End:   90,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				total := len(req.Sections)
				for i, planned := range req.Sections {
					report(float64(i)/float64(total)*100,
						fmt.Sprintf("Writing section %d/%d: %s", i+1, total, planned.Heading))

					written, usedModel, err := s.writeSection(ctx, req, planned, userID)
					if err != nil {
						return nil, err
					}
					sections = append(sections, *written)
					model = usedModel
				}
				return nil, nil
			},
		},
		{
			Name:  "Assembling post",
			Start: 90,
			End:   100,
			Run: func(ctx context.Context, report generation.ProgressFunc) (any, error) {
				result := &domain.BlogResult{
					Title:    req.Title,
					Sections: sections,
					Model:    model,
				}
				s.logger.Info("blog content assembled",
					slog.Int("sections", len(sections)),
					slog.Int("word_count", result.WordCount()))
				return result, nil
			},
		},
	}
	return s.executor.Launch(task.TypeContentGeneration, stages, contentCompletion(s.emitter, s.logger, userID))
}

// ResearchCacheKey returns the deterministic cache key for a keyword set.
func ResearchCacheKey(keywords []string) string {
	return cache.Key(ResearchCacheNamespace, domain.NormalizeKeywords(keywords)...)
}

// OutlineCacheKey returns the deterministic cache key for an outline request.
func OutlineCacheKey(req domain.OutlineRequest) string {
	parts := domain.NormalizeKeywords(req.Research.Keywords)
	parts = append(parts, req.Title, req.Tone, strconv.Itoa(req.TargetWords))
	return cache.Key(OutlineCacheNamespace, parts...)
}

func (s *BlogService) research(ctx context.Context, req domain.ResearchRequest, userID string, report generation.ProgressFunc) (*domain.ResearchResult, error) {
	key := ResearchCacheKey(req.Keywords)

	var cached domain.ResearchResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("research cache read failed", slog.String("error", err.Error()))
	}
	if hit {
		report(100, "Loaded research from cache")
		return &cached, nil
	}

	report(20, "Analyzing keywords")
	result, err := s.generator.Generate(ctx, generation.Request{
		Prompt: buildResearchPrompt(req),
		Schema: researchSchema,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}

	var research domain.ResearchResult
	if err := result.Decode(&research); err != nil {
		return nil, err
	}
	if len(research.Keywords) == 0 {
		research.Keywords = req.NormalizedKeywords()
	}

	report(90, "Caching research results")
	ttl := time.Duration(s.cacheCfg.ResearchTTLSeconds) * time.Second
	if err := s.cache.Set(ctx, key, &research, ttl); err != nil {
		// Cache writes are best effort.
		s.logger.Warn("research cache write failed", slog.String("error", err.Error()))
	}
	return &research, nil
}

func (s *BlogService) outline(ctx context.Context, req domain.OutlineRequest, userID string, report generation.ProgressFunc) (*domain.Outline, error) {
	key := OutlineCacheKey(req)

	var cached domain.Outline
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("outline cache read failed", slog.String("error", err.Error()))
	}
	if hit {
		report(100, "Loaded outline from cache")
		return &cached, nil
	}

	report(20, "Structuring sections")
	result, err := s.generator.Generate(ctx, generation.Request{
		Prompt: buildOutlinePrompt(req),
		Schema: outlineSchema,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}

	var outline domain.Outline
	if err := result.Decode(&outline); err != nil {
		return nil, err
	}
	if len(outline.Sections) == 0 {
		return nil, fmt.Errorf("%w: outline has no sections", generation.ErrInvalidResponse)
	}

	report(90, "Caching outline")
	ttl := time.Duration(s.cacheCfg.OutlineTTLSeconds) * time.Second
	if err := s.cache.Set(ctx, key, &outline, ttl); err != nil {
		s.logger.Warn("outline cache write failed", slog.String("error", err.Error()))
	}
	return &outline, nil
}

func (s *BlogService) writeSection(ctx context.Context, req domain.ContentRequest, planned domain.OutlineSection, userID string) (*domain.BlogSection, string, error) {
	result, err := s.generator.Generate(ctx, generation.Request{
		Prompt: buildSectionPrompt(req, planned),
		Schema: sectionSchema,
		UserID: userID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("section %q: %w", planned.Heading, err)
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := result.Decode(&body); err != nil {
		return nil, "", fmt.Errorf("section %q: %w", planned.Heading, err)
	}

	section := &domain.BlogSection{
		ID:        planned.ID,
		Heading:   planned.Heading,
		Content:   body.Content,
		WordCount: countWords(body.Content),
	}
	return section, result.Model, nil
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
