package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/ai-search-backend/internal/search/biz"
	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"
)

const (
	defaultMaxResults = 5
	maxMaxResults     = 20
)

// SearchService exposes the search orchestrator over HTTP.
type SearchService struct {
	uc     *biz.SearchUseCase
	logger *zap.Logger
}

func NewSearchService(uc *biz.SearchUseCase, logger *zap.Logger) *SearchService {
	return &SearchService{uc: uc, logger: logger}
}

// Search handles GET /search.
//
// Query parameters:
//
//	q            the search query (required)
//	provider     searxng | google | tavily | auto (default auto)
//	max_results  1..20 (default 5)
//	newest_first prefer recent pages (default false)
//	use_cache    serve and populate the caches (default true)
func (s *SearchService) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter 'q'"})
		return
	}

	maxResults := defaultMaxResults
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMaxResults {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be between 1 and 20"})
			return
		}
		maxResults = n
	}

	useCache := true
	if raw := c.Query("use_cache"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "use_cache must be a boolean"})
			return
		}
		useCache = v
	}

	newestFirst := false
	if raw := c.Query("newest_first"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "newest_first must be a boolean"})
			return
		}
		newestFirst = v
	}

	req := &types.SearchRequest{
		Query:       query,
		MaxResults:  maxResults,
		NewestFirst: newestFirst,
	}
	providerID := types.ProviderID(c.DefaultQuery("provider", string(types.ProviderAuto)))

	var (
		response *types.SearchResponse
		err      error
	)
	if useCache {
		response, err = s.uc.SearchWithCache(c.Request.Context(), req, providerID)
	} else {
		response, err = s.uc.SearchWithoutCache(c.Request.Context(), req, providerID)
	}
	if err != nil {
		s.respondError(c, query, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *SearchService) respondError(c *gin.Context, query string, err error) {
	switch {
	case errors.Is(err, types.ErrProviderNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
	case isProviderError(err):
		s.logger.Error("search provider failed",
			zap.String("query", query),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search provider unavailable"})
	default:
		s.logger.Error("search failed",
			zap.String("query", query),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
	}
}

func isProviderError(err error) bool {
	var perr *types.ProviderError
	return errors.As(err, &perr)
}

func (s *SearchService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/search", s.Search)
}
