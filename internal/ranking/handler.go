package ranking

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler serves formats and rankings. cache may be nil.
type Handler struct {
	service  *Service
	cache    ResponseCache
	pageSize int
}

func NewHandler(service *Service, cache ResponseCache, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Handler{service: service, cache: cache, pageSize: pageSize}
}

func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("ranking request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// intParam parses a path or query value as an integer.
func intParam(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s %q is not an integer", name, raw)
	}
	return v, nil
}

// serveCached answers from the response cache when possible and fills it
// on a miss. Cache failures only cost the shortcut.
func serveCached[T any](h *Handler, c *gin.Context, key string, build func(ctx context.Context) (*T, error)) {
	ctx := c.Request.Context()
	if h.cache != nil {
		var cached T
		hit, err := h.cache.Fetch(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("response cache read failed")
		} else if hit {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	value, err := build(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Store(ctx, key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("response cache write failed")
		}
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, value)
}

// --- Handlers ---

// ListFormats returns the visible formats and categories.
func (h *Handler) ListFormats(c *gin.Context) {
	serveCached(h, c, "formats", h.service.Formats)
}

// ListRankings returns a page of /rankings/:cup/:cp/:category?page=N.
func (h *Handler) ListRankings(c *gin.Context) {
	cup, category := c.Param("cup"), c.Param("category")
	cp, err := intParam("cp", c.Param("cp"))
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := intParam("page", c.DefaultQuery("page", "1"))
	if err != nil {
		respondError(c, err)
		return
	}

	key := fmt.Sprintf("list:%s:%d:%s:%d:%d", cup, cp, category, page, h.pageSize)
	serveCached(h, c, key, func(ctx context.Context) (*Listing, error) {
		return h.service.List(ctx, cup, cp, category, page, h.pageSize)
	})
}

// GetRanking returns one row of /rankings/:cup/:cp/:category/:position.
func (h *Handler) GetRanking(c *gin.Context) {
	cup, category := c.Param("cup"), c.Param("category")
	cp, err := intParam("cp", c.Param("cp"))
	if err != nil {
		respondError(c, err)
		return
	}
	position, err := intParam("position", c.Param("position"))
	if err != nil {
		respondError(c, err)
		return
	}
	if position < 1 {
		respondError(c, apperr.Domain("position %d, want >= 1", position))
		return
	}

	key := fmt.Sprintf("detail:%s:%d:%s:%d", cup, cp, category, position)
	serveCached(h, c, key, func(ctx context.Context) (*Detail, error) {
		return h.service.Detail(ctx, cup, cp, category, position)
	})
}
