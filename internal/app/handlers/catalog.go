package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

const listCacheTTL = 5 * time.Minute

// CatalogHandler serves the read-only catalog API. List endpoints are cached
// briefly since the catalog only changes when an enrichment run lands.
type CatalogHandler struct {
	repo   catalog.Repository
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewCatalogHandler(repo catalog.Repository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:   repo,
		cache:  gocache.New(listCacheTTL, 10*time.Minute),
		logger: logger,
	}
}

func (h *CatalogHandler) ListRegions(c *gin.Context) {
	if cached, found := h.cache.Get("regions"); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	regions, err := h.repo.ListRegions(c.Request.Context())
	if err != nil {
		h.fail(c, "listing regions", err)
		return
	}
	h.cache.SetDefault("regions", regions)
	c.JSON(http.StatusOK, regions)
}

func (h *CatalogHandler) ListDestinations(c *gin.Context) {
	filter := catalog.DestinationFilter{Limit: 100}

	if raw := c.Query("region"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid region id"})
			return
		}
		filter.RegionID = id
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid featured flag"})
			return
		}
		filter.Featured = &featured
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	destinations, err := h.repo.ListDestinations(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "listing destinations", err)
		return
	}
	c.JSON(http.StatusOK, destinations)
}

func (h *CatalogHandler) GetDestination(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination id"})
		return
	}

	destination, err := h.repo.GetDestination(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "fetching destination", err)
		return
	}
	c.JSON(http.StatusOK, destination)
}

func (h *CatalogHandler) GetDestinationItinerary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination id"})
		return
	}

	itinerary, err := h.repo.GetItineraryByDestination(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "fetching itinerary", err)
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

func (h *CatalogHandler) ListDestinationExperiences(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination id"})
		return
	}

	experiences, err := h.repo.ListExperiences(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "listing experiences", err)
		return
	}
	c.JSON(http.StatusOK, experiences)
}

func (h *CatalogHandler) ListCollections(c *gin.Context) {
	if cached, found := h.cache.Get("collections"); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	collections, err := h.repo.ListCollections(c.Request.Context())
	if err != nil {
		h.fail(c, "listing collections", err)
		return
	}
	h.cache.SetDefault("collections", collections)
	c.JSON(http.StatusOK, collections)
}

func (h *CatalogHandler) GetCollection(c *gin.Context) {
	collection, err := h.repo.GetCollectionBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "fetching collection", err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

func (h *CatalogHandler) ListSnowbirdDestinations(c *gin.Context) {
	if cached, found := h.cache.Get("snowbird"); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	guides, err := h.repo.ListSnowbirdDestinations(c.Request.Context())
	if err != nil {
		h.fail(c, "listing snowbird destinations", err)
		return
	}
	h.cache.SetDefault("snowbird", guides)
	c.JSON(http.StatusOK, guides)
}

func (h *CatalogHandler) GetSnowbirdDestination(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snowbird id"})
		return
	}

	guide, err := h.repo.GetSnowbirdDestination(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "fetching snowbird destination", err)
		return
	}
	c.JSON(http.StatusOK, guide)
}

func (h *CatalogHandler) fail(c *gin.Context, action string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.logger.Error("Catalog request failed", zap.String("action", action), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
