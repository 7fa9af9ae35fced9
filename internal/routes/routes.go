package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/handlers"
)

// Setup wires the catalog API onto the router.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, logger *zap.Logger) {
	repo := catalog.NewRepository(dbPool, logger)
	h := handlers.NewCatalogHandler(repo, logger)

	r.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/regions", h.ListRegions)
		v1.GET("/destinations", h.ListDestinations)
		v1.GET("/destinations/:id", h.GetDestination)
		v1.GET("/destinations/:id/itinerary", h.GetDestinationItinerary)
		v1.GET("/destinations/:id/experiences", h.ListDestinationExperiences)
		v1.GET("/collections", h.ListCollections)
		v1.GET("/collections/:slug", h.GetCollection)
		v1.GET("/snowbird", h.ListSnowbirdDestinations)
		v1.GET("/snowbird/:id", h.GetSnowbirdDestination)
	}
}
