package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/recycling-guide-go/internal/config"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/service"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// MsgAnalysisFailed is returned for any unexpected classification failure
const MsgAnalysisFailed = "failed to analyze image"

func NewHandler(svc service.RecyclingService, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestID(),
		requestMetrics(),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(
		rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)
	api.POST("/analyze", analyzeImage(svc, cfg))
	api.POST("/analyze/reselect", reselectAlternative(svc))
	api.GET("/catalog", listCatalog(svc))
	api.GET("/catalog/:id", getCatalogItem(svc))
	api.GET("/guide", searchGuide(svc))
	api.GET("/guide/check", checkRecyclable(svc))

	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(r)
}

func analyzeImage(svc service.RecyclingService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		result, err := svc.Analyze(ctx, req.Image)
		if err != nil {
			respondAppError(c, err, MsgAnalysisFailed)
			return
		}

		logger.WithContext(ctx).WithFields(logrus.Fields{
			"item_id":      result.Item.ID,
			"confidence":   result.Item.Confidence,
			"alternatives": len(result.Alternatives),
		}).Info("Image analysis completed")

		c.JSON(http.StatusOK, result)
	}
}

func reselectAlternative(svc service.RecyclingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReselectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		result, err := svc.Reselect(req.Result, req.AlternativeID)
		if err != nil {
			respondAppError(c, err, "failed to reselect alternative")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listCatalog(svc service.RecyclingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Catalog())
	}
}

func getCatalogItem(svc service.RecyclingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.CatalogItem(c.Param("id"))
		if err != nil {
			respondAppError(c, err, "failed to load catalog item")
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func searchGuide(svc service.RecyclingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuzzy, err := strconv.ParseBool(c.DefaultQuery("fuzzy", "false"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "fuzzy must be true or false", err)
			return
		}
		c.JSON(http.StatusOK, svc.Guide(c.Query("q"), fuzzy))
	}
}

func checkRecyclable(svc service.RecyclingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		check, err := svc.CheckRecyclable(c.Query("item"))
		if err != nil {
			respondAppError(c, err, "failed to check item")
			return
		}
		c.JSON(http.StatusOK, check)
	}
}

func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
		return
	}
	respondError(c, http.StatusBadRequest, "invalid request format", err)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
