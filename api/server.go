package api

import (
	"net/http"

	"ideaforge/config"
	"ideaforge/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the artifact session id on requests and responses
const SessionHeader = "X-Session-ID"

// NewAnalysisRouter constructs the idea-analysis engine. Every origin is
// allowed.
func NewAnalysisRouter(deps AnalysisDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", SessionHeader}
	corsCfg.ExposeHeaders = []string{SessionHeader}
	r.Use(cors.New(corsCfg))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "FastAPI Idea Validation API is running!"})
	})
	RegisterAnalysisRoutes(r, newAnalysisHandler(deps))
	return r
}

// NewNewsRouter constructs the news engine. Only origins pass CORS; an empty
// list means the local frontend.
func NewNewsRouter(deps NewsDeps, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware())

	if len(origins) == 0 {
		origins = []string{config.DefaultNewsOrigin}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "FastAPI News App is running!"})
	})
	RegisterNewsRoutes(r, newNewsHandler(deps))
	return r
}
