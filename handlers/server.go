package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/stats"
)

// Service identity reported by the root endpoint
const (
	ServiceName    = "DeFi Reputation Scoring Server"
	ServiceVersion = "1.0.0"
)

// NewRouter builds the gin router with root, health and stats endpoints.
// The router only reads the stats tracker; it shares no other state with
// the processor.
func NewRouter(tracker *stats.Tracker, status func() string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": ServiceName,
			"version": ServiceVersion,
			"status":  status(),
		})
	})

	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/v1/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Snapshot())
	})

	return r
}

// NewServer wraps the router in an http.Server bound to the given port
func NewServer(port int, tracker *stats.Tracker, status func() string) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: NewRouter(tracker, status),
	}
}
