package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.GameHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/state", handler.State)
	r.PUT("/view", handler.SetView)

	r.GET("/market", handler.Market)
	r.POST("/eggs", handler.BuyEgg)
	r.POST("/eggs/:id/hatch", handler.HatchEgg)

	r.GET("/portfolio", handler.Portfolio)

	lab := r.Group("/lab")
	lab.POST("/selection/:animalId", handler.ToggleSelection)
	lab.DELETE("/slots/:slot", handler.ClearSlot)
	lab.POST("/breed", handler.InitiateBreed)
	lab.POST("/breed/confirm", handler.ConfirmBreed)
	lab.POST("/breed/cancel", handler.CancelBreed)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
