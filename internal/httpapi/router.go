package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyreport/internal/logger"
)

// RouterConfig wires the router.
type RouterConfig struct {
	Log     *logger.Logger
	Reports *ReportHandler

	// Ping backs /healthz; nil reports healthy unconditionally.
	Ping func(context.Context) error
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLog(logger.OrNop(cfg.Log)))

	router.GET("/healthz", HealthCheck(cfg.Ping))

	users := router.Group("/v1/users/:userID")
	{
		users.POST("/reports", cfg.Reports.Generate)
		users.GET("/progress", cfg.Reports.Progress)
		users.GET("/categories/:category/report", cfg.Reports.CategoryReport)
		users.DELETE("/categories/:category", cfg.Reports.DeleteCategory)
	}
	return router
}

func requestLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}

// Serve runs router on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, log *logger.Logger, addr string, router http.Handler) error {
	log = logger.OrNop(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
