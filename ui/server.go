package ui

import (
	"context"
	"net/http"
	"time"

	"quotefill/app"
	"quotefill/ui/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server serves the quotation API used by the browser extension
type Server struct {
	router         *gin.Engine
	fillService    *app.FillService
	quoteService   *app.QuoteService
	editService    *app.EditService
	logger         *zap.Logger
	maxUploadBytes int64
}

// Services bundles the application services the API exposes
type Services struct {
	Fill  *app.FillService
	Quote *app.QuoteService
	Edit  *app.EditService
}

// NewServer creates a server with all routes registered
func NewServer(services Services, maxUploadBytes int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:         gin.New(),
		fillService:    services.Fill,
		quoteService:   services.Quote,
		editService:    services.Edit,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
	s.router.MaxMultipartMemory = maxUploadBytes
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(s.logger),
		middleware.Recovery(s.logger),
		middleware.LimitBody(s.maxUploadBytes),
		corsMiddleware(),
	)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	quote := s.router.Group("/api/quote")
	{
		quote.GET("/layout", s.handleLayout)
		quote.GET("/runs", s.handleRuns)
		quote.POST("/fill", s.handleFill)
		quote.POST("/fill-coupang", s.handleFillBatch)
		quote.POST("/inspect", s.handleInspect)
		quote.POST("/generate", s.handleGenerate)
		quote.POST("/edit-excel", s.handleEditExcel)
	}
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// corsMiddleware lets the browser extension call the API from any origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, "+middleware.RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
