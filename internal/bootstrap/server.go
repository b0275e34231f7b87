package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gdsingh/skybook/api"
	"github.com/gdsingh/skybook/config"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/gdsingh/skybook/internal/service/booking"
	"github.com/gdsingh/skybook/internal/service/reset"
	"github.com/gdsingh/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
)

// DBHealth is the slice of the connection pool the health endpoint needs.
type DBHealth interface {
	HealthCheck(ctx context.Context) error
	Stats() pgdb.PoolStats
}

var _ DBHealth = (*pgdb.Pool)(nil)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	db DBHealth,
	bookingSvc booking.BookingUseCase,
	resetSvc reset.ResetUseCase,
	userSvc users.UserUseCase,
) error {
	router := newRouter(db, bookingSvc, resetSvc, userSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	db DBHealth,
	bookingSvc booking.BookingUseCase,
	resetSvc reset.ResetUseCase,
	userSvc users.UserUseCase,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), api.RequestID())

	router.GET("/healthz", func(c *gin.Context) {
		stats := db.Stats()
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error(), "pool": stats})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "pool": stats})
	})

	public := router.Group("/api")
	api.NewUserHandler(userSvc).Register(public)
	api.NewFlightHandler(bookingSvc).Register(public)
	api.NewResetHandler(resetSvc).Register(public)

	authed := router.Group("/api")
	authed.Use(api.Auth(userSvc))
	api.NewBookingHandler(bookingSvc).Register(authed)

	return router
}
