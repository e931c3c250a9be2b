package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options tune the router.
type Options struct {
	// AuthRatePerMinute limits register and login attempts per client IP.
	AuthRatePerMinute int
}

// NewRouter builds the echo instance serving the API.
func NewRouter(h *Handler, opts Options) *echo.Echo {
	if opts.AuthRatePerMinute <= 0 {
		opts.AuthRatePerMinute = 10
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.errorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(h.log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))

	e.GET("/healthz", h.health)

	limited := newIPLimiter(opts.AuthRatePerMinute).middleware()
	e.POST("/register", h.register, limited)
	e.POST("/login", h.login, limited)

	authed := requireSession(h.sessions)
	e.POST("/logout", h.logout, authed)
	e.GET("/board", h.board, authed)
	e.GET("/columns", h.listColumns, authed)
	e.GET("/tasks", h.listTasks, authed)
	e.POST("/tasks", h.addTask, authed)
	e.PATCH("/tasks/:id", h.updateTask, authed)
	e.DELETE("/tasks/:id", h.deleteTask, authed)

	return e
}

// Serve runs the router on addr until ctx is cancelled, then drains
// in-flight requests.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = time.Minute

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
