// Package httpapi serves the task views and operations over HTTP for a
// browser client, including a server-sent change feed.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/repository"
	"github.com/qcteam/teamcal/internal/usecase"
)

const logCategory = "http"

// Feed exposes the repository's change notifications and sync state.
type Feed interface {
	OnChange(fn func()) (cancel func())
	Backend() repository.Backend
	RemoteReady() bool
	Unsynced() []string
}

// Deps holds what the handlers need.
type Deps struct {
	Feed          Feed
	Logger        domain.Logger
	NewTask       *usecase.NewTask
	EditTask      *usecase.EditTask
	ListTasks     *usecase.ListTasks
	ShowTask      *usecase.ShowTask
	ChangeStatus  *usecase.ChangeStatus
	DeleteTask    *usecase.DeleteTask
	Confirmations *usecase.ResolveConfirmation
	DailyView     *usecase.DailyView
	CalendarMonth *usecase.CalendarMonth
	DoneReport    *usecase.DoneReport
	WeeklyCleanup *usecase.WeeklyCleanup
	Maintenance   *usecase.RunMaintenance
}

// Server is the HTTP API.
type Server struct {
	engine *gin.Engine
	log    domain.Logger
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = domain.NopLogger{}
	}
	h := &Handler{deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "teamcal is running",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/status", h.Status)
		api.GET("/events", h.Events)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", h.CreateTask)
			tasks.GET("/:id", h.GetTask)
			tasks.PATCH("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
			tasks.POST("/:id/status", h.ChangeStatus)
		}

		confirmations := api.Group("/confirmations")
		{
			confirmations.GET("/pending", h.PendingConfirmation)
			confirmations.POST("/:token", h.ResolveConfirmation)
			confirmations.DELETE("/:token", h.CancelConfirmation)
		}

		api.GET("/views/daily", h.DailyView)
		api.GET("/views/calendar", h.CalendarView)
		api.GET("/reports/done", h.DoneReport)
		api.GET("/settings/weekly-cleanup", h.GetWeeklyCleanup)
		api.PUT("/settings/weekly-cleanup", h.SetWeeklyCleanup)
		api.POST("/maintenance", h.RunMaintenance)
	}

	return &Server{engine: r, log: deps.Logger}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
// Request contexts derive from ctx so open event streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("", logCategory, fmt.Sprintf("listening on %s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger writes one debug line per request and one error line per handler error.
func requestLogger(log domain.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("", logCategory, fmt.Sprintf("%s %s %d %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond)))
		for _, e := range c.Errors {
			log.Error("", logCategory, fmt.Sprintf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err))
		}
	}
}
