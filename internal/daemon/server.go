package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the daemon's localhost API; client subcommands (`auto-sync
// status`, `history`, `stop`) and a manual trigger talk to it.
type Server struct {
	echo     *echo.Echo
	daemon   *Daemon
	histRepo *repository.HistoryRepository
	port     int
}

func NewServer(d *Daemon, histRepo *repository.HistoryRepository, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		daemon:   d,
		histRepo: histRepo,
		port:     port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/sync", s.handleSync)
	s.echo.GET("/history", s.handleHistory)
	s.echo.POST("/stop", s.handleStop)
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.port)
		logger.Log.Info("daemon api started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("daemon api error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.daemon.Snapshot())
}

func (s *Server) handleSync(c echo.Context) error {
	force := c.QueryParam("force") == "true"

	report, err := s.daemon.RunCycle(c.Request().Context(), force)
	if err != nil {
		if errors.Is(err, model.ErrCycleInProgress) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"outcome":    report.Outcome,
		"revision":   report.Revision,
		"applied":    report.Applied(),
		"conflicted": report.Conflicted,
		"failed":     len(report.Failed()),
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil {
			n = parsed
		}
	}

	cycles, err := s.histRepo.GetRecent(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, cycles)
}

func (s *Server) handleStop(c echo.Context) error {
	s.daemon.RequestStop()
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}
