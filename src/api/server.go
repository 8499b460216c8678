// Package api 以 JSON 形式通过 HTTP 暴露推文查询
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"AirlineSentiment/src/processor"
	"AirlineSentiment/src/storage"
)

type Server struct {
	echo         *echo.Echo
	addr         string
	proc         *processor.TweetProcessor
	logger       *storage.Logger
	registry     *prometheus.Registry
	httpMetrics  *HTTPMetrics
	queryMetrics *QueryMetrics
	startTime    time.Time
}

func NewServer(addr string, proc *processor.TweetProcessor, logger *storage.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := NewRegistry()
	srv := &Server{
		echo:         e,
		addr:         addr,
		proc:         proc,
		logger:       logger,
		registry:     reg,
		httpMetrics:  NewHTTPMetrics(reg),
		queryMetrics: NewQueryMetrics(reg),
		startTime:    time.Now(),
	}

	e.HTTPErrorHandler = srv.errorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				logger.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.Warning("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(srv.httpMetrics.Middleware())

	srv.registerRoutes()
	return srv
}

// Handler 测试与嵌入使用
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start 阻塞直到服务关闭；Shutdown 之后返回 nil
func (s *Server) Start() error {
	s.logger.Info("HTTP 服务启动", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
