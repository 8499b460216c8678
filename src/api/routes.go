package api

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(MetricsHandler(s.registry)))
	s.echo.GET("/logs", s.handleLogs)

	g := s.echo.Group("/api")
	g.GET("/tweets/random", s.handleRandomTweet)
	g.GET("/sentiments", s.handleSentimentCounts)
	g.GET("/hours/:hour", s.handleHour)
	g.GET("/airlines/breakdown", s.handleBreakdown)
	g.GET("/wordcloud/:sentiment", s.handleWordCloud)
	g.GET("/dashboard", s.handleDashboard)
	g.GET("/export.xlsx", s.handleExport)
}
