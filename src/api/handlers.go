package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/labstack/echo/v4"

	"AirlineSentiment/src/processor"
	"AirlineSentiment/src/utils"
)

const operationKey = "operation"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// track 记录查询次数，并把操作名留给错误处理统计空选择
func (s *Server) track(c echo.Context, op string) {
	c.Set(operationKey, op)
	s.queryMetrics.QueriesTotal.WithLabelValues(op).Inc()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"tweets": s.proc.Table().Len(),
		"source": s.proc.Table().Source(),
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

// handleLogs 以 chunked 方式持续输出日志，直到客户端断开或日志关闭
func (s *Server) handleLogs(c echo.Context) error {
	logChan := s.logger.Subscribe()
	defer s.logger.Unsubscribe(logChan)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case msg, ok := <-logChan:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprint(w, msg); err != nil {
				return nil
			}
			w.Flush()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) handleRandomTweet(c echo.Context) error {
	s.track(c, "random_tweet")

	sentiment := c.QueryParam("sentiment")
	if sentiment == "" {
		sentiment = string(processor.Positive)
	}
	tweet, err := s.proc.RandomTweet(sentiment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tweet)
}

func (s *Server) handleSentimentCounts(c echo.Context) error {
	s.track(c, "sentiment_counts")

	chart, err := s.proc.SentimentChart(c.QueryParam("mode"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chart)
}

func (s *Server) handleHour(c echo.Context) error {
	s.track(c, "tweets_at_hour")

	hour, err := parseHour(c.Param("hour"))
	if err != nil {
		return err
	}
	var raw bool
	if err := echo.QueryParamsBinder(c).Bool("raw", &raw).BindError(); err != nil {
		return err
	}

	slice, err := s.proc.TweetsAtHour(hour, raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slice)
}

func (s *Server) handleBreakdown(c echo.Context) error {
	s.track(c, "airline_breakdown")

	b, err := s.proc.AirlineBreakdown(c.QueryParams()["airline"])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) handleWordCloud(c echo.Context) error {
	s.track(c, "word_cloud")

	top := 0
	if err := echo.QueryParamsBinder(c).Int("top", &top).BindError(); err != nil {
		return err
	}
	wc, err := s.proc.WordCloud(c.Param("sentiment"), top)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wc)
}

// handleDashboard 未给出的参数取界面默认值
func (s *Server) handleDashboard(c echo.Context) error {
	s.track(c, "dashboard")

	state := processor.DefaultDashboardState()
	err := echo.QueryParamsBinder(c).
		String("sentiment", &state.TweetSentiment).
		String("mode", &state.DisplayMode).
		Bool("hide_counts", &state.HideCounts).
		Bool("close_map", &state.CloseMap).
		Bool("show_raw", &state.ShowRaw).
		Int("hour", &state.Hour).
		Strings("airline", &state.Airlines).
		String("word_sentiment", &state.WordSentiment).
		Bool("close_word_cloud", &state.CloseWordCloud).
		Int("top", &state.WordLimit).
		BindError()
	if err != nil {
		return err
	}

	d, err := s.proc.Render(state)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// handleExport 导出原始数据；带 hour 参数时只导出该小时的推文
func (s *Server) handleExport(c echo.Context) error {
	s.track(c, "export")

	df := s.proc.Table().Frame()
	filename := "tweets.xlsx"
	if raw := c.QueryParam("hour"); raw != "" {
		hour, err := parseHour(raw)
		if err != nil {
			return err
		}
		slice, err := s.proc.TweetsAtHour(hour, false)
		if err != nil {
			return err
		}
		df = slice.Frame()
		filename = fmt.Sprintf("tweets_%02d.xlsx", hour)
	}
	return writeXLSX(c, df, filename)
}

func writeXLSX(c echo.Context, df dataframe.DataFrame, filename string) error {
	var buf bytes.Buffer
	if err := utils.WriteExcel(&buf, df, "tweets"); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseHour(raw string) (int, error) {
	hour, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", processor.ErrInvalidHour, raw)
	}
	return hour, nil
}
