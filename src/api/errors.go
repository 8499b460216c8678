package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"AirlineSentiment/src/processor"
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusOf 输入错误 400，空选择 404，其余 500
func statusOf(err error) int {
	if he := asHTTPError(err); he != nil {
		return he.Code
	}
	switch {
	case errors.Is(err, processor.ErrInvalidSentiment),
		errors.Is(err, processor.ErrInvalidHour),
		errors.Is(err, processor.ErrUnknownAirline),
		errors.Is(err, processor.ErrInvalidDisplayMode):
		return http.StatusBadRequest
	case errors.Is(err, processor.ErrEmptySelection):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// asHTTPError 参数绑定错误(*echo.BindingError)也按 HTTPError 处理
func asHTTPError(err error) *echo.HTTPError {
	var be *echo.BindingError
	if errors.As(err, &be) && be.HTTPError != nil {
		return be.HTTPError
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusOf(err)
	msg := err.Error()

	if he := asHTTPError(err); he != nil {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	switch {
	case errors.Is(err, processor.ErrEmptySelection):
		if op, ok := c.Get(operationKey).(string); ok {
			s.queryMetrics.EmptySelections.WithLabelValues(op).Inc()
		}
	case status >= http.StatusInternalServerError:
		s.logger.Error("请求处理失败", "path", c.Path(), "error", err)
		msg = http.StatusText(status)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Error("写入错误响应失败", "error", err)
	}
}
