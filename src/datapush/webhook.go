package datapush

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// 默认值
const (
	RETRY_TIMES     = 5
	RETRY_INTERVAL  = 2 * time.Second
	REQUEST_TIMEOUT = 10 * time.Second
)

// Summary 推送出去的情感统计摘要
type Summary struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Source      string         `json:"source"`
	Total       int            `json:"total"`
	Sentiments  map[string]int `json:"sentiments"`
	Airlines    map[string]int `json:"airlines"`
	ReportFile  string         `json:"report_file,omitempty"`
}

// WebhookResponse 接收方的通用响应
type WebhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// WebhookPusher 把摘要以 JSON POST 到 webhook
type WebhookPusher struct {
	url           string
	client        *resty.Client
	retryTimes    int
	retryInterval time.Duration
}

func NewWebhookPusher(url string, retryTimes int, retryInterval time.Duration) *WebhookPusher {
	if retryTimes <= 0 {
		retryTimes = RETRY_TIMES
	}
	if retryInterval <= 0 {
		retryInterval = RETRY_INTERVAL
	}
	return &WebhookPusher{
		url:           url,
		client:        resty.New().SetTimeout(REQUEST_TIMEOUT).SetHeader("Content-Type", "application/json"),
		retryTimes:    retryTimes,
		retryInterval: retryInterval,
	}
}

// Push 发送摘要，失败按固定间隔重试
func (w *WebhookPusher) Push(ctx context.Context, summary Summary) error {
	return retry(ctx, func() error {
		return w.send(ctx, summary)
	}, w.retryTimes, w.retryInterval)
}

func (w *WebhookPusher) send(ctx context.Context, summary Summary) error {
	var result WebhookResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(summary).
		SetResult(&result).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook 返回状态 %d", resp.StatusCode())
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("推送失败: %s", result.ErrMsg)
	}
	return nil
}

// 重试函数
func retry(ctx context.Context, fn func() error, times int, interval time.Duration) error {
	var err error
	for i := 0; i < times; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < times-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return fmt.Errorf("重试 %d 次后失败: %w", times, err)
}
