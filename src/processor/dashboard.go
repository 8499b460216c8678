package processor

import (
	"fmt"

	"AirlineSentiment/src/datasource/file"
)

// DashboardState 界面控件状态，零值不可直接使用，请从 DefaultDashboardState 开始修改
type DashboardState struct {
	TweetSentiment string   `json:"tweet_sentiment"`  // 随机推文的情感
	DisplayMode    string   `json:"display_mode"`     // histogram / pie
	HideCounts     bool     `json:"hide_counts"`      // 隐藏情感统计
	CloseMap       bool     `json:"close_map"`        // 收起按小时分布
	ShowRaw        bool     `json:"show_raw"`         // 显示原始数据
	Hour           int      `json:"hour"`             // 0-23
	Airlines       []string `json:"airlines"`         // 航空公司多选
	WordSentiment  string   `json:"word_sentiment"`   // 词云的情感
	CloseWordCloud bool     `json:"close_word_cloud"` // 收起词云
	WordLimit      int      `json:"word_limit"`       // 词频条数
}

// DefaultDashboardState 与界面初始状态一致
func DefaultDashboardState() DashboardState {
	return DashboardState{
		TweetSentiment: string(Positive),
		DisplayMode:    string(Histogram),
		HideCounts:     false,
		CloseMap:       true,
		ShowRaw:        false,
		Hour:           0,
		Airlines:       []string{},
		WordSentiment:  string(Positive),
		CloseWordCloud: true,
		WordLimit:      200,
	}
}

// Dashboard 当前状态下可见的各个面板，不可见的为 nil
type Dashboard struct {
	RandomTweet *file.Tweet     `json:"random_tweet"`
	Counts      *SentimentChart `json:"counts,omitempty"`
	Hour        *HourSlice      `json:"hour,omitempty"`
	Breakdown   *Breakdown      `json:"breakdown,omitempty"`
	WordCloud   *WordCloud      `json:"word_cloud,omitempty"`
}

// Render 按界面状态计算所有可见面板
//
// 每个面板都是一次独立的查询，任一查询失败则整体返回错误。
func (p *TweetProcessor) Render(state DashboardState) (Dashboard, error) {
	var d Dashboard

	tweet, err := p.RandomTweet(state.TweetSentiment)
	if err != nil {
		return Dashboard{}, err
	}
	d.RandomTweet = &tweet

	// 控件取值在面板隐藏时也要合法
	chart, err := p.SentimentChart(state.DisplayMode)
	if err != nil {
		return Dashboard{}, err
	}
	if !state.HideCounts {
		d.Counts = &chart
	}

	if state.Hour < 0 || state.Hour > 23 {
		return Dashboard{}, fmt.Errorf("%w: %d", ErrInvalidHour, state.Hour)
	}
	if !state.CloseMap {
		slice, err := p.TweetsAtHour(state.Hour, state.ShowRaw)
		if err != nil {
			return Dashboard{}, err
		}
		d.Hour = &slice
	}

	if len(state.Airlines) > 0 {
		b, err := p.AirlineBreakdown(state.Airlines)
		if err != nil {
			return Dashboard{}, err
		}
		d.Breakdown = &b
	}

	if _, err := ParseSentiment(state.WordSentiment); err != nil {
		return Dashboard{}, err
	}
	if !state.CloseWordCloud {
		wc, err := p.WordCloud(state.WordSentiment, state.WordLimit)
		if err != nil {
			return Dashboard{}, err
		}
		d.WordCloud = &wc
	}

	return d, nil
}
