package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"AirlineSentiment/src/datasource/file"
)

// DisplayMode 情感统计的展示方式，只影响渲染不影响聚合
type DisplayMode string

const (
	Histogram DisplayMode = "histogram"
	Pie       DisplayMode = "pie"
)

// ParseDisplayMode 接受 "histogram" / "pie"，兼容界面上的 "Pie Chart"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "histogram", "bar":
		return Histogram, nil
	case "pie", "pie chart":
		return Pie, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDisplayMode, s)
}

// CategoryShare 饼图中的占比
type CategoryShare struct {
	Label string  `json:"label"`
	Share float64 `json:"share"`
}

// SentimentChart 情感统计图的数据
type SentimentChart struct {
	Mode   DisplayMode     `json:"mode"`
	Total  int             `json:"total"`
	Counts []CategoryCount `json:"counts"`
	Shares []CategoryShare `json:"shares,omitempty"`
}

// SentimentCounts 按 airline_sentiment 分组计数
//
// 三个固定标签总会出现(没有数据时为0)，数据中其他标签排在其后；
// 结果按数量降序，数量相同保持上述顺序。
func (p *TweetProcessor) SentimentCounts() []CategoryCount {
	return countLabels(p.table.Frame().Col(file.ColSentiment).Records())
}

func countLabels(values []string) []CategoryCount {
	counts := make(map[string]int, len(Sentiments))
	var extra []string
	for _, v := range values {
		if _, seen := counts[v]; !seen && !isSentiment(v) {
			extra = append(extra, v)
		}
		counts[v]++
	}
	sort.Strings(extra)

	result := make([]CategoryCount, 0, len(Sentiments)+len(extra))
	for _, s := range Sentiments {
		result = append(result, CategoryCount{Label: string(s), Count: counts[string(s)]})
	}
	for _, label := range extra {
		result = append(result, CategoryCount{Label: label, Count: counts[label]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

func isSentiment(v string) bool {
	for _, s := range Sentiments {
		if string(s) == v {
			return true
		}
	}
	return false
}

// SentimentChart 计算情感统计，mode 决定是否附带占比
func (p *TweetProcessor) SentimentChart(mode string) (SentimentChart, error) {
	m, err := ParseDisplayMode(mode)
	if err != nil {
		return SentimentChart{}, err
	}

	counts := p.SentimentCounts()
	chart := SentimentChart{Mode: m, Counts: counts}
	for _, c := range counts {
		chart.Total += c.Count
	}

	if m == Pie {
		chart.Shares = make([]CategoryShare, len(counts))
		for i, c := range counts {
			share := 0.0
			if chart.Total > 0 {
				share = float64(c.Count) / float64(chart.Total)
			}
			chart.Shares[i] = CategoryShare{Label: c.Label, Share: share}
		}
	}
	return chart, nil
}

// CountsFrame 聚合结果转成两列 DataFrame(Sentiment, Tweets)，用于导出
func CountsFrame(counts []CategoryCount) dataframe.DataFrame {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = c.Count
	}
	return dataframe.New(
		series.New(labels, series.String, "Sentiment"),
		series.New(values, series.Int, "Tweets"),
	)
}
