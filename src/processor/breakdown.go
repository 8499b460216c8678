package processor

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/utils"
)

// AirlineCount 某航空公司某情感的推文数
type AirlineCount struct {
	Airline   string `json:"airline"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// Facet 分面图中的一个子图：一个情感下各航空公司的推文数
type Facet struct {
	Sentiment string          `json:"sentiment"`
	Counts    []CategoryCount `json:"counts"`
}

// Breakdown 航空公司 x 情感 交叉统计
type Breakdown struct {
	Airlines []string       `json:"airlines"`
	Total    int            `json:"total"`
	Facets   []Facet        `json:"facets"`
	Cells    []AirlineCount `json:"cells"`
}

// Empty 没有选择任何航空公司
func (b Breakdown) Empty() bool {
	return len(b.Airlines) == 0
}

// ValidateAirlines 去重并校验航空公司名称，保留选择顺序
func ValidateAirlines(airlines []string) ([]string, error) {
	selected := make([]string, 0, len(airlines))
	for _, a := range airlines {
		if !utils.Contains(Airlines, a) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAirline, a)
		}
		if !utils.Contains(selected, a) {
			selected = append(selected, a)
		}
	}
	return selected, nil
}

// AirlineBreakdown 只保留所选航空公司的推文，按(航空公司, 情感)计数
//
// 每个情感一个分面；未选择任何航空公司时返回空结果。
func (p *TweetProcessor) AirlineBreakdown(airlines []string) (Breakdown, error) {
	selected, err := ValidateAirlines(airlines)
	if err != nil {
		return Breakdown{}, err
	}

	out := Breakdown{
		Airlines: selected,
		Facets:   []Facet{},
		Cells:    []AirlineCount{},
	}
	if len(selected) == 0 {
		return out, nil
	}

	chosen := p.table.Frame().Filter(
		dataframe.F{Colname: file.ColAirline, Comparator: series.In, Comparando: selected},
	)
	out.Total = chosen.Nrow()

	for _, label := range facetLabels(chosen) {
		bySentiment := chosen.Filter(
			dataframe.F{Colname: file.ColSentiment, Comparator: series.Eq, Comparando: label},
		)

		facet := Facet{Sentiment: label, Counts: make([]CategoryCount, 0, len(selected))}
		for _, airline := range selected {
			n := 0
			if bySentiment.Nrow() > 0 {
				n = bySentiment.Filter(
					dataframe.F{Colname: file.ColAirline, Comparator: series.Eq, Comparando: airline},
				).Nrow()
			}
			facet.Counts = append(facet.Counts, CategoryCount{Label: airline, Count: n})
			out.Cells = append(out.Cells, AirlineCount{Airline: airline, Sentiment: label, Count: n})
		}
		out.Facets = append(out.Facets, facet)
	}

	return out, nil
}

// facetLabels 固定的三个情感在前，数据中的其他标签按字母序在后
func facetLabels(df dataframe.DataFrame) []string {
	labels := make([]string, 0, len(Sentiments))
	for _, s := range Sentiments {
		labels = append(labels, string(s))
	}
	var extra []string
	for _, v := range df.Col(file.ColSentiment).Records() {
		if !isSentiment(v) && !utils.Contains(extra, v) {
			extra = append(extra, v)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

// BreakdownFrame 交叉统计转成 DataFrame(airline, airline_sentiment, tweets)，用于导出
func BreakdownFrame(b Breakdown) dataframe.DataFrame {
	airlines := make([]string, len(b.Cells))
	sentiments := make([]string, len(b.Cells))
	counts := make([]int, len(b.Cells))
	for i, c := range b.Cells {
		airlines[i] = c.Airline
		sentiments[i] = c.Sentiment
		counts[i] = c.Count
	}
	return dataframe.New(
		series.New(airlines, series.String, file.ColAirline),
		series.New(sentiments, series.String, file.ColSentiment),
		series.New(counts, series.Int, "tweets"),
	)
}
