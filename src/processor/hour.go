package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"AirlineSentiment/src/datasource/file"
)

// GeoPoint 地图上的一个点
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// HourSlice 某个小时内发出的推文
type HourSlice struct {
	Hour    int          `json:"hour"`
	Start   int          `json:"start"`
	End     int          `json:"end"`
	Count   int          `json:"count"`
	Caption string       `json:"caption"`
	Points  []GeoPoint   `json:"points"`
	Rows    []file.Tweet `json:"rows,omitempty"`

	frame dataframe.DataFrame
}

// Frame 过滤后的 DataFrame，用于原始数据导出
func (h HourSlice) Frame() dataframe.DataFrame {
	return h.frame
}

// TweetsAtHour 过滤 tweet_created 的小时等于 hour 的推文
//
// 小时按时间戳自带的时区取值，不做时区换算。withRows 为 true 时附带原始行。
func (p *TweetProcessor) TweetsAtHour(hour int, withRows bool) (HourSlice, error) {
	if hour < 0 || hour > 23 {
		return HourSlice{}, fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}

	matched := p.table.Frame().Filter(
		dataframe.F{Colname: file.ColHour, Comparator: series.Eq, Comparando: hour},
	)

	end := (hour + 1) % 24
	slice := HourSlice{
		Hour:    hour,
		Start:   hour,
		End:     end,
		Count:   matched.Nrow(),
		Caption: fmt.Sprintf("%d tweets between %d:00 and %d:00", matched.Nrow(), hour, end),
		Points:  []GeoPoint{},
		frame:   matched,
	}

	rows := file.Rows(matched)
	for _, tw := range rows {
		if tw.Latitude != nil && tw.Longitude != nil {
			slice.Points = append(slice.Points, GeoPoint{Latitude: *tw.Latitude, Longitude: *tw.Longitude})
		}
	}
	if withRows {
		slice.Rows = rows
	}
	return slice, nil
}
