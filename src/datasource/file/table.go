package file

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// 推文表中的规范列名，加载时按 dataconfig.json 映射后统一成这些名字
const (
	ColID        = "tweet_id"
	ColText      = "text"
	ColSentiment = "airline_sentiment"
	ColAirline   = "airline"
	ColCreated   = "tweet_created"
	ColHour      = "tweet_hour"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
)

// CreatedLayout tweet_created 归一化后的格式
const CreatedLayout = "2006-01-02 15:04:05 -0700"

// Tweet 单条推文记录
type Tweet struct {
	ID        string            `json:"tweet_id,omitempty"`
	Text      string            `json:"text"`
	Sentiment string            `json:"airline_sentiment"`
	Airline   string            `json:"airline"`
	Created   time.Time         `json:"tweet_created"`
	Hour      int               `json:"tweet_hour"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// TweetTable 进程内只读的推文表
//
// 由 Loader 构造一次后按引用传给所有查询；不提供任何修改方法，
// Frame 返回的 DataFrame 只允许 Filter/Subset 之类生成新表的操作。
type TweetTable struct {
	df     dataframe.DataFrame
	source string
}

// NewTweetTable 用已归一化的 DataFrame 构造推文表(测试用)
func NewTweetTable(df dataframe.DataFrame, source string) *TweetTable {
	return &TweetTable{df: df, source: source}
}

// Frame 返回底层 DataFrame
func (t *TweetTable) Frame() dataframe.DataFrame {
	return t.df
}

// Len 行数
func (t *TweetTable) Len() int {
	return t.df.Nrow()
}

// Source 数据文件路径
func (t *TweetTable) Source() string {
	return t.source
}

// Columns 列名
func (t *TweetTable) Columns() []string {
	return t.df.Names()
}

var coreColumns = map[string]bool{
	ColID:        true,
	ColText:      true,
	ColSentiment: true,
	ColAirline:   true,
	ColCreated:   true,
	ColHour:      true,
	ColLatitude:  true,
	ColLongitude: true,
}

// Rows 把 DataFrame 的每一行转换成 Tweet
func Rows(df dataframe.DataFrame) []Tweet {
	n := df.Nrow()
	if n == 0 {
		return []Tweet{}
	}

	names := df.Names()
	cols := make(map[string][]string, len(names))
	for _, name := range names {
		cols[name] = df.Col(name).Records()
	}

	get := func(name string, i int) string {
		if c, ok := cols[name]; ok {
			return c[i]
		}
		return ""
	}

	tweets := make([]Tweet, n)
	for i := 0; i < n; i++ {
		tw := Tweet{
			ID:        get(ColID, i),
			Text:      get(ColText, i),
			Sentiment: get(ColSentiment, i),
			Airline:   get(ColAirline, i),
			Hour:      -1,
		}
		if created := get(ColCreated, i); created != "" {
			if ts, err := time.Parse(CreatedLayout, created); err == nil {
				tw.Created = ts
			}
		}
		if h, err := strconv.Atoi(get(ColHour, i)); err == nil {
			tw.Hour = h
		}
		tw.Latitude = parseCoord(get(ColLatitude, i))
		tw.Longitude = parseCoord(get(ColLongitude, i))

		for _, name := range names {
			if coreColumns[name] {
				continue
			}
			if tw.Extra == nil {
				tw.Extra = make(map[string]string)
			}
			tw.Extra[name] = cols[name][i]
		}
		tweets[i] = tw
	}
	return tweets
}

func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
