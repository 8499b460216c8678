// data.go
package processor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"AirlineSentiment/src/datasource/file"
)

var (
	// ErrEmptySelection 过滤后没有可抽样的行
	ErrEmptySelection = errors.New("empty selection")
	// ErrInvalidSentiment 不在 positive/negative/neutral 之内
	ErrInvalidSentiment = errors.New("invalid sentiment")
	// ErrInvalidHour 小时不在 [0,23]
	ErrInvalidHour = errors.New("invalid hour")
	// ErrUnknownAirline 不在六家航空公司之内
	ErrUnknownAirline = errors.New("unknown airline")
	// ErrInvalidDisplayMode 既不是 histogram 也不是 pie
	ErrInvalidDisplayMode = errors.New("invalid display mode")
)

// Sentiment 推文情感标签
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Sentiments 固定顺序
var Sentiments = []Sentiment{Positive, Negative, Neutral}

// Airlines 可选的六家航空公司，顺序与界面一致
var Airlines = []string{"US Airways", "United", "American", "Southwest", "Delta", "Virgin America"}

// ParseSentiment 校验情感标签，大小写敏感
func ParseSentiment(s string) (Sentiment, error) {
	for _, v := range Sentiments {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSentiment, s)
}

func (s Sentiment) String() string { return string(s) }

// Sampler 均匀随机数来源
type Sampler interface {
	IntN(n int) int
}

// lockedSampler 让 *rand.Rand 可以被并发查询共享
type lockedSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSampler) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSampler seed 为 0 时按当前时间播种
func NewSampler(seed uint64) Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// TweetProcessor 推文查询与聚合
//
// 所有查询都是对同一张只读推文表的独立计算，互不共享状态。
type TweetProcessor struct {
	table     *file.TweetTable
	sampler   Sampler
	stopwords map[string]struct{}
}

// Option TweetProcessor 的可选项
type Option func(*TweetProcessor)

// WithSampler 指定随机数来源(测试中用固定种子)
func WithSampler(s Sampler) Option {
	return func(p *TweetProcessor) { p.sampler = s }
}

// WithExtraStopwords 在默认停用词之外追加
func WithExtraStopwords(words []string) Option {
	return func(p *TweetProcessor) {
		for _, w := range words {
			if w = strings.TrimSpace(w); w != "" {
				p.stopwords[foldWord(w)] = struct{}{}
			}
		}
	}
}

func NewTweetProcessor(table *file.TweetTable, opts ...Option) *TweetProcessor {
	p := &TweetProcessor{
		table:     table,
		stopwords: defaultStopwords(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sampler == nil {
		p.sampler = NewSampler(0)
	}
	return p
}

// Table 底层推文表
func (p *TweetProcessor) Table() *file.TweetTable {
	return p.table
}

// bySentiment 过滤出指定情感的行
func (p *TweetProcessor) bySentiment(s Sentiment) dataframe.DataFrame {
	return p.table.Frame().Filter(
		dataframe.F{Colname: file.ColSentiment, Comparator: series.Eq, Comparando: string(s)},
	)
}

// CategoryCount 聚合结果中的一行
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
