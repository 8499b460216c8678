package processor

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"AirlineSentiment/src/datasource/file"
)

// wordRe 词云分词规则：字母/数字开头，至少两个字符，允许撇号
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_']+`)

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// WordFrequency 词频
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordCloud 交给词云布局生成器的输入
type WordCloud struct {
	Sentiment Sentiment       `json:"sentiment"`
	Tweets    int             `json:"tweets"`
	Text      string          `json:"text"`
	Words     []WordFrequency `json:"words"`
}

// FilterTokens 按空白切分，去掉以 http、@ 开头以及等于 RT 的词，再用单个空格拼回
//
// 区分大小写，只做前缀/全等匹配。
func FilterTokens(words string) string {
	fields := strings.Fields(words)
	kept := fields[:0]
	for _, w := range fields {
		if strings.HasPrefix(w, "http") || strings.HasPrefix(w, "@") || w == "RT" {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// WordCloudText 指定情感的推文正文拼接后过滤
func (p *TweetProcessor) WordCloudText(label string) (string, error) {
	s, err := ParseSentiment(label)
	if err != nil {
		return "", err
	}
	text, _ := p.wordCloudText(s)
	return text, nil
}

func (p *TweetProcessor) wordCloudText(s Sentiment) (string, int) {
	matched := p.bySentiment(s)
	texts := matched.Col(file.ColText).Records()
	return FilterTokens(strings.Join(texts, " ")), len(texts)
}

// WordCloud 词云文本及前 top 个高频词；top <= 0 时返回全部
func (p *TweetProcessor) WordCloud(label string, top int) (WordCloud, error) {
	s, err := ParseSentiment(label)
	if err != nil {
		return WordCloud{}, err
	}
	text, n := p.wordCloudText(s)
	return WordCloud{
		Sentiment: s,
		Tweets:    n,
		Text:      text,
		Words:     p.WordFrequencies(text, top),
	}, nil
}

// WordFrequencies 去停用词后计数
//
// 停用词比较与计数都按 Unicode case folding，展示时取出现最多的原始写法；
// 结尾的 's 去掉，纯数字忽略。按次数降序、词序升序。
func (p *TweetProcessor) WordFrequencies(text string, top int) []WordFrequency {
	folder := cases.Fold()

	type variant struct {
		counts map[string]int
		first  []string
		total  int
	}
	byKey := make(map[string]*variant)

	for _, w := range wordRe.FindAllString(text, -1) {
		if _, stop := p.stopwords[folder.String(w)]; stop {
			continue
		}
		if strings.HasSuffix(strings.ToLower(w), "'s") {
			w = w[:len(w)-2]
		}
		if len(w) < 2 || digitsRe.MatchString(w) {
			continue
		}

		key := folder.String(w)
		v, ok := byKey[key]
		if !ok {
			v = &variant{counts: make(map[string]int)}
			byKey[key] = v
		}
		if _, seen := v.counts[w]; !seen {
			v.first = append(v.first, w)
		}
		v.counts[w]++
		v.total++
	}

	freqs := make([]WordFrequency, 0, len(byKey))
	for _, v := range byKey {
		best := v.first[0]
		for _, w := range v.first[1:] {
			if v.counts[w] > v.counts[best] {
				best = w
			}
		}
		freqs = append(freqs, WordFrequency{Word: best, Count: v.total})
	}

	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Word < freqs[j].Word
	})
	if top > 0 && len(freqs) > top {
		freqs = freqs[:top]
	}
	return freqs
}

func foldWord(w string) string {
	return cases.Fold().String(w)
}
