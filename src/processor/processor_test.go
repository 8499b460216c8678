package processor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AirlineSentiment/src/datasource/file"
)

const tweetsCSV = `tweet_id,airline_sentiment,airline,text,tweet_coord,tweet_created
1,positive,Virgin America,@VirginAmerica thanks for the great flight! http://t.co/abc,"[40.7, -73.9]",2015-02-24 11:35:52 -0800
2,negative,United,RT @united lost my bag AGAIN. Bag bag,,2015-02-24 11:15:59 -0800
3,negative,United,@united Cancelled Flightled flight... worst service,"[37.6, -122.4]",2015-02-24 09:15:48 -0800
4,neutral,Delta,@JetBlue's new route? http://t.co/xyz,,2015-02-23 23:59:59 -0800
5,positive,Southwest,@SouthwestAir love the crew's service,"[0.0, 0.0]",2015-02-23 00:01:00 -0800
6,negative,American,@AmericanAir delayed 3 hours,,2015-02-22 09:40:00 -0800
`

// fixedSampler 总是返回 int(f) % n
type fixedSampler int

func (f fixedSampler) IntN(n int) int { return int(f) % n }

func loadTable(t *testing.T, content string) *file.TweetTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Tweets.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	table, err := file.ReadTweets(file.ReadOptions{Path: path})
	require.NoError(t, err)
	return table
}

func newTestProcessor(t *testing.T, opts ...Option) *TweetProcessor {
	t.Helper()
	return NewTweetProcessor(loadTable(t, tweetsCSV), append([]Option{WithSampler(fixedSampler(0))}, opts...)...)
}

func countOf(counts []CategoryCount, label string) int {
	for _, c := range counts {
		if c.Label == label {
			return c.Count
		}
	}
	return -1
}

func TestSentimentCounts_Example(t *testing.T) {
	table := loadTable(t, `text,airline_sentiment,airline,tweet_created
a,positive,United,2015-02-24 10:00:00
b,negative,Delta,2015-02-24 10:00:00
c,positive,United,2015-02-24 11:00:00
`)
	p := NewTweetProcessor(table)

	assert.Equal(t, []CategoryCount{
		{Label: "positive", Count: 2},
		{Label: "negative", Count: 1},
		{Label: "neutral", Count: 0},
	}, p.SentimentCounts())
}

func TestSentimentCounts_TotalMatchesRows(t *testing.T) {
	p := newTestProcessor(t)
	counts := p.SentimentCounts()

	total := 0
	for _, s := range Sentiments {
		total += countOf(counts, string(s))
	}
	assert.Equal(t, p.Table().Len(), total)
	assert.Equal(t, "negative", counts[0].Label)
	assert.Equal(t, 3, counts[0].Count)
}

func TestSentimentCounts_UnknownLabelKept(t *testing.T) {
	table := loadTable(t, `text,airline_sentiment,airline,tweet_created
a,mixed,United,2015-02-24 10:00:00
b,positive,Delta,2015-02-24 10:00:00
`)
	counts := NewTweetProcessor(table).SentimentCounts()
	assert.Len(t, counts, 4)
	assert.Equal(t, 1, countOf(counts, "mixed"))
	assert.Equal(t, 0, countOf(counts, "neutral"))
}

func TestSentimentChart(t *testing.T) {
	p := newTestProcessor(t)

	bar, err := p.SentimentChart("Histogram")
	require.NoError(t, err)
	assert.Equal(t, Histogram, bar.Mode)
	assert.Equal(t, 6, bar.Total)
	assert.Empty(t, bar.Shares)

	pie, err := p.SentimentChart("Pie Chart")
	require.NoError(t, err)
	assert.Equal(t, Pie, pie.Mode)
	assert.Equal(t, bar.Counts, pie.Counts)
	require.Len(t, pie.Shares, 3)
	assert.InDelta(t, 0.5, pie.Shares[0].Share, 1e-9)

	_, err = p.SentimentChart("scatter")
	assert.True(t, errors.Is(err, ErrInvalidDisplayMode))
}

func TestCountsFrame(t *testing.T) {
	df := CountsFrame([]CategoryCount{{Label: "positive", Count: 2}})
	assert.Equal(t, []string{"Sentiment", "Tweets"}, df.Names())
	assert.Equal(t, 1, df.Nrow())
}

func TestRandomTweet(t *testing.T) {
	p := newTestProcessor(t)

	tw, err := p.RandomTweet("negative")
	require.NoError(t, err)
	assert.Equal(t, "negative", tw.Sentiment)
	assert.Equal(t, "2", tw.ID)

	p = newTestProcessor(t, WithSampler(fixedSampler(2)))
	tw, err = p.RandomTweet("negative")
	require.NoError(t, err)
	assert.Equal(t, "6", tw.ID)

	_, err = p.RandomTweet("angry")
	assert.True(t, errors.Is(err, ErrInvalidSentiment))
}

func TestRandomTweet_EmptySelection(t *testing.T) {
	table := loadTable(t, `text,airline_sentiment,airline,tweet_created
a,positive,United,2015-02-24 10:00:00
`)
	_, err := NewTweetProcessor(table).RandomTweet("neutral")
	assert.True(t, errors.Is(err, ErrEmptySelection))
}

func TestRandomTweet_SeededSamplerStaysInSelection(t *testing.T) {
	p := NewTweetProcessor(loadTable(t, tweetsCSV), WithSampler(NewSampler(7)))
	for i := 0; i < 50; i++ {
		tw, err := p.RandomTweet("positive")
		require.NoError(t, err)
		assert.Equal(t, "positive", tw.Sentiment)
	}
}

func TestTweetsAtHour(t *testing.T) {
	p := newTestProcessor(t)

	slice, err := p.TweetsAtHour(11, true)
	require.NoError(t, err)
	assert.Equal(t, 2, slice.Count)
	assert.Equal(t, 12, slice.End)
	assert.Equal(t, "2 tweets between 11:00 and 12:00", slice.Caption)
	require.Len(t, slice.Rows, 2)
	assert.Equal(t, []GeoPoint{{Latitude: 40.7, Longitude: -73.9}}, slice.Points)
	assert.Equal(t, 2, slice.Frame().Nrow())

	late, err := p.TweetsAtHour(23, false)
	require.NoError(t, err)
	assert.Equal(t, 0, late.End)
	assert.Equal(t, 1, late.Count)
	assert.Nil(t, late.Rows)

	_, err = p.TweetsAtHour(24, false)
	assert.True(t, errors.Is(err, ErrInvalidHour))
	_, err = p.TweetsAtHour(-1, false)
	assert.True(t, errors.Is(err, ErrInvalidHour))
}

func TestTweetsAtHour_AllHours(t *testing.T) {
	p := newTestProcessor(t)

	total := 0
	for h := 0; h < 24; h++ {
		slice, err := p.TweetsAtHour(h, true)
		require.NoError(t, err)
		assert.Equal(t, len(slice.Rows), slice.Count)
		for _, tw := range slice.Rows {
			assert.Equal(t, h, tw.Hour)
			assert.Equal(t, h, tw.Created.Hour())
		}
		total += slice.Count
	}
	assert.Equal(t, p.Table().Len(), total)
}

func TestAirlineBreakdown(t *testing.T) {
	p := newTestProcessor(t)

	b, err := p.AirlineBreakdown([]string{"United", "Delta", "United"})
	require.NoError(t, err)
	assert.Equal(t, []string{"United", "Delta"}, b.Airlines)
	assert.Equal(t, 3, b.Total)

	require.Len(t, b.Facets, 3)
	assert.Equal(t, "positive", b.Facets[0].Sentiment)
	assert.Equal(t, "negative", b.Facets[1].Sentiment)
	assert.Equal(t, []CategoryCount{{Label: "United", Count: 2}, {Label: "Delta", Count: 0}}, b.Facets[1].Counts)
	assert.Equal(t, []CategoryCount{{Label: "United", Count: 0}, {Label: "Delta", Count: 1}}, b.Facets[2].Counts)

	sum := 0
	for _, c := range b.Cells {
		assert.Contains(t, b.Airlines, c.Airline)
		sum += c.Count
	}
	assert.Equal(t, b.Total, sum)

	df := BreakdownFrame(b)
	assert.Equal(t, len(b.Cells), df.Nrow())
}

func TestAirlineBreakdown_Empty(t *testing.T) {
	p := newTestProcessor(t)

	b, err := p.AirlineBreakdown(nil)
	require.NoError(t, err)
	assert.True(t, b.Empty())
	assert.Empty(t, b.Cells)
	assert.Empty(t, b.Facets)
	assert.Zero(t, b.Total)

	_, err = p.AirlineBreakdown([]string{"JetBlue"})
	assert.True(t, errors.Is(err, ErrUnknownAirline))
}

func TestFilterTokens(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"RT @united lost my bag http://t.co/x", "lost my bag"},
		{"  spaced\tout \n words ", "spaced out words"},
		{"rt RT RTs Http https://x @ a@b", "rt RTs Http a@b"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FilterTokens(c.in), c.in)
	}
}

func TestFilterTokens_RemovesEveryDeniedToken(t *testing.T) {
	in := "@a http b RT c httpd @ RTRT d"
	for _, tok := range strings.Fields(FilterTokens(in)) {
		assert.False(t, strings.HasPrefix(tok, "http"))
		assert.False(t, strings.HasPrefix(tok, "@"))
		assert.NotEqual(t, "RT", tok)
	}
	assert.Equal(t, "b c RTRT d", FilterTokens(in))
}

func TestWordCloudText(t *testing.T) {
	p := newTestProcessor(t)

	text, err := p.WordCloudText("negative")
	require.NoError(t, err)
	assert.Equal(t, "lost my bag AGAIN. Bag bag Cancelled Flightled flight... worst service delayed 3 hours", text)

	_, err = p.WordCloudText("meh")
	assert.True(t, errors.Is(err, ErrInvalidSentiment))
}

func TestWordCloud_Frequencies(t *testing.T) {
	p := newTestProcessor(t)

	wc, err := p.WordCloud("negative", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, wc.Tweets)
	require.NotEmpty(t, wc.Words)
	assert.Equal(t, WordFrequency{Word: "bag", Count: 3}, wc.Words[0])

	for _, w := range wc.Words {
		assert.NotEqual(t, "my", w.Word)
		assert.NotEqual(t, "3", w.Word)
	}

	top, err := p.WordCloud("negative", 1)
	require.NoError(t, err)
	assert.Len(t, top.Words, 1)
}

func TestWordFrequencies_ExtraStopwordsAndPossessive(t *testing.T) {
	p := newTestProcessor(t, WithExtraStopwords([]string{"Service"}))
	freqs := p.WordFrequencies("crew's service SERVICE crew", 0)
	assert.Equal(t, []WordFrequency{{Word: "crew", Count: 2}}, freqs)
}

func TestRender_Defaults(t *testing.T) {
	p := newTestProcessor(t)

	d, err := p.Render(DefaultDashboardState())
	require.NoError(t, err)
	require.NotNil(t, d.RandomTweet)
	assert.Equal(t, "positive", d.RandomTweet.Sentiment)
	require.NotNil(t, d.Counts)
	assert.Equal(t, Histogram, d.Counts.Mode)
	assert.Nil(t, d.Hour)
	assert.Nil(t, d.Breakdown)
	assert.Nil(t, d.WordCloud)
}

func TestRender_AllPanelsOpen(t *testing.T) {
	p := newTestProcessor(t)

	state := DefaultDashboardState()
	state.HideCounts = true
	state.CloseMap = false
	state.ShowRaw = true
	state.Hour = 9
	state.Airlines = []string{"United"}
	state.CloseWordCloud = false
	state.WordSentiment = "neutral"

	d, err := p.Render(state)
	require.NoError(t, err)
	assert.Nil(t, d.Counts)
	require.NotNil(t, d.Hour)
	assert.Equal(t, 2, d.Hour.Count)
	assert.Len(t, d.Hour.Rows, 2)
	require.NotNil(t, d.Breakdown)
	assert.Equal(t, 2, d.Breakdown.Total)
	require.NotNil(t, d.WordCloud)
	assert.Equal(t, Neutral, d.WordCloud.Sentiment)
	assert.Equal(t, "new route?", d.WordCloud.Text)
}

func TestRender_InvalidState(t *testing.T) {
	p := newTestProcessor(t)

	state := DefaultDashboardState()
	state.Hour = 30
	_, err := p.Render(state)
	assert.True(t, errors.Is(err, ErrInvalidHour))

	state = DefaultDashboardState()
	state.WordSentiment = "bored"
	_, err = p.Render(state)
	assert.True(t, errors.Is(err, ErrInvalidSentiment))
}
