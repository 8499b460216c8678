package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"AirlineSentiment/src/datapush"
	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/processor"
	"AirlineSentiment/src/storage"
)

const tweetsCSV = `tweet_id,airline_sentiment,airline,text,tweet_created
1,positive,Virgin America,@VirginAmerica thanks!,2015-02-24 11:35:52 -0800
2,negative,United,@united lost my bag,2015-02-24 11:15:59 -0800
3,negative,United,@united worst service,2015-02-24 09:15:48 -0800
4,neutral,Delta,@JetBlue new route?,2015-02-23 23:59:59 -0800
`

type fakePusher struct {
	got []datapush.Summary
	err error
}

func (f *fakePusher) Push(_ context.Context, s datapush.Summary) error {
	f.got = append(f.got, s)
	return f.err
}

type fakeMailer struct {
	enabled bool
	sent    int
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(datapush.Summary) error {
	f.sent++
	return nil
}

func newTestGenerator(t *testing.T, dir string, pusher Pusher, mailer Mailer) (*Generator, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Tweets.csv")
	require.NoError(t, os.WriteFile(path, []byte(tweetsCSV), 0644))
	table, err := file.ReadTweets(file.ReadOptions{Path: path})
	require.NoError(t, err)

	var buf bytes.Buffer
	gen := NewGenerator(processor.NewTweetProcessor(table), dir, storage.NewWriterLogger(&buf), pusher, mailer)
	gen.now = func() time.Time { return time.Date(2015, 2, 25, 8, 0, 0, 0, time.UTC) }
	return gen, &buf
}

func TestBuildSummary(t *testing.T) {
	gen, _ := newTestGenerator(t, t.TempDir(), nil, nil)

	summary, err := gen.BuildSummary()
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, map[string]int{"positive": 1, "negative": 2, "neutral": 1}, summary.Sentiments)
	assert.Equal(t, 2, summary.Airlines["United"])
	assert.Equal(t, 1, summary.Airlines["Delta"])
	assert.Equal(t, 0, summary.Airlines["US Airways"])
	assert.Len(t, summary.Airlines, len(processor.Airlines))
}

func TestRun_WritesWorkbookAndNotifies(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	pusher := &fakePusher{}
	mailer := &fakeMailer{enabled: true}
	gen, _ := newTestGenerator(t, dir, pusher, mailer)

	summary, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sentiment_20150225080000.xlsx"), summary.ReportFile)
	require.Len(t, pusher.got, 1)
	assert.Equal(t, summary.ReportFile, pusher.got[0].ReportFile)
	assert.Equal(t, 1, mailer.sent)

	f, err := excelize.OpenFile(summary.ReportFile)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSentiment, SheetAirline, SheetHourly}, f.GetSheetList())

	rows, err := f.GetRows(SheetSentiment)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sentiment", "Tweets"}, rows[0])
	assert.Equal(t, []string{"negative", "2"}, rows[1])

	hourly, err := f.GetRows(SheetHourly)
	require.NoError(t, err)
	require.Len(t, hourly, 25)
	total := 0
	for _, row := range hourly[1:] {
		n, err := strconv.Atoi(row[1])
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, 4, total)
}

func TestRun_PushFailureIsLogged(t *testing.T) {
	pusher := &fakePusher{err: errors.New("webhook down")}
	mailer := &fakeMailer{enabled: false}
	gen, buf := newTestGenerator(t, t.TempDir(), pusher, mailer)

	_, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "webhook down")
	assert.Equal(t, 0, mailer.sent)
}

func TestNewScheduler_InvalidInterval(t *testing.T) {
	gen, _ := newTestGenerator(t, t.TempDir(), nil, nil)
	_, err := NewScheduler(context.Background(), gen, 0, storage.NewWriterLogger(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestScheduler_RunOnceSkipsAfterCancel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	gen, _ := newTestGenerator(t, dir, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	s, err := NewScheduler(ctx, gen, time.Hour, storage.NewWriterLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	s.runOnce()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	cancel()
	require.NoError(t, os.RemoveAll(dir))
	s.runOnce()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
