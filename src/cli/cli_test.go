package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/processor"
)

const tweetsCSV = `tweet_id,airline_sentiment,airline,text,tweet_coord,tweet_created
1,positive,Virgin America,@VirginAmerica thanks for the great flight! http://t.co/abc,"[40.7, -73.9]",2015-02-24 11:35:52 -0800
2,negative,United,RT @united lost my bag AGAIN. Bag bag,,2015-02-24 11:15:59 -0800
3,negative,United,@united Cancelled flight... worst service,"[37.6, -122.4]",2015-02-24 09:15:48 -0800
4,positive,Delta,@JetBlue great crew,,2015-02-23 23:59:59 -0800
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Tweets.csv")
	require.NoError(t, os.WriteFile(path, []byte(tweetsCSV), 0644))
	return path
}

// run 执行一次命令，配置目录不存在时走默认配置
func run(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	if configDir == "" {
		configDir = filepath.Join(t.TempDir(), "missing")
	}
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCountsCommand(t *testing.T) {
	data := writeDataset(t)

	out, err := run(t, "", "--data", data, "counts")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of tweets by sentiment (4)")
	assert.Contains(t, out, "neutral")

	out, err = run(t, "", "--data", data, "counts", "--mode", "pie")
	require.NoError(t, err)
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "0.0%")

	_, err = run(t, "", "--data", data, "counts", "--mode", "donut")
	assert.ErrorIs(t, err, processor.ErrInvalidDisplayMode)
}

func TestHourCommand(t *testing.T) {
	data := writeDataset(t)

	out, err := run(t, "", "--data", data, "hour", "11", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "2 tweets between 11:00 and 12:00")
	assert.Contains(t, out, "1 tweets with coordinates")
	assert.Contains(t, out, "lost my bag AGAIN.")

	_, err = run(t, "", "--data", data, "hour", "24")
	assert.ErrorIs(t, err, processor.ErrInvalidHour)
	_, err = run(t, "", "--data", data, "hour", "noon")
	assert.ErrorIs(t, err, processor.ErrInvalidHour)
}

func TestBreakdownCommand(t *testing.T) {
	data := writeDataset(t)

	out, err := run(t, "", "--data", data, "breakdown", "United", "Delta")
	require.NoError(t, err)
	assert.Contains(t, out, "Tweets by airline and sentiment (3)")
	assert.Contains(t, out, "United")

	out, err = run(t, "", "--data", data, "breakdown")
	require.NoError(t, err)
	assert.Contains(t, out, "No airline selected")

	_, err = run(t, "", "--data", data, "breakdown", "JetBlue")
	assert.ErrorIs(t, err, processor.ErrUnknownAirline)
}

func TestWordsAndSampleCommands(t *testing.T) {
	data := writeDataset(t)

	out, err := run(t, "", "--data", data, "words", "negative", "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "bag")
	assert.NotContains(t, out, "worst")

	out, err = run(t, "", "--data", data, "sample", "negative")
	require.NoError(t, err)
	assert.Contains(t, out, "United")

	_, err = run(t, "", "--data", data, "sample", "neutral")
	assert.ErrorIs(t, err, processor.ErrEmptySelection)
}

func TestExportCommand(t *testing.T) {
	data := writeDataset(t)
	target := filepath.Join(t.TempDir(), "hour11.xlsx")

	out, err := run(t, "", "--data", data, "export", target, "--hour", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 tweets")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("tweets")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReportCommand(t *testing.T) {
	data := writeDataset(t)
	reports := filepath.Join(t.TempDir(), "reports")

	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"),
		[]byte(`{"report": {"dir": "`+filepath.ToSlash(reports)+`"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "dataconfig.json"), []byte(`{}`), 0644))

	out, err := run(t, configDir, "--data", data, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Tweets: 4")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMissingDataFile(t *testing.T) {
	_, err := run(t, "", "--data", filepath.Join(t.TempDir(), "nope.csv"), "counts")
	assert.ErrorIs(t, err, file.ErrDataFileMissing)
}

func TestRenderCounts_ThousandsSeparator(t *testing.T) {
	var buf bytes.Buffer
	renderCounts(&buf, processor.SentimentChart{
		Mode:  processor.Histogram,
		Total: 14640,
		Counts: []processor.CategoryCount{
			{Label: "negative", Count: 9178},
			{Label: "neutral", Count: 3099},
			{Label: "positive", Count: 2363},
		},
	})
	assert.Contains(t, buf.String(), "14,640")
	assert.Contains(t, buf.String(), "9,178")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(3, 0))
	assert.Equal(t, barWidth, len([]rune(bar(10, 10))))
	assert.Equal(t, 1, len([]rune(bar(1, 1000))))
}
