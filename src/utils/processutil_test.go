package utils

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"positive", "negative"}, series.String, "Sentiment"),
		series.New([]int{2, 1}, series.Int, "Tweets"),
	)
}

func TestContainsAndHasColumn(t *testing.T) {
	assert.True(t, Contains([]string{"United", "Delta"}, "Delta"))
	assert.False(t, Contains([]int{1, 2}, 3))

	df := sampleFrame()
	assert.True(t, HasColumn(df, "Tweets"))
	assert.False(t, HasColumn(df, "tweets"))
}

func TestSaveToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.xlsx")
	require.NoError(t, SaveToExcel(sampleFrame(), path, "sentiment"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"sentiment"}, f.GetSheetList())
	rows, err := f.GetRows("sentiment")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Sentiment", "Tweets"},
		{"positive", "2"},
		{"negative", "1"},
	}, rows)
}

func TestWriteSheet_MultipleSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, WriteSheet(f, "first", sampleFrame()))
	require.NoError(t, WriteSheet(f, "second", sampleFrame()))
	assert.Equal(t, []string{"first", "second"}, f.GetSheetList())
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleFrame(), "tweets"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("tweets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"negative", "1"}, rows[2])
}
