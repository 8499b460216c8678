package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"AirlineSentiment/src/datapush"
	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/processor"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(16)

	tweetStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(80)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	sentimentColors = map[string]lipgloss.Color{
		string(processor.Positive): lipgloss.Color("#10B981"),
		string(processor.Negative): lipgloss.Color("#EF4444"),
		string(processor.Neutral):  lipgloss.Color("#6B7280"),
	}
)

// 千分位
var printer = message.NewPrinter(language.English)

func barStyle(label string) lipgloss.Style {
	if c, ok := sentimentColors[label]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
}

// bar 按 value/peak 的比例画条形，非零值至少一格
func bar(value, peak int) string {
	if peak <= 0 || value <= 0 {
		return ""
	}
	n := value * barWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func renderTweet(w io.Writer, t file.Tweet) {
	header := fmt.Sprintf("%s · %s", t.Airline, barStyle(t.Sentiment).Render(t.Sentiment))
	if !t.Created.IsZero() {
		header += dimStyle.Render(" · " + t.Created.Format(file.CreatedLayout))
	}
	fmt.Fprintln(w, tweetStyle.Render(header+"\n\n"+t.Text))
}

func renderCounts(w io.Writer, chart processor.SentimentChart) {
	fmt.Fprintln(w, titleStyle.Render(printer.Sprintf("Number of tweets by sentiment (%d)", chart.Total)))

	if chart.Mode == processor.Pie {
		for _, s := range chart.Shares {
			fmt.Fprintf(w, "%s %s %5.1f%%\n",
				labelStyle.Render(s.Label),
				barStyle(s.Label).Render(bar(int(s.Share*1000), 1000)),
				s.Share*100)
		}
		return
	}

	peak := 0
	for _, c := range chart.Counts {
		if c.Count > peak {
			peak = c.Count
		}
	}
	for _, c := range chart.Counts {
		fmt.Fprintf(w, "%s %s %s\n",
			labelStyle.Render(c.Label),
			barStyle(c.Label).Render(bar(c.Count, peak)),
			printer.Sprintf("%d", c.Count))
	}
}

func renderHour(w io.Writer, slice processor.HourSlice) {
	fmt.Fprintln(w, titleStyle.Render(printer.Sprintf("%d tweets between %d:00 and %d:00", slice.Count, slice.Start, slice.End)))
	fmt.Fprintln(w, dimStyle.Render(printer.Sprintf("%d tweets with coordinates", len(slice.Points))))
	for _, t := range slice.Rows {
		fmt.Fprintf(w, "%-20s %-15s %-9s %s\n", t.ID, t.Airline, t.Sentiment, oneLine(t.Text))
	}
}

func renderBreakdown(w io.Writer, b processor.Breakdown) {
	if b.Empty() {
		fmt.Fprintln(w, dimStyle.Render("No airline selected"))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(printer.Sprintf("Tweets by airline and sentiment (%d)", b.Total)))

	peak := 0
	for _, c := range b.Cells {
		if c.Count > peak {
			peak = c.Count
		}
	}
	for _, f := range b.Facets {
		fmt.Fprintln(w, barStyle(f.Sentiment).Bold(true).Render(f.Sentiment))
		for _, c := range f.Counts {
			fmt.Fprintf(w, "  %s %s %s\n",
				labelStyle.Render(c.Label),
				barStyle(f.Sentiment).Render(bar(c.Count, peak)),
				printer.Sprintf("%d", c.Count))
		}
	}
}

func renderWords(w io.Writer, wc processor.WordCloud) {
	fmt.Fprintln(w, titleStyle.Render(printer.Sprintf("Word cloud for %s sentiment (%d tweets)", wc.Sentiment, wc.Tweets)))
	if len(wc.Words) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No words"))
		return
	}
	peak := wc.Words[0].Count
	for _, f := range wc.Words {
		fmt.Fprintf(w, "%s %s %s\n",
			labelStyle.Render(f.Word),
			barStyle(string(wc.Sentiment)).Render(bar(f.Count, peak)),
			printer.Sprintf("%d", f.Count))
	}
}

func renderSummary(w io.Writer, s datapush.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Report "+s.GeneratedAt.Format("2006-01-02 15:04:05")))
	fmt.Fprintln(w, printer.Sprintf("Tweets: %d", s.Total))
	for _, label := range processor.Sentiments {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(string(label)), printer.Sprintf("%d", s.Sentiments[string(label)]))
	}
	if s.ReportFile != "" {
		fmt.Fprintln(w, dimStyle.Render("Saved to "+s.ReportFile))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
