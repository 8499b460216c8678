// Package report 生成情感统计报表(xlsx)，并按需推送摘要、发送邮件。
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"AirlineSentiment/src/datapush"
	"AirlineSentiment/src/processor"
	"AirlineSentiment/src/storage"
	"AirlineSentiment/src/utils"
)

// 报表中的工作表
const (
	SheetSentiment = "sentiment"
	SheetAirline   = "airline"
	SheetHourly    = "hourly"
)

// Pusher 摘要推送
type Pusher interface {
	Push(ctx context.Context, summary datapush.Summary) error
}

// Mailer 报表邮件
type Mailer interface {
	Enabled() bool
	Send(summary datapush.Summary) error
}

// Generator 生成一次报表
type Generator struct {
	proc   *processor.TweetProcessor
	dir    string
	logger *storage.Logger
	pusher Pusher
	mailer Mailer
	now    func() time.Time
}

// NewGenerator pusher、mailer 可为 nil
func NewGenerator(proc *processor.TweetProcessor, dir string, logger *storage.Logger, pusher Pusher, mailer Mailer) *Generator {
	return &Generator{
		proc:   proc,
		dir:    dir,
		logger: logger,
		pusher: pusher,
		mailer: mailer,
		now:    time.Now,
	}
}

// BuildSummary 全表情感计数 + 各航空公司推文数
func (g *Generator) BuildSummary() (datapush.Summary, error) {
	counts := g.proc.SentimentCounts()
	summary := datapush.Summary{
		GeneratedAt: g.now(),
		Source:      g.proc.Table().Source(),
		Total:       g.proc.Table().Len(),
		Sentiments:  make(map[string]int, len(counts)),
		Airlines:    make(map[string]int, len(processor.Airlines)),
	}
	for _, c := range counts {
		summary.Sentiments[c.Label] = c.Count
	}

	breakdown, err := g.proc.AirlineBreakdown(processor.Airlines)
	if err != nil {
		return summary, err
	}
	for _, cell := range breakdown.Cells {
		summary.Airlines[cell.Airline] += cell.Count
	}
	return summary, nil
}

// WriteWorkbook 写出三个工作表：情感计数、航空公司 x 情感、每小时推文数
func (g *Generator) WriteWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := utils.WriteSheet(f, SheetSentiment, processor.CountsFrame(g.proc.SentimentCounts())); err != nil {
		return err
	}

	breakdown, err := g.proc.AirlineBreakdown(processor.Airlines)
	if err != nil {
		return err
	}
	if err := utils.WriteSheet(f, SheetAirline, processor.BreakdownFrame(breakdown)); err != nil {
		return err
	}

	hourly, err := g.hourlyFrame()
	if err != nil {
		return err
	}
	if err := utils.WriteSheet(f, SheetHourly, hourly); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

func (g *Generator) hourlyFrame() (dataframe.DataFrame, error) {
	hours := make([]int, 24)
	counts := make([]int, 24)
	for h := 0; h < 24; h++ {
		slice, err := g.proc.TweetsAtHour(h, false)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		hours[h] = h
		counts[h] = slice.Count
	}
	return dataframe.New(
		series.New(hours, series.Int, "hour"),
		series.New(counts, series.Int, "tweets"),
	), nil
}

// Run 生成报表文件，然后推送摘要、发送邮件
//
// 推送与邮件失败只记录日志，不影响报表文件本身。
func (g *Generator) Run(ctx context.Context) (datapush.Summary, error) {
	t1 := time.Now()

	summary, err := g.BuildSummary()
	if err != nil {
		return summary, err
	}

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return summary, fmt.Errorf("创建报表目录失败: %w", err)
	}
	path := filepath.Join(g.dir, fmt.Sprintf("sentiment_%s.xlsx", summary.GeneratedAt.Format("20060102150405")))
	if err := g.WriteWorkbook(path); err != nil {
		return summary, err
	}
	summary.ReportFile = path
	g.logger.Info("报表已生成", "file", path, "tweets", summary.Total)

	if g.pusher != nil {
		if err := g.pusher.Push(ctx, summary); err != nil {
			g.logger.Error("推送报表摘要失败", "error", err)
		}
	}
	if g.mailer != nil && g.mailer.Enabled() {
		if err := g.mailer.Send(summary); err != nil {
			g.logger.Error("发送报表邮件失败", "error", err)
		}
	}

	g.logger.Debug("报表处理时间", "elapsed", time.Since(t1))
	return summary, nil
}
