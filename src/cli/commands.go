// Package cli 命令行入口
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"AirlineSentiment/src/config"
	"AirlineSentiment/src/datapush"
	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/processor"
	"AirlineSentiment/src/report"
	"AirlineSentiment/src/storage"
	"AirlineSentiment/src/utils"
)

const (
	configFile     = "config.json"
	dataConfigFile = "dataconfig.json"
)

// app 各子命令共享的配置、日志和推文表
type app struct {
	configDir string
	dataFile  string
	debug     bool

	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
	loader *file.Loader
}

// setup 读取配置；配置目录不存在时使用默认配置
func (a *app) setup(cmd *cobra.Command) error {
	cfg, dcfg, err := config.Load(a.configDir, configFile, dataConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		cfg, dcfg = config.Default()
		err = nil
	}
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.DataFile = a.dataFile
	}
	a.cfg, a.dcfg = cfg, dcfg

	a.logger = storage.NewWriterLogger(cmd.ErrOrStderr())
	if a.debug {
		a.logger.SetLevel(storage.DEBUG)
	} else {
		a.logger.SetLevel(storage.WARNING)
	}

	a.loader = file.NewLoader(file.ReadOptions{
		Path:      cfg.DataFile,
		Encoding:  cfg.DataEncoding,
		SheetName: cfg.SheetName,
		HeaderRow: cfg.HeaderRow,
		Columns:   dcfg,
	})
	return nil
}

func (a *app) tweetProcessor() (*processor.TweetProcessor, error) {
	t1 := time.Now()
	table, err := a.loader.Load()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("推文表已加载", "file", table.Source(), "rows", table.Len(), "elapsed", time.Since(t1))

	return processor.NewTweetProcessor(table,
		processor.WithSampler(processor.NewSampler(a.cfg.RandomSeed)),
		processor.WithExtraStopwords(a.dcfg.ExtraStopwords),
	), nil
}

// generator 按配置组装报表生成器，webhook 与邮件未配置时跳过
func (a *app) generator(proc *processor.TweetProcessor) *report.Generator {
	var pusher report.Pusher
	if a.cfg.Report.WebhookURL != "" {
		pusher = datapush.NewWebhookPusher(a.cfg.Report.WebhookURL, a.cfg.Report.RetryTimes, time.Duration(a.cfg.Report.RetryInterval))
	}
	var mailer report.Mailer
	if m := datapush.NewMailer(a.cfg); m.Enabled() {
		mailer = m
	}
	return report.NewGenerator(proc, a.cfg.Report.Dir, a.logger, pusher, mailer)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tweets",
		Short: "Airline tweet sentiment queries",
		Long: `Query and aggregate the US airline tweet sentiment dataset:
random tweets, sentiment counts, hourly activity, airline breakdowns and word clouds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configDir, "config", "./config", "Configuration directory")
	rootCmd.PersistentFlags().StringVar(&a.dataFile, "data", "", "Dataset path (overrides data_file)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newSampleCmd(a))
	rootCmd.AddCommand(newCountsCmd(a))
	rootCmd.AddCommand(newHourCmd(a))
	rootCmd.AddCommand(newBreakdownCmd(a))
	rootCmd.AddCommand(newWordsCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newReportCmd(a))

	return rootCmd
}

// Execute 运行根命令
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func newSampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample [SENTIMENT]",
		Short: "Show a random tweet with the given sentiment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sentiment := string(processor.Positive)
			if len(args) == 1 {
				sentiment = args[0]
			}
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			tweet, err := proc.RandomTweet(sentiment)
			if err != nil {
				return err
			}
			renderTweet(cmd.OutOrStdout(), tweet)
			return nil
		},
	}
}

func newCountsCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count tweets by sentiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			chart, err := proc.SentimentChart(mode)
			if err != nil {
				return err
			}
			renderCounts(cmd.OutOrStdout(), chart)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(processor.Histogram), "Display mode: histogram or pie")
	return cmd
}

func newHourCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "hour HOUR",
		Short: "Show tweets sent during an hour of the day (0-23)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", processor.ErrInvalidHour, args[0])
			}
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			slice, err := proc.TweetsAtHour(hour, raw)
			if err != nil {
				return err
			}
			renderHour(cmd.OutOrStdout(), slice)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Show raw data")
	return cmd
}

func newBreakdownCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown [AIRLINE...]",
		Short: "Break down tweets by airline and sentiment",
		Long:  "Airlines: US Airways, United, American, Southwest, Delta, Virgin America.",
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			b, err := proc.AirlineBreakdown(args)
			if err != nil {
				return err
			}
			renderBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func newWordsCmd(a *app) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "words SENTIMENT",
		Short: "Show word cloud frequencies for a sentiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			wc, err := proc.WordCloud(args[0], top)
			if err != nil {
				return err
			}
			renderWords(cmd.OutOrStdout(), wc)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 20, "Number of words to show (0 for all)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var hour int
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Export the tweet table (or one hour of it) to xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			df := proc.Table().Frame()
			if cmd.Flags().Changed("hour") {
				slice, err := proc.TweetsAtHour(hour, false)
				if err != nil {
					return err
				}
				df = slice.Frame()
			}
			if err := utils.SaveToExcel(df, args[0], "tweets"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), printer.Sprintf("Exported %d tweets to %s", df.Nrow(), args[0]))
			return nil
		},
	}
	cmd.Flags().IntVar(&hour, "hour", 0, "Only export tweets from this hour")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Generate the sentiment report once and deliver it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.tweetProcessor()
			if err != nil {
				return err
			}
			summary, err := a.generator(proc).Run(cmd.Context())
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, cmd.ErrOrStderr())
		},
	}
}
