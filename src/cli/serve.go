package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AirlineSentiment/src/api"
	"AirlineSentiment/src/datasource/file"
	"AirlineSentiment/src/report"
	"AirlineSentiment/src/storage"
)

const rotateCheckInterval = time.Minute

// runServe 启动 HTTP 服务，直到收到 SIGINT/SIGTERM
func runServe(ctx context.Context, a *app, console io.Writer) error {
	logger, err := storage.NewLogger(a.cfg.LogName)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Close()
	logger.SetConsole(console)
	logger.SetLevel(storage.ParseLevel(a.cfg.LogLevel))
	if a.debug {
		logger.SetLevel(storage.DEBUG)
	}
	a.logger = logger

	proc, err := a.tweetProcessor()
	if err != nil {
		logger.Fatal("加载推文数据失败", "file", a.cfg.DataFile, "error", err)
		return err
	}
	logger.Info("推文数据已加载", "file", proc.Table().Source(), "rows", proc.Table().Len())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reopenOnHangup(ctx, logger, a.cfg.LogName)
	go rotateLogs(ctx, logger, a.cfg.LogMaxSize)

	if a.cfg.WatchData {
		monitor, err := file.NewFileMonitor(a.cfg.DataFile)
		if err != nil {
			logger.Warning("无法监控数据文件", "file", a.cfg.DataFile, "error", err)
		} else {
			go func() {
				_ = monitor.Watch(ctx, func(path string) {
					logger.Warning("数据文件已变化，重启服务后生效", "file", path)
				})
			}()
		}
	}

	if a.cfg.Report.Enabled {
		sched, err := report.NewScheduler(ctx, a.generator(proc), time.Duration(a.cfg.Report.Interval), logger)
		if err != nil {
			logger.Error("创建报表定时任务失败", "error", err)
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := api.NewServer(a.cfg.HTTP.Addr, proc, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP 服务异常退出", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务失败", "error", err)
		return err
	}
	logger.Info("服务已关闭")
	return nil
}

// reopenOnHangup 收到 SIGHUP 时重新打开日志文件，配合外部 logrotate
func reopenOnHangup(ctx context.Context, logger *storage.Logger, filename string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := logger.Reopen(filename); err != nil {
				logger.Error("重新打开日志文件失败", "error", err)
				continue
			}
			logger.Info("日志文件已重新打开", "file", filename)
		}
	}
}

func rotateLogs(ctx context.Context, logger *storage.Logger, maxSize string) {
	ticker := time.NewTicker(rotateCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := logger.CheckRotate(maxSize); err != nil {
				logger.Error("日志轮转失败", "error", err)
			}
		}
	}
}
