package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// 逻辑列名，dataconfig.json 中 columns 的 key
const (
	ColID        = "id"
	ColText      = "text"
	ColSentiment = "sentiment"
	ColAirline   = "airline"
	ColCreated   = "created"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
	ColCoord     = "coord"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	DataFile     string `json:"data_file"`     // 推文数据文件(.csv / .xlsx)
	DataEncoding string `json:"data_encoding"` // CSV 字符集，默认 utf-8
	SheetName    string `json:"sheet_name"`    // xlsx 数据所在工作表
	HeaderRow    int    `json:"header_row"`    // xlsx 标题行(从0开始)
	RandomSeed   uint64 `json:"random_seed"`   // 0 表示按时间随机
	WatchData    bool   `json:"watch_data"`    // 监控数据文件变化

	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"` // 例如 "10 * 1024 * 1024"
	LogLevel   string `json:"log_level"`

	HTTP struct {
		Addr            string   `json:"addr"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"http"`

	Report struct {
		Enabled       bool     `json:"enabled"`
		Interval      Duration `json:"interval"`       // 定时报表间隔
		Dir           string   `json:"dir"`            // 报表输出目录
		WebhookURL    string   `json:"webhook_url"`    // 为空则不推送
		RetryTimes    int      `json:"retry_times"`    // 推送重试次数
		RetryInterval Duration `json:"retry_interval"` // 推送重试间隔
	} `json:"report"`

	SendEmail struct {
		Server   string   `json:"server"`   // 邮件服务器地址
		Username string   `json:"username"` // 邮箱用户名
		Password string   `json:"password"` // 邮箱密码
		To       []string `json:"to"`       // 收件人
		Subject  string   `json:"subject"`  // 邮件主题
	} `json:"send_email"`
}

// DataConfig 数据列映射与词云配置
type DataConfig struct {
	Columns        map[string]string `json:"columns"`
	ExtraStopwords []string          `json:"extra_stopwords"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

// LoadConfig 进程内只加载一次
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = Load(jsonFolder, jsonFile, dataJsonFile)
	})
	if err == nil && instance == nil {
		err = fmt.Errorf("配置未加载")
	}
	return instance, dataConfigInstance, err
}

// Load 不走缓存，直接读取并解析两个配置文件
func Load(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	cfg.loadFromEnv()
	cfg.applyDefaults()
	dcfg.applyDefaults()
	return cfg, dcfg, nil
}

// Default 无配置文件时使用的默认配置
func Default() (*Config, *DataConfig) {
	cfg := &Config{}
	dcfg := &DataConfig{}
	cfg.loadFromEnv()
	cfg.applyDefaults()
	dcfg.applyDefaults()
	return cfg, dcfg
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// loadFromEnv 环境变量覆盖配置文件
func (c *Config) loadFromEnv() {
	if val := os.Getenv("TWEETS_DATA_FILE"); val != "" {
		c.DataFile = val
	}
	if val := os.Getenv("TWEETS_DATA_ENCODING"); val != "" {
		c.DataEncoding = val
	}
	if val := os.Getenv("TWEETS_HTTP_ADDR"); val != "" {
		c.HTTP.Addr = val
	}
	if val := os.Getenv("TWEETS_LOG_NAME"); val != "" {
		c.LogName = val
	}
	if val := os.Getenv("TWEETS_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("TWEETS_REPORT_WEBHOOK"); val != "" {
		c.Report.WebhookURL = val
	}
	if val := os.Getenv("TWEETS_REPORT_DIR"); val != "" {
		c.Report.Dir = val
	}
	if val := os.Getenv("TWEETS_RANDOM_SEED"); val != "" {
		if seed, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.RandomSeed = seed
		}
	}
	if val := os.Getenv("TWEETS_SMTP_PASSWORD"); val != "" {
		c.SendEmail.Password = val
	}
}

func (c *Config) applyDefaults() {
	if c.DataFile == "" {
		c.DataFile = "Tweets.csv"
	}
	if c.DataEncoding == "" {
		c.DataEncoding = "utf-8"
	}
	if c.SheetName == "" {
		c.SheetName = "Tweets"
	}
	if c.LogName == "" {
		c.LogName = "app.log"
	}
	if c.LogMaxSize == "" {
		c.LogMaxSize = "10 * 1024 * 1024"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = Duration(5 * time.Second)
	}
	if c.Report.Interval == 0 {
		c.Report.Interval = Duration(time.Hour)
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "./reports"
	}
	if c.Report.RetryTimes <= 0 {
		c.Report.RetryTimes = 5
	}
	if c.Report.RetryInterval == 0 {
		c.Report.RetryInterval = Duration(2 * time.Second)
	}
	if c.SendEmail.Subject == "" {
		c.SendEmail.Subject = "Airline tweet sentiment report"
	}
}

// defaultColumns 对应 Kaggle Twitter US Airline Sentiment 数据集表头
var defaultColumns = map[string]string{
	ColID:        "tweet_id",
	ColText:      "text",
	ColSentiment: "airline_sentiment",
	ColAirline:   "airline",
	ColCreated:   "tweet_created",
	ColLatitude:  "latitude",
	ColLongitude: "longitude",
	ColCoord:     "tweet_coord",
}

func (dc *DataConfig) applyDefaults() {
	mu.Lock()
	defer mu.Unlock()
	if dc.Columns == nil {
		dc.Columns = make(map[string]string, len(defaultColumns))
	}
	for k, v := range defaultColumns {
		if strings.TrimSpace(dc.Columns[k]) == "" {
			dc.Columns[k] = v
		}
	}
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// GetColumn 逻辑列名 -> 数据文件表头
func (dc *DataConfig) GetColumn(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	if col, ok := dc.Columns[name]; ok {
		return col
	}
	return defaultColumns[name]
}

func (dc *DataConfig) SetColumn(name, header string) {
	mu.Lock()
	defer mu.Unlock()
	if dc.Columns == nil {
		dc.Columns = make(map[string]string)
	}
	dc.Columns[name] = header
}
