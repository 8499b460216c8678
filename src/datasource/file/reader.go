// reader.go
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"AirlineSentiment/src/config"
	"AirlineSentiment/src/utils"
)

var (
	// ErrDataFileMissing 数据文件不存在或无法打开
	ErrDataFileMissing = errors.New("data file missing")
	// ErrMalformedData 数据文件无法解析、缺少必需列或时间格式错误
	ErrMalformedData = errors.New("malformed data file")
)

// Number Excel 序列号形式的日期
const Number string = `^[0-9]+(\.[0-9]+)?$`

var numberRe = regexp.MustCompile(Number)

// coordRe 匹配 tweet_coord 列，例如 "[40.64656067, -73.78334045]"
var coordRe = regexp.MustCompile(`^\[\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\]$`)

// createdFormats tweet_created 支持的时间格式，按顺序尝试
var createdFormats = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

// requiredColumns 缺一不可
var requiredColumns = []string{ColText, ColSentiment, ColAirline, ColCreated}

// ReadOptions 数据文件读取参数
type ReadOptions struct {
	Path      string
	Encoding  string // 仅 CSV 使用
	SheetName string // 仅 xlsx 使用
	HeaderRow int    // 仅 xlsx 使用
	Columns   *config.DataConfig
}

// ReadTweets 读取数据文件并归一化成推文表
func ReadTweets(opts ReadOptions) (*TweetTable, error) {
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataFileMissing, opts.Path, err)
	}

	var (
		df  dataframe.DataFrame
		err error
	)
	if strings.EqualFold(filepath.Ext(opts.Path), ".xlsx") {
		df, err = ReadXLSX(opts.Path, opts.SheetName, opts.HeaderRow)
	} else {
		df, err = ReadCSV(opts.Path, opts.Encoding)
	}
	if err != nil {
		return nil, err
	}

	df, err = normalizeTweets(df, opts.Columns)
	if err != nil {
		return nil, err
	}
	return NewTweetTable(df, opts.Path), nil
}

// ReadCSV 按指定字符集读取 CSV，所有列按字符串加载
func ReadCSV(filePath, encoding string) (dataframe.DataFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return dataframe.New(), fmt.Errorf("%w: %v", ErrDataFileMissing, err)
	}
	defer f.Close()

	r, err := decodeReader(f, encoding)
	if err != nil {
		return dataframe.New(), err
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return dataframe.New(), fmt.Errorf("%w: %s: %v", ErrMalformedData, filePath, df.Err)
	}
	return df, nil
}

// decodeReader 非 UTF-8 的 CSV 先转码
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported data encoding %q: %w", encoding, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ReadXLSX 读取 xlsx 工作表，sheetName 为空时取第一个工作表
func ReadXLSX(filePath, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.New(), fmt.Errorf("%w: xlsx open file: %v", ErrMalformedData, err)
	}

	if len(xlFile.Sheets) == 0 {
		return dataframe.New(), fmt.Errorf("%w: excel文件中没有工作表", ErrMalformedData)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.New(), fmt.Errorf("%w: 工作表 %s 不存在", ErrMalformedData, sheetName)
		}
		sheet = s
	}

	return convertSheetToDataFrame(sheet, headerRow)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet, headerRow int) (dataframe.DataFrame, error) {
	if headerRow < 0 || len(sheet.Rows) <= headerRow {
		return dataframe.New(), fmt.Errorf("%w: 工作表 %s 缺少标题行", ErrMalformedData, sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-headerRow-1)
	}

	for _, row := range sheet.Rows[headerRow+1:] {
		if row == nil {
			continue
		}
		for i := range headers {
			value := ""
			if i < len(row.Cells) && row.Cells[i] != nil {
				value = row.Cells[i].Value
			}
			columns[i] = append(columns[i], value)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.New(), fmt.Errorf("%w: %v", ErrMalformedData, df.Err)
	}
	return df, nil
}

// normalizeTweets 列名映射、必需列检查、时间解析、坐标拆分
func normalizeTweets(df dataframe.DataFrame, dcfg *config.DataConfig) (dataframe.DataFrame, error) {
	if dcfg == nil {
		_, dcfg = config.Default()
	}

	renames := map[string]string{
		config.ColID:        ColID,
		config.ColText:      ColText,
		config.ColSentiment: ColSentiment,
		config.ColAirline:   ColAirline,
		config.ColCreated:   ColCreated,
		config.ColLatitude:  ColLatitude,
		config.ColLongitude: ColLongitude,
	}
	for logical, canonical := range renames {
		header := dcfg.GetColumn(logical)
		if header == "" || header == canonical {
			continue
		}
		if utils.HasColumn(df, header) && !utils.HasColumn(df, canonical) {
			df = df.Rename(canonical, header)
		}
	}

	for _, col := range requiredColumns {
		if !utils.HasColumn(df, col) {
			return df, fmt.Errorf("%w: 缺少必需列 %s", ErrMalformedData, col)
		}
	}

	created := df.Col(ColCreated).Records()
	normalized := make([]string, len(created))
	hours := make([]int, len(created))
	for i, raw := range created {
		ts, ok, err := ParseCreated(raw)
		if err != nil {
			// 数据行号从1开始，另加标题行
			return df, fmt.Errorf("%w: 第 %d 行 %s: %v", ErrMalformedData, i+2, ColCreated, err)
		}
		if !ok {
			hours[i] = -1
			continue
		}
		normalized[i] = ts.Format(CreatedLayout)
		hours[i] = ts.Hour()
	}
	df = df.Mutate(series.New(normalized, series.String, ColCreated))
	df = df.Mutate(series.New(hours, series.Int, ColHour))

	if !utils.HasColumn(df, ColLatitude) || !utils.HasColumn(df, ColLongitude) {
		lat, lon := splitCoords(df, dcfg.GetColumn(config.ColCoord))
		df = df.Mutate(series.New(lat, series.String, ColLatitude))
		df = df.Mutate(series.New(lon, series.String, ColLongitude))
	}

	if df.Err != nil {
		return df, fmt.Errorf("%w: %v", ErrMalformedData, df.Err)
	}
	return df, nil
}

// splitCoords 从 "[lat, lon]" 列拆出经纬度，缺失时为空串
func splitCoords(df dataframe.DataFrame, coordCol string) ([]string, []string) {
	n := df.Nrow()
	lat := make([]string, n)
	lon := make([]string, n)
	if coordCol == "" || !utils.HasColumn(df, coordCol) {
		return lat, lon
	}
	for i, raw := range df.Col(coordCol).Records() {
		m := coordRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		// [0.0, 0.0] 是数据集中的占位值
		if isZero(m[1]) && isZero(m[2]) {
			continue
		}
		lat[i], lon[i] = m[1], m[2]
	}
	return lat, lon
}

func isZero(s string) bool {
	return strings.Trim(s, "-0.") == ""
}

// ParseCreated 解析 tweet_created；空值返回 ok=false 且无错误
func ParseCreated(raw string) (time.Time, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "NaN" || s == "NA" {
		return time.Time{}, false, nil
	}

	if numberRe.MatchString(s) {
		t, err := excelToTime(s)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}

	for _, format := range createdFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("无法解析时间 %q", raw)
}

// excelToTime Excel 序列号转 time.Time(UTC)
func excelToTime(s string) (time.Time, error) {
	var excelDays float64
	if _, err := fmt.Sscanf(s, "%g", &excelDays); err != nil {
		return time.Time{}, err
	}

	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := int(excelDays)
	fraction := excelDays - float64(days)

	// 四舍五入到秒，避免浮点误差
	secs := int64(86400*fraction + 0.5)
	return base.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second), nil
}
