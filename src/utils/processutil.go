package utils

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// WriteSheet 把 DataFrame 写入工作簿中的 sheetName，工作表不存在时新建
//
// 新建的 excelize 工作簿自带空的 Sheet1，第一次写入时直接改名复用。
func WriteSheet(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return err
	}
	if idx == -1 {
		if sheets := f.GetSheetList(); len(sheets) == 1 && sheets[0] == "Sheet1" && isEmptySheet(f, "Sheet1") {
			if err := f.SetSheetName("Sheet1", sheetName); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheetName); err != nil {
			return err
		}
	}

	// 写入列名
	colNames := df.Names()
	header := make([]interface{}, len(colNames))
	for i, name := range colNames {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	// 写入数据
	cols := make([]series.Series, len(colNames))
	for i, name := range colNames {
		cols[i] = df.Col(name)
	}
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		row := make([]interface{}, len(cols))
		for colIdx, col := range cols {
			row[colIdx] = col.Val(rowIdx)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func isEmptySheet(f *excelize.File, sheet string) bool {
	rows, err := f.GetRows(sheet)
	return err == nil && len(rows) == 0
}

// SaveToExcel 将DataFrame保存为单工作表的Excel文件
func SaveToExcel(df dataframe.DataFrame, filePath, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := WriteSheet(f, sheetName, df); err != nil {
		return fmt.Errorf("写入工作表失败: %w", err)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

// WriteExcel 将DataFrame写成单工作表的xlsx，输出到 w
func WriteExcel(w io.Writer, df dataframe.DataFrame, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := WriteSheet(f, sheetName, df); err != nil {
		return fmt.Errorf("写入工作表失败: %w", err)
	}
	return f.Write(w)
}
