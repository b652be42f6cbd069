package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// TableReader 把一种表格格式读成 Table。
type TableReader interface {
	// Format 返回格式名（用于日志/监控）
	Format() string

	// Read 读取数据源的第一行作为表头，其余为数据行
	Read(ctx context.Context, r io.Reader) (*Table, error)
}

// XLSXReader 读取 Office Open XML 工作簿（.xlsx / .xlsm）。
type XLSXReader struct {
	// Sheet 工作表名称，为空时读取第一个工作表
	Sheet string
}

func (r *XLSXReader) Format() string { return "xlsx" }

func (r *XLSXReader) Read(_ context.Context, src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	// 读取原始值：带千分位或百分比格式的分值单元格不能按显示文本解析
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rowsToTable(rows)
}

// XLSReader 读取 BIFF8 格式的旧版工作簿（.xls）。
type XLSReader struct {
	// Sheet 工作表名称，为空时读取第一个工作表
	Sheet string
}

func (r *XLSReader) Format() string { return "xls" }

func (r *XLSReader) Read(_ context.Context, src io.Reader) (*Table, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		if r.Sheet != "" && sheet.GetName() != r.Sheet {
			continue
		}
		xrows := sheet.GetRows()
		rows := make([][]string, 0, len(xrows))
		for _, xr := range xrows {
			rows = append(rows, xlsRowValues(xr.GetCols()))
		}
		return rowsToTable(rows)
	}
	if r.Sheet != "" {
		return nil, fmt.Errorf("xls: sheet %q not found", r.Sheet)
	}
	return nil, errors.New("xls: workbook has no sheets")
}

// xlsRowValues 把单元格转为字符串；GetString 为空时回退到数值读取。
func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}

// CSVReader 读取分隔符文本（.csv / .tsv）。
type CSVReader struct {
	// Comma 字段分隔符，零值为 ','
	Comma rune
}

func (r *CSVReader) Format() string {
	if r.Comma == '\t' {
		return "tsv"
	}
	return "csv"
}

func (r *CSVReader) Read(ctx context.Context, src io.Reader) (*Table, error) {
	cr := csv.NewReader(src)
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
		if len(rows)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return rowsToTable(rows)
}

func rowsToTable(rows [][]string) (*Table, error) {
	// 跳过表头前的空行
	for len(rows) > 0 && isBlankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errors.New("table has no header row")
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// readFile 打开文件并交给 reader 解析。
func readFile(ctx context.Context, path string, reader TableReader) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return reader.Read(ctx, f)
}
