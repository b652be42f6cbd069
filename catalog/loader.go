package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/metrics"
)

// FileLoader 从本地表格文件加载目录，按扩展名选择读取器：
//
//	.xlsx / .xlsm -> XLSXReader
//	.xls          -> XLSReader
//	.csv          -> CSVReader
//	.tsv          -> CSVReader{Comma: '\t'}
//
// FileLoader 本身不保存任何请求状态，可被并发请求共享；
// 每次 Load 都重新打开文件。
type FileLoader struct {
	Path    string
	readers map[string]TableReader
}

// FileLoaderOption 配置 FileLoader。
type FileLoaderOption func(*FileLoader)

// WithSheet 指定 xlsx/xls 工作表名称。
func WithSheet(sheet string) FileLoaderOption {
	return func(l *FileLoader) {
		l.readers[".xlsx"] = &XLSXReader{Sheet: sheet}
		l.readers[".xlsm"] = &XLSXReader{Sheet: sheet}
		l.readers[".xls"] = &XLSReader{Sheet: sheet}
	}
}

// WithReader 为扩展名注册自定义读取器（扩展名包含点，如 ".txt"）。
func WithReader(ext string, reader TableReader) FileLoaderOption {
	return func(l *FileLoader) {
		l.readers[strings.ToLower(ext)] = reader
	}
}

func NewFileLoader(path string, opts ...FileLoaderOption) *FileLoader {
	l := &FileLoader{
		Path: path,
		readers: map[string]TableReader{
			".xlsx": &XLSXReader{},
			".xlsm": &XLSXReader{},
			".xls":  &XLSReader{},
			".csv":  &CSVReader{},
			".tsv":  &CSVReader{Comma: '\t'},
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ Loader = (*FileLoader)(nil)

func (l *FileLoader) Load(ctx context.Context, schema feature.AttributeSchema, category string) (*Catalog, error) {
	ext := strings.ToLower(filepath.Ext(l.Path))
	reader, ok := l.readers[ext]
	if !ok {
		return nil, core.DataSourceError(l.Path, fmt.Errorf("unsupported table format %q", ext))
	}

	start := time.Now()
	table, err := readFile(ctx, l.Path, reader)
	if err != nil {
		metrics.RecordCatalogLoad(reader.Format(), "error", time.Since(start), 0)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, core.DataSourceError(l.Path, err)
	}

	cat, err := buildCatalog(ctx, l.Path, reader.Format(), table, schema, category)
	if err != nil {
		metrics.RecordCatalogLoad(reader.Format(), "error", time.Since(start), 0)
		return nil, err
	}
	metrics.RecordCatalogLoad(reader.Format(), "ok", time.Since(start), cat.Len())
	return cat, nil
}
