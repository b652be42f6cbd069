package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
)

// Table 是表格读取器的统一输出：一行表头 + 若干数据行（原始字符串单元格）。
// 数据行可能比表头短（表格软件会截掉行尾空单元格），缺失单元格按空字符串处理。
type Table struct {
	Header []string
	Rows   [][]string
}

// cell 返回第 col 列的值（去除首尾空白），越界返回空字符串。
func (t *Table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader 统一表头：去 BOM、去空白、转小写。
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// BuildCatalog 按 schema 把 Table 转为 Catalog。
//
// 校验规则：
//   - 表头必须包含 name 列和每个 schema 属性列，否则 SchemaMismatchError
//   - 只校验通过类别过滤的行：name 不能为空或重复，schema 属性必须是非负数值
//   - schema 之外的数值列（例如 total）一并写入 Attributes，非数值列写入 Meta
//   - 完全空白的行被跳过
func BuildCatalog(ctx context.Context, t *Table, schema feature.AttributeSchema, category string) (*Catalog, error) {
	return buildCatalog(ctx, "", "", t, schema, category)
}

func buildCatalog(ctx context.Context, source, format string, t *Table, schema feature.AttributeSchema, category string) (*Catalog, error) {
	if schema.IsZero() {
		return nil, fmt.Errorf("catalog: empty schema")
	}

	columns := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	nameCol, ok := columns[ColumnName]
	if !ok {
		return nil, core.SchemaMismatchError(ColumnName, "table has no name column")
	}
	categoryCol, hasCategory := columns[ColumnCategory]
	if !hasCategory {
		categoryCol = -1
	}

	attrCols := make([]int, schema.Len())
	for i, attr := range schema.Names() {
		col, ok := columns[attr]
		if !ok {
			return nil, core.SchemaMismatchError(attr, fmt.Sprintf("column %q missing for schema %s", attr, schema.Version()))
		}
		attrCols[i] = col
	}

	// 其余列：数值写入 Attributes，其他写入 Meta
	extraCols := make(map[string]int)
	for name, col := range columns {
		if name == ColumnName || name == ColumnCategory || schema.Contains(name) {
			continue
		}
		extraCols[name] = col
	}

	attrNames := schema.Names()
	cat := newCatalog(source, format, len(t.Rows))
	for i, row := range t.Rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2 // 表头为第 1 行

		rowCategory := t.cell(row, categoryCol)
		if category != "" && rowCategory != category {
			continue
		}

		name := t.cell(row, nameCol)
		if name == "" {
			return nil, core.SchemaMismatchError(ColumnName, fmt.Sprintf("row %d: blank name", rowNum))
		}
		if _, dup := cat.index[name]; dup {
			return nil, core.SchemaMismatchError(ColumnName, fmt.Sprintf("row %d: duplicate name %q", rowNum, name))
		}

		it := core.NewItem(name)
		it.Category = rowCategory
		it.Meta["row"] = rowNum
		for j, col := range attrCols {
			v, err := parseScore(t.cell(row, col))
			if err != nil {
				return nil, core.SchemaMismatchError(attrNames[j], fmt.Sprintf("row %d (%s): attribute %q %v", rowNum, name, attrNames[j], err))
			}
			it.Attributes[attrNames[j]] = v
		}
		for extra, col := range extraCols {
			raw := t.cell(row, col)
			if raw == "" {
				continue
			}
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				it.Attributes[extra] = v
			} else {
				it.Meta[extra] = raw
			}
		}
		cat.add(it)
	}
	return cat, nil
}

var (
	errBlank      = errors.New("is blank")
	errNotNumeric = errors.New("is not numeric")
	errNegative   = errors.New("is negative")
	errNotFinite  = errors.New("is not finite")
)

func parseScore(raw string) (float64, error) {
	if raw == "" {
		return 0, errBlank
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errNotNumeric
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}
