package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"AuctionTiers/internal/model"

	"github.com/shopspring/decimal"
)

// ColumnMapping CSV列名显式映射（列名来自配置，不按列位置取值）
type ColumnMapping struct {
	Player string // 球员+位置列
	Value  string // 拍卖价格列（美元）
	Year   string // 年份列
}

// Options 解析选项
type Options struct {
	Columns ColumnMapping
	MinYear int // 有效年份下界（含）
	MaxYear int // 有效年份上界（含）
}

// ParsedRecord 解析成功的单行结果（球员姓名仅作解析中介，不入库）
type ParsedRecord struct {
	Position   model.Position
	ValueCents int64
	Year       int
}

// Result 整个CSV的解析结果：逐行错误收集，不因单行失败而中断
type Result struct {
	Records []ParsedRecord
	Errors  []model.RowError
}

// 单行拒绝原因（对外契约，保持英文稳定字符串）
const (
	ReasonUnrecognizedPosition = "unrecognized position"
	ReasonInvalidValue         = "invalid auction value"
	ReasonNegativeValue        = "negative auction value"
	ReasonInvalidYear          = "invalid year"
	ReasonYearOutOfRange       = "year out of range"
	ReasonMissingColumn        = "missing column value"
)

// ParseCSV 解析CSV数据源。表头必须存在；行号从1开始（不含表头）。
// 任何一行解析失败只记入 Result.Errors，解析继续。
func ParseCSV(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行宽不齐交给逐行校验处理

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取CSV表头失败: %w", err)
	}
	if len(header) > 0 {
		// 兼容 utf-8-sig（Excel导出常带BOM）
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idx, err := resolveColumns(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.reject(row, fmt.Sprintf("malformed csv row: %v", err))
			continue
		}

		rec, reason := parseRow(fields, idx, opts)
		if reason != "" {
			result.reject(row, reason)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// columnIndex 三个必需列在表头中的下标
type columnIndex struct {
	player, value, year int
}

// resolveColumns 按配置列名定位下标；缺列属于数据源整体问题，直接报错
func resolveColumns(header []string, cols ColumnMapping) (columnIndex, error) {
	find := func(name string) (int, error) {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("CSV缺少必需列 %q（表头: %v）", name, header)
	}
	var idx columnIndex
	var err error
	if idx.player, err = find(cols.Player); err != nil {
		return idx, err
	}
	if idx.value, err = find(cols.Value); err != nil {
		return idx, err
	}
	if idx.year, err = find(cols.Year); err != nil {
		return idx, err
	}
	return idx, nil
}

// parseRow 解析单行；返回非空 reason 表示该行被拒绝
func parseRow(fields []string, idx columnIndex, opts Options) (ParsedRecord, string) {
	max := idx.player
	if idx.value > max {
		max = idx.value
	}
	if idx.year > max {
		max = idx.year
	}
	if len(fields) <= max {
		return ParsedRecord{}, ReasonMissingColumn
	}

	_, rawPos := splitPlayerPosition(fields[idx.player])
	pos, ok := model.ParsePosition(rawPos)
	if !ok {
		return ParsedRecord{}, ReasonUnrecognizedPosition
	}

	cents, reason := parseDollarsToCents(fields[idx.value])
	if reason != "" {
		return ParsedRecord{}, reason
	}

	yearStr := strings.TrimSpace(fields[idx.year])
	if yearStr == "" {
		return ParsedRecord{}, ReasonInvalidYear
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return ParsedRecord{}, ReasonInvalidYear
	}
	if year < opts.MinYear || year > opts.MaxYear {
		return ParsedRecord{}, ReasonYearOutOfRange
	}

	return ParsedRecord{Position: pos, ValueCents: cents, Year: year}, ""
}

// splitPlayerPosition 从"球员+位置"字段拆出位置：末尾空格分隔token为位置。
// 例："Adams, Davante NYJ WR" -> ("Adams, Davante NYJ", "WR")
func splitPlayerPosition(raw string) (player, position string) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) < 2 {
		return raw, ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// parseDollarsToCents 美元字符串精确转美分。用 decimal 避免浮点误差，
// 亚美分输入四舍五入到美分。例："$105 " -> 10500
func parseDollarsToCents(raw string) (int64, string) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "$", ""), ",", ""))
	if cleaned == "" {
		return 0, ReasonInvalidValue
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ReasonInvalidValue
	}
	if d.IsNegative() {
		return 0, ReasonNegativeValue
	}
	return d.Shift(2).Round(0).IntPart(), ""
}

// reject 记录单行拒绝明细
func (r *Result) reject(row int, reason string) {
	r.Errors = append(r.Errors, model.RowError{Row: row, Reason: reason})
}
