package model

import "fmt"

// PositionTier 分层结果：每个 (year, position, position_rank) 一行。
// 由 auction_records 派生的只读投影，数据变更后整体重算，永不直接修改。
type PositionTier struct {
	Position     Position `json:"position"`
	Year         int      `json:"year"`
	PositionRank int      `json:"position_rank"`
	ValueCents   int64    `json:"value_cents"`
	TierLabel    string   `json:"tier_label"` // position 与 rank 拼接，如 "WR1"
}

// RowError 加载阶段单行解析失败明细（行号从1开始计数，不含表头）
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// LoadReport 一次加载的结构化结果：逐行错误收集在 Errors 中，加载本身不会因单行失败而中断
type LoadReport struct {
	RunUUID         string     `json:"run_uuid"`
	SourceName      string     `json:"source_name"`
	Fingerprint     string     `json:"fingerprint"`
	RecordsLoaded   int        `json:"records_loaded"`
	RecordsRejected int        `json:"records_rejected"`
	Errors          []RowError `json:"errors"`
}

// IntegrityError 存储数据违反不变量（负值、未知位置等本应在加载时被拒绝的数据）。
// 发现即中止本次计算，不输出部分结果。
type IntegrityError struct {
	RecordIDs []uint64
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("数据完整性错误: %s (record ids: %v)", e.Reason, e.RecordIDs)
}
