package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuctionRecord struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID，同时作为同值记录的稳定排序键"`
	Position   string    `gorm:"column:position;type:varchar(8);not null;index:idx_position_year;comment:位置枚举：QB/RB/WR/TE/DEF/K"`
	ValueCents int64     `gorm:"column:value_cents;type:bigint;not null;comment:拍卖成交价（美分，避免浮点误差）"`
	Year       int       `gorm:"column:year;type:int;not null;index:idx_position_year;index:idx_year;comment:赛季年份"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;comment:入库时间"`
}

type LoadRun struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID         string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:本次加载的全局唯一ID"`
	SourceName      string         `gorm:"column:source_name;type:varchar(256);not null;comment:数据源名称（CSV文件路径）"`
	Fingerprint     string         `gorm:"column:fingerprint;type:varchar(64);not null;comment:源数据的sha256指纹，用于幂等判断"`
	RecordsLoaded   int            `gorm:"column:records_loaded;type:int;not null;comment:成功入库行数"`
	RecordsRejected int            `gorm:"column:records_rejected;type:int;not null;comment:被拒绝行数"`
	RowErrors       datatypes.JSON `gorm:"column:row_errors;comment:被拒绝行明细：[{row, reason}]"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamp;comment:加载时间"`
}

func (AuctionRecord) TableName() string { return "auction_records" }
func (LoadRun) TableName() string       { return "load_runs" }
