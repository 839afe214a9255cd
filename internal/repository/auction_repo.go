package repository

import (
	"context"

	"AuctionTiers/internal/model"

	"gorm.io/gorm"
)

// AuctionFilter 查询筛选条件
type AuctionFilter struct {
	Position string // 可选：标准位置枚举
	Year     int    // 可选：赛季年份
}

// AuctionRepository 拍卖记录仓储接口。表内容每次加载整体替换（truncate-then-insert），无增量写路径
type AuctionRepository interface {
	// ReplaceAll 单事务内清空并批量写入全部记录（幂等加载的存储侧保证）
	ReplaceAll(ctx context.Context, records []*model.AuctionRecord) error
	// ListAll 按主键升序返回全部记录。主键序即插入序，是同值记录的稳定平序依据
	ListAll(ctx context.Context) ([]*model.AuctionRecord, error)
	// ListByFilter 按筛选条件返回记录（主键升序）
	ListByFilter(ctx context.Context, filter AuctionFilter) ([]*model.AuctionRecord, error)
	// Count 当前记录总数
	Count(ctx context.Context) (int64, error)
}

type auctionRepository struct {
	db *gorm.DB
}

// NewAuctionRepository 创建 AuctionRepository 实例
func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

// ReplaceAll 单事务内清空并批量写入全部记录
func (r *auctionRepository) ReplaceAll(ctx context.Context, records []*model.AuctionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.AuctionRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 500).Error
	})
}

// ListAll 按主键升序返回全部记录
func (r *auctionRepository) ListAll(ctx context.Context) ([]*model.AuctionRecord, error) {
	var records []*model.AuctionRecord
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByFilter 按筛选条件返回记录
func (r *auctionRepository) ListByFilter(ctx context.Context, filter AuctionFilter) ([]*model.AuctionRecord, error) {
	db := r.db.WithContext(ctx).Model(&model.AuctionRecord{})
	if filter.Position != "" {
		db = db.Where("position = ?", filter.Position)
	}
	if filter.Year > 0 {
		db = db.Where("year = ?", filter.Year)
	}
	var records []*model.AuctionRecord
	if err := db.Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count 当前记录总数
func (r *auctionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.AuctionRecord{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
