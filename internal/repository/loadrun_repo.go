package repository

import (
	"context"
	"errors"

	"AuctionTiers/internal/model"

	"gorm.io/gorm"
)

// LoadRunRepository 加载历史仓储接口
type LoadRunRepository interface {
	// Create 记录一次完成的加载
	Create(ctx context.Context, run *model.LoadRun) error
	// Latest 最近一次加载记录；从未加载过返回 (nil, nil)
	Latest(ctx context.Context) (*model.LoadRun, error)
}

type loadRunRepository struct {
	db *gorm.DB
}

// NewLoadRunRepository 创建 LoadRunRepository 实例
func NewLoadRunRepository(db *gorm.DB) LoadRunRepository {
	return &loadRunRepository{db: db}
}

// Create 记录一次完成的加载
func (r *loadRunRepository) Create(ctx context.Context, run *model.LoadRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Latest 最近一次加载记录
func (r *loadRunRepository) Latest(ctx context.Context) (*model.LoadRun, error) {
	var run model.LoadRun
	err := r.db.WithContext(ctx).Order("id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
