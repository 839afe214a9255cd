package service

import (
	"context"
	"fmt"
	"sort"

	"AuctionTiers/internal/model"
	"AuctionTiers/internal/repository"

	"github.com/sirupsen/logrus"
)

// TierService 分层引擎：auction_records -> position_tiers 投影的纯函数计算
type TierService struct {
	auctionRepo repository.AuctionRepository
	logger      *logrus.Logger
}

// NewTierService 创建 TierService 实例
func NewTierService(auctionRepo repository.AuctionRepository, logger *logrus.Logger) *TierService {
	return &TierService{auctionRepo: auctionRepo, logger: logger}
}

// ComputeTiers 对当前全部 auction_records 按 (year, position) 分组，组内按价格降序
// 赋密集名次 1..N。同价记录按主键（即插入序）升序平序，因此输入不变时两次计算结果
// 逐字节一致。输出整体按 (year, position, rank) 排序。
// 发现完整性违规（负值、未知位置）立即返回 IntegrityError，不输出部分结果。
func (s *TierService) ComputeTiers(ctx context.Context) ([]model.PositionTier, error) {
	records, err := s.auctionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取拍卖记录失败: %w", err)
	}
	return rankRecords(records)
}

// groupKey (year, position) 分组键
type groupKey struct {
	year     int
	position model.Position
}

// rankRecords 分组排名核心逻辑。records 须按主键升序传入
func rankRecords(records []*model.AuctionRecord) ([]model.PositionTier, error) {
	if err := checkIntegrity(records); err != nil {
		return nil, err
	}

	groups := make(map[groupKey][]*model.AuctionRecord)
	keys := make([]groupKey, 0)
	for _, rec := range records {
		key := groupKey{year: rec.Year, position: model.Position(rec.Position)}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], rec)
	}

	// 输出顺序固定：year 升序 -> position 字典序
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].position < keys[j].position
	})

	tiers := make([]model.PositionTier, 0, len(records))
	for _, key := range keys {
		group := groups[key]
		// 价格降序；SliceStable 保持切片原有的主键升序作为同价平序
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ValueCents > group[j].ValueCents
		})
		for i, rec := range group {
			rank := i + 1
			tiers = append(tiers, model.PositionTier{
				Position:     key.position,
				Year:         key.year,
				PositionRank: rank,
				ValueCents:   rec.ValueCents,
				TierLabel:    fmt.Sprintf("%s%d", key.position, rank),
			})
		}
	}
	return tiers, nil
}

// checkIntegrity 存储数据不变量校验：加载层本应拒绝的脏数据一旦入库，计算端快速失败
func checkIntegrity(records []*model.AuctionRecord) error {
	var negative, unknown []uint64
	for _, rec := range records {
		if rec.ValueCents < 0 {
			negative = append(negative, rec.ID)
		}
		if !model.Position(rec.Position).Valid() {
			unknown = append(unknown, rec.ID)
		}
	}
	if len(negative) > 0 {
		return &model.IntegrityError{RecordIDs: negative, Reason: "negative auction value in storage"}
	}
	if len(unknown) > 0 {
		return &model.IntegrityError{RecordIDs: unknown, Reason: "unrecognized position in storage"}
	}
	return nil
}
