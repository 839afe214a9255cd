package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"AuctionTiers/internal/model"

	"github.com/sirupsen/logrus"
)

// AnalyticsService 固定集合的只读聚合查询库，是下游（图表前端）唯一的数据接口。
// 全部运算在整数美分上进行，四舍五入只发生在展示层（handler），聚合前绝不取整。
// 空分组一律省略行，不报错。
type AnalyticsService struct {
	tierService *TierService
	logger      *logrus.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(tierService *TierService, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{tierService: tierService, logger: logger}
}

// YearValue 单年取值（美分）
type YearValue struct {
	Year       int   `json:"year"`
	ValueCents int64 `json:"value_cents"`
}

// TrendSeries 某一层级的逐年时间序列
type TrendSeries struct {
	TierLabel    string      `json:"tier_label"`
	PositionRank int         `json:"position_rank"`
	Points       []YearValue `json:"points"`
}

// CrossPositionRow 某一年各位置 rank1 价格的宽表行
type CrossPositionRow struct {
	Year      int              `json:"year"`
	TopValues map[string]int64 `json:"top_values"` // position -> rank1 美分
}

// DropoffRow 某位置单年内相邻名次的价格落差
type DropoffRow struct {
	Year        int           `json:"year"`
	ValuesCents map[int]int64 `json:"values_cents"` // rank -> 美分
	DropsCents  map[int]int64 `json:"drops_cents"`  // rank k -> value[k]-value[k+1]（精确整数差）
}

// TierStat 某 (position, rank) 跨全部年份的描述统计
type TierStat struct {
	Position     string  `json:"position"`
	PositionRank int     `json:"position_rank"`
	TierLabel    string  `json:"tier_label"`
	AvgCents     float64 `json:"avg_cents"`
	MinCents     int64   `json:"min_cents"`
	MaxCents     int64   `json:"max_cents"`
	SampleSize   int     `json:"sample_size"`
}

// VolatilityRow 某 (position, rank) 的波动性指标
type VolatilityRow struct {
	Position     string  `json:"position"`
	PositionRank int     `json:"position_rank"`
	TierLabel    string  `json:"tier_label"`
	MeanCents    float64 `json:"mean_cents"`
	CVPct        float64 `json:"cv_pct"` // 总体标准差/均值，百分比；恒>=0，全部同值时为0
}

// EraComparison 某 (position, rank) 在 cutoff 前后两段的均值对比
type EraComparison struct {
	Position           string  `json:"position"`
	PositionRank       int     `json:"position_rank"`
	TierLabel          string  `json:"tier_label"`
	HistoricalAvgCents float64 `json:"historical_avg_cents"`
	RecentAvgCents     float64 `json:"recent_avg_cents"`
	PctChange          float64 `json:"pct_change"`
}

// TierTrend 指定位置 1..maxRank 各层级的逐年价格序列（年份升序；无数据的层级省略）
func (s *AnalyticsService) TierTrend(ctx context.Context, position model.Position, maxRank int) ([]TrendSeries, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	byRank := make(map[int][]YearValue)
	for _, t := range tiers {
		if t.Position != position || t.PositionRank > maxRank {
			continue
		}
		byRank[t.PositionRank] = append(byRank[t.PositionRank], YearValue{Year: t.Year, ValueCents: t.ValueCents})
	}

	result := make([]TrendSeries, 0, len(byRank))
	for rank := 1; rank <= maxRank; rank++ {
		points, ok := byRank[rank]
		if !ok {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
		result = append(result, TrendSeries{
			TierLabel:    fmt.Sprintf("%s%d", position, rank),
			PositionRank: rank,
			Points:       points,
		})
	}
	return result, nil
}

// CrossPositionTop 年份区间内逐年各位置 rank1 价格的宽表（无任何数据的年份省略）
func (s *AnalyticsService) CrossPositionTop(ctx context.Context, fromYear, toYear int) ([]CrossPositionRow, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int]map[string]int64)
	for _, t := range tiers {
		if t.PositionRank != 1 || t.Year < fromYear || t.Year > toYear {
			continue
		}
		if byYear[t.Year] == nil {
			byYear[t.Year] = make(map[string]int64)
		}
		byYear[t.Year][string(t.Position)] = t.ValueCents
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	result := make([]CrossPositionRow, 0, len(years))
	for _, y := range years {
		result = append(result, CrossPositionRow{Year: y, TopValues: byYear[y]})
	}
	return result, nil
}

// Dropoff 指定位置逐年 1..ranks 名次的价格与相邻名次落差。
// 落差为精确整数差：DropsCents[k] = ValuesCents[k] - ValuesCents[k+1]
func (s *AnalyticsService) Dropoff(ctx context.Context, position model.Position, ranks int) ([]DropoffRow, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int]map[int]int64)
	for _, t := range tiers {
		if t.Position != position || t.PositionRank > ranks {
			continue
		}
		if byYear[t.Year] == nil {
			byYear[t.Year] = make(map[int]int64)
		}
		byYear[t.Year][t.PositionRank] = t.ValueCents
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	result := make([]DropoffRow, 0, len(years))
	for _, y := range years {
		values := byYear[y]
		drops := make(map[int]int64)
		for rank := 1; rank < ranks; rank++ {
			v, ok := values[rank]
			next, okNext := values[rank+1]
			if ok && okNext {
				drops[rank] = v - next
			}
		}
		result = append(result, DropoffRow{Year: y, ValuesCents: values, DropsCents: drops})
	}
	return result, nil
}

// TierSummary 跨全部年份每个 (position, rank) 的描述统计（无样本的组省略）
func (s *AnalyticsService) TierSummary(ctx context.Context, maxRank int) ([]TierStat, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	samples := groupSamples(tiers, maxRank)
	result := make([]TierStat, 0, len(samples))
	forEachTierGroup(maxRank, func(pos model.Position, rank int) {
		values := samples[tierKey{pos, rank}]
		if len(values) == 0 {
			return
		}
		minV, maxV := values[0], values[0]
		for _, v := range values {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		result = append(result, TierStat{
			Position:     string(pos),
			PositionRank: rank,
			TierLabel:    fmt.Sprintf("%s%d", pos, rank),
			AvgCents:     meanOf(values),
			MinCents:     minV,
			MaxCents:     maxV,
			SampleSize:   len(values),
		})
	})
	return result, nil
}

// Volatility 每个 (position, rank) 的均值与变异系数。
// 两遍计算：先求均值，再对预先算好的均值求方差，避免相关子查询式的重复扫描
func (s *AnalyticsService) Volatility(ctx context.Context, maxRank int) ([]VolatilityRow, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	samples := groupSamples(tiers, maxRank)
	result := make([]VolatilityRow, 0, len(samples))
	forEachTierGroup(maxRank, func(pos model.Position, rank int) {
		values := samples[tierKey{pos, rank}]
		if len(values) == 0 {
			return
		}
		mean := meanOf(values)
		cv := 0.0
		if mean > 0 {
			cv = populationStdDev(values, mean) / mean * 100
		}
		result = append(result, VolatilityRow{
			Position:     string(pos),
			PositionRank: rank,
			TierLabel:    fmt.Sprintf("%s%d", pos, rank),
			MeanCents:    mean,
			CVPct:        cv,
		})
	})
	return result, nil
}

// RecentVsHistorical 以 cutoffYear 为界（历史: year < cutoff；近期: year >= cutoff）
// 对比每个 (position, rank) 两段均值。任一侧零样本则整组跳过，避免对未定义的历史均值做除法
func (s *AnalyticsService) RecentVsHistorical(ctx context.Context, cutoffYear, maxRank int) ([]EraComparison, error) {
	tiers, err := s.tierService.ComputeTiers(ctx)
	if err != nil {
		return nil, err
	}

	historical := make(map[tierKey][]int64)
	recent := make(map[tierKey][]int64)
	for _, t := range tiers {
		if t.PositionRank > maxRank {
			continue
		}
		key := tierKey{t.Position, t.PositionRank}
		if t.Year < cutoffYear {
			historical[key] = append(historical[key], t.ValueCents)
		} else {
			recent[key] = append(recent[key], t.ValueCents)
		}
	}

	result := make([]EraComparison, 0)
	forEachTierGroup(maxRank, func(pos model.Position, rank int) {
		key := tierKey{pos, rank}
		histValues, recentValues := historical[key], recent[key]
		if len(histValues) == 0 || len(recentValues) == 0 {
			return
		}
		histAvg := meanOf(histValues)
		recentAvg := meanOf(recentValues)
		pct := 0.0
		if histAvg > 0 {
			pct = (recentAvg - histAvg) / histAvg * 100
		}
		result = append(result, EraComparison{
			Position:           string(pos),
			PositionRank:       rank,
			TierLabel:          fmt.Sprintf("%s%d", pos, rank),
			HistoricalAvgCents: histAvg,
			RecentAvgCents:     recentAvg,
			PctChange:          pct,
		})
	})
	return result, nil
}

// tierKey (position, rank) 分组键
type tierKey struct {
	position model.Position
	rank     int
}

// groupSamples 把层级行按 (position, rank) 聚成样本集
func groupSamples(tiers []model.PositionTier, maxRank int) map[tierKey][]int64 {
	samples := make(map[tierKey][]int64)
	for _, t := range tiers {
		if t.PositionRank > maxRank {
			continue
		}
		key := tierKey{t.Position, t.PositionRank}
		samples[key] = append(samples[key], t.ValueCents)
	}
	return samples
}

// forEachTierGroup 按固定顺序（位置展示序 -> rank升序）遍历全部分组，保证输出顺序确定
func forEachTierGroup(maxRank int, fn func(pos model.Position, rank int)) {
	for _, pos := range model.AllPositions {
		for rank := 1; rank <= maxRank; rank++ {
			fn(pos, rank)
		}
	}
}

// meanOf 整数美分样本均值
func meanOf(values []int64) float64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// populationStdDev 总体标准差（方差对预先算好的均值第二遍计算）
func populationStdDev(values []int64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := float64(v) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
