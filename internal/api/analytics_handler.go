package api

import (
	"math"
	"net/http"
	"strconv"

	"AuctionTiers/internal/config"
	"AuctionTiers/internal/model"
	"AuctionTiers/internal/repository"
	"AuctionTiers/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AnalyticsHandler 聚合查询接口：前端图表唯一的数据来源
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *logrus.Logger
	data      config.Data
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *AnalyticsHandler {
	repo := repository.NewAuctionRepository(db)
	tierService := service.NewTierService(repo, logger)
	return &AnalyticsHandler{
		analytics: service.NewAnalyticsService(tierService, logger),
		logger:    logger,
		data:      cfg.Data,
	}
}

// trendPoint / trendSeries 展示层结构（美元，两位小数）
type trendPoint struct {
	Year         int     `json:"year"`
	ValueDollars float64 `json:"value_dollars"`
}

type trendSeries struct {
	TierLabel    string       `json:"tier_label"`
	PositionRank int          `json:"position_rank"`
	Points       []trendPoint `json:"points"`
}

// TierTrendHandler 指定位置各层级的逐年价格趋势
// GET /api/analytics/trend?position=WR&max_rank=5
func (h *AnalyticsHandler) TierTrendHandler(c *gin.Context) {
	position, ok := parsePositionParam(c)
	if !ok {
		return
	}
	maxRank, ok := parseRankParam(c, h.data)
	if !ok {
		return
	}

	series, err := h.analytics.TierTrend(c.Request.Context(), position, maxRank)
	if err != nil {
		respondComputeError(c, h.logger, "TierTrendHandler", err)
		return
	}

	out := make([]trendSeries, 0, len(series))
	for _, s := range series {
		points := make([]trendPoint, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, trendPoint{Year: p.Year, ValueDollars: centsToDollars(float64(p.ValueCents))})
		}
		out = append(out, trendSeries{TierLabel: s.TierLabel, PositionRank: s.PositionRank, Points: points})
	}
	c.JSON(http.StatusOK, gin.H{"position": position, "series": out})
}

// CrossPositionHandler 逐年各位置 rank1 价格对比
// GET /api/analytics/cross-position?from_year=2015&to_year=2024
func (h *AnalyticsHandler) CrossPositionHandler(c *gin.Context) {
	fromYear, _ := strconv.Atoi(c.DefaultQuery("from_year", strconv.Itoa(h.data.MinYear)))
	toYear, _ := strconv.Atoi(c.DefaultQuery("to_year", strconv.Itoa(h.data.MaxYear)))
	if fromYear > toYear {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_year must not exceed to_year"})
		return
	}

	rows, err := h.analytics.CrossPositionTop(c.Request.Context(), fromYear, toYear)
	if err != nil {
		respondComputeError(c, h.logger, "CrossPositionHandler", err)
		return
	}

	type row struct {
		Year      int                `json:"year"`
		TopValues map[string]float64 `json:"top_values"`
	}
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		top := make(map[string]float64, len(r.TopValues))
		for pos, cents := range r.TopValues {
			top[pos] = centsToDollars(float64(cents))
		}
		out = append(out, row{Year: r.Year, TopValues: top})
	}
	c.JSON(http.StatusOK, gin.H{"rows": out})
}

// DropoffHandler 指定位置相邻名次的价格落差
// GET /api/analytics/dropoff?position=RB&ranks=10
func (h *AnalyticsHandler) DropoffHandler(c *gin.Context) {
	position, ok := parsePositionParam(c)
	if !ok {
		return
	}
	ranks, err := strconv.Atoi(c.DefaultQuery("ranks", strconv.Itoa(h.data.DefaultRank)))
	if err != nil || ranks < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ranks must be an integer >= 2"})
		return
	}
	if ranks > h.data.MaxRankCap {
		ranks = h.data.MaxRankCap
	}

	rows, err := h.analytics.Dropoff(c.Request.Context(), position, ranks)
	if err != nil {
		respondComputeError(c, h.logger, "DropoffHandler", err)
		return
	}

	type row struct {
		Year          int             `json:"year"`
		ValuesDollars map[int]float64 `json:"values_dollars"`
		DropsDollars  map[int]float64 `json:"drops_dollars"`
	}
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		values := make(map[int]float64, len(r.ValuesCents))
		for rank, cents := range r.ValuesCents {
			values[rank] = centsToDollars(float64(cents))
		}
		drops := make(map[int]float64, len(r.DropsCents))
		for rank, cents := range r.DropsCents {
			drops[rank] = centsToDollars(float64(cents))
		}
		out = append(out, row{Year: r.Year, ValuesDollars: values, DropsDollars: drops})
	}
	c.JSON(http.StatusOK, gin.H{"position": position, "rows": out})
}

// TierSummaryHandler 每个层级跨年份的描述统计
// GET /api/analytics/summary?max_rank=10
func (h *AnalyticsHandler) TierSummaryHandler(c *gin.Context) {
	maxRank, ok := parseRankParam(c, h.data)
	if !ok {
		return
	}

	stats, err := h.analytics.TierSummary(c.Request.Context(), maxRank)
	if err != nil {
		respondComputeError(c, h.logger, "TierSummaryHandler", err)
		return
	}

	type row struct {
		Position     string  `json:"position"`
		PositionRank int     `json:"position_rank"`
		TierLabel    string  `json:"tier_label"`
		AvgDollars   float64 `json:"avg_dollars"`
		MinDollars   float64 `json:"min_dollars"`
		MaxDollars   float64 `json:"max_dollars"`
		SampleSize   int     `json:"sample_size"`
	}
	out := make([]row, 0, len(stats))
	for _, s := range stats {
		out = append(out, row{
			Position:     s.Position,
			PositionRank: s.PositionRank,
			TierLabel:    s.TierLabel,
			AvgDollars:   centsToDollars(s.AvgCents),
			MinDollars:   centsToDollars(float64(s.MinCents)),
			MaxDollars:   centsToDollars(float64(s.MaxCents)),
			SampleSize:   s.SampleSize,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rows": out})
}

// VolatilityHandler 每个层级的均值与变异系数
// GET /api/analytics/volatility?max_rank=5
func (h *AnalyticsHandler) VolatilityHandler(c *gin.Context) {
	maxRank, ok := parseRankParam(c, h.data)
	if !ok {
		return
	}

	rows, err := h.analytics.Volatility(c.Request.Context(), maxRank)
	if err != nil {
		respondComputeError(c, h.logger, "VolatilityHandler", err)
		return
	}

	type row struct {
		Position     string  `json:"position"`
		PositionRank int     `json:"position_rank"`
		TierLabel    string  `json:"tier_label"`
		MeanDollars  float64 `json:"mean_dollars"`
		CVPct        float64 `json:"cv_pct"`
	}
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		out = append(out, row{
			Position:     r.Position,
			PositionRank: r.PositionRank,
			TierLabel:    r.TierLabel,
			MeanDollars:  centsToDollars(r.MeanCents),
			CVPct:        roundPct(r.CVPct),
		})
	}
	c.JSON(http.StatusOK, gin.H{"rows": out})
}

// RecentVsHistoricalHandler cutoff 前后两段均值对比
// GET /api/analytics/recent-vs-historical?cutoff_year=2020&max_rank=5
func (h *AnalyticsHandler) RecentVsHistoricalHandler(c *gin.Context) {
	maxRank, ok := parseRankParam(c, h.data)
	if !ok {
		return
	}
	cutoffYear, err := strconv.Atoi(c.Query("cutoff_year"))
	if err != nil || cutoffYear <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cutoff_year is required and must be a positive integer"})
		return
	}

	rows, err := h.analytics.RecentVsHistorical(c.Request.Context(), cutoffYear, maxRank)
	if err != nil {
		respondComputeError(c, h.logger, "RecentVsHistoricalHandler", err)
		return
	}

	type row struct {
		Position             string  `json:"position"`
		PositionRank         int     `json:"position_rank"`
		TierLabel            string  `json:"tier_label"`
		HistoricalAvgDollars float64 `json:"historical_avg_dollars"`
		RecentAvgDollars     float64 `json:"recent_avg_dollars"`
		PctChange            float64 `json:"pct_change"`
	}
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		out = append(out, row{
			Position:             r.Position,
			PositionRank:         r.PositionRank,
			TierLabel:            r.TierLabel,
			HistoricalAvgDollars: centsToDollars(r.HistoricalAvgCents),
			RecentAvgDollars:     centsToDollars(r.RecentAvgCents),
			PctChange:            roundPct(r.PctChange),
		})
	}
	c.JSON(http.StatusOK, gin.H{"cutoff_year": cutoffYear, "rows": out})
}

// parsePositionParam 解析必填的 position 参数
func parsePositionParam(c *gin.Context) (model.Position, bool) {
	raw := c.Query("position")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position is required"})
		return "", false
	}
	position, ok := model.ParsePosition(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized position"})
		return "", false
	}
	return position, true
}

// roundPct 百分比展示层两位小数
func roundPct(pct float64) float64 {
	return math.Round(pct*100) / 100
}
