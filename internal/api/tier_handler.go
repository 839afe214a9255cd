package api

import (
	"errors"
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

// TierHandler 分层结果查询接口
type TierHandler struct {
	tierService *service.TierService
	logger      *logrus.Logger
	data        config.Data
}

// NewTierHandler 创建 TierHandler
func NewTierHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *TierHandler {
	repo := repository.NewAuctionRepository(db)
	return &TierHandler{
		tierService: service.NewTierService(repo, logger),
		logger:      logger,
		data:        cfg.Data,
	}
}

// tierRow 展示层行：金额换算为美元（两位小数）
type tierRow struct {
	Position     string  `json:"position"`
	Year         int     `json:"year"`
	PositionRank int     `json:"position_rank"`
	ValueDollars float64 `json:"value_dollars"`
	TierLabel    string  `json:"tier_label"`
}

// ListTiers 当前分层投影
// GET /api/tiers?position=WR&max_rank=5&year=2023
func (h *TierHandler) ListTiers(c *gin.Context) {
	maxRank, ok := parseRankParam(c, h.data)
	if !ok {
		return
	}
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))

	var position model.Position
	if raw := c.Query("position"); raw != "" {
		p, valid := model.ParsePosition(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized position"})
			return
		}
		position = p
	}

	tiers, err := h.tierService.ComputeTiers(c.Request.Context())
	if err != nil {
		respondComputeError(c, h.logger, "ListTiers", err)
		return
	}

	rows := make([]tierRow, 0, len(tiers))
	for _, t := range tiers {
		if position != "" && t.Position != position {
			continue
		}
		if t.PositionRank > maxRank {
			continue
		}
		if year > 0 && t.Year != year {
			continue
		}
		rows = append(rows, tierRow{
			Position:     string(t.Position),
			Year:         t.Year,
			PositionRank: t.PositionRank,
			ValueDollars: centsToDollars(float64(t.ValueCents)),
			TierLabel:    t.TierLabel,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tiers": rows, "total": len(rows)})
}

// centsToDollars 美分 -> 美元，展示层两位小数（仅在此处取整，聚合过程从不取整）
func centsToDollars(cents float64) float64 {
	return math.Round(cents) / 100
}

// parseRankParam 解析并校验 max_rank 参数（默认与上限来自配置）
func parseRankParam(c *gin.Context, data config.Data) (int, bool) {
	maxRank, err := strconv.Atoi(c.DefaultQuery("max_rank", strconv.Itoa(data.DefaultRank)))
	if err != nil || maxRank < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_rank must be a positive integer"})
		return 0, false
	}
	if maxRank > data.MaxRankCap {
		maxRank = data.MaxRankCap
	}
	return maxRank, true
}

// respondComputeError 计算类错误统一出口：完整性错误与普通错误分开上报
func respondComputeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	var integrity *model.IntegrityError
	if errors.As(err, &integrity) {
		logger.WithError(err).Errorf("%s: 存储数据违反不变量", op)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "data integrity violation",
			"reason":     integrity.Reason,
			"record_ids": integrity.RecordIDs,
		})
		return
	}
	logger.WithError(err).Errorf("%s failed", op)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
