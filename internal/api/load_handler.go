package api

import (
	"net/http"

	"AuctionTiers/internal/config"
	"AuctionTiers/internal/repository"
	"AuctionTiers/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LoadHandler 数据加载接口
type LoadHandler struct {
	loadService *service.LoadService
	loadRunRepo repository.LoadRunRepository
	logger      *logrus.Logger
}

// NewLoadHandler 创建 LoadHandler
func NewLoadHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *LoadHandler {
	auctionRepo := repository.NewAuctionRepository(db)
	loadRunRepo := repository.NewLoadRunRepository(db)
	return &LoadHandler{
		loadService: service.NewLoadService(auctionRepo, loadRunRepo, logger, cfg),
		loadRunRepo: loadRunRepo,
		logger:      logger,
	}
}

// ReloadHandler 从配置的CSV整表重载（幂等，可重复调用）
// @Summary 重新加载拍卖数据
// @Success 200 {object} model.LoadReport
// @Failure 500 {object} map[string]string
// @Router /sync/load [post]
func (h *LoadHandler) ReloadHandler(c *gin.Context) {
	report, err := h.loadService.LoadFile(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ReloadHandler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// LatestLoadHandler 最近一次加载状态（前端展示加载摘要用）
// GET /api/loads/latest
func (h *LoadHandler) LatestLoadHandler(c *gin.Context) {
	run, err := h.loadRunRepo.Latest(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("LatestLoadHandler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no load has been performed yet"})
		return
	}
	c.JSON(http.StatusOK, run)
}
