package main

import (
	"context"
	"fmt"
	"log"

	"AuctionTiers/internal/api"
	"AuctionTiers/internal/config"
	"AuctionTiers/internal/model"
	"AuctionTiers/internal/repository"
	"AuctionTiers/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	logrusLogger.Info("配置文件加载成功")

	// 3. 初始化GORM日志器
	gormLogger := logger.Default.LogMode(logger.Warn)

	// 4. 初始化 SQLite 连接（文件不存在时由驱动自动创建）
	db, err := gorm.Open(sqlite.Open(cfg.SQLite.Path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		logrusLogger.Fatalf("打开SQLite失败: %v", err)
	}
	logrusLogger.Infof("SQLite连接成功: %s", cfg.SQLite.Path)

	// 5. 库表不存在则自动创建
	if err := db.AutoMigrate(
		&model.AuctionRecord{},
		&model.LoadRun{},
	); err != nil {
		logrusLogger.Fatalf("数据库表结构迁移失败: %v", err)
	}
	logrusLogger.Info("数据库表结构检查完成（不存在则已创建）")

	// 6. 幂等初始化：库为空或源数据指纹变化时才加载，否则no-op。
	// CSV缺失只告警不退出，服务仍可对已入库数据提供查询
	auctionRepo := repository.NewAuctionRepository(db)
	loadRunRepo := repository.NewLoadRunRepository(db)
	loadService := service.NewLoadService(auctionRepo, loadRunRepo, logrusLogger, cfg)
	if loaded, report, err := loadService.EnsureLoaded(context.Background()); err != nil {
		logrusLogger.WithError(err).Warn("启动加载失败，继续以当前库内数据提供服务")
	} else if loaded {
		logrusLogger.Infof("启动加载完成: loaded=%d rejected=%d", report.RecordsLoaded, report.RecordsRejected)
	}

	// 7. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 8. 注册API路由
	loadHandler := api.NewLoadHandler(db, logrusLogger, cfg)
	r.POST("/sync/load", loadHandler.ReloadHandler)
	r.GET("/api/loads/latest", loadHandler.LatestLoadHandler)

	// 分层查询接口（给前端表格用）
	tierHandler := api.NewTierHandler(db, logrusLogger, cfg)
	r.GET("/api/tiers", tierHandler.ListTiers)

	// 聚合分析接口（给前端图表用）
	analyticsHandler := api.NewAnalyticsHandler(db, logrusLogger, cfg)
	r.GET("/api/analytics/trend", analyticsHandler.TierTrendHandler)
	r.GET("/api/analytics/cross-position", analyticsHandler.CrossPositionHandler)
	r.GET("/api/analytics/dropoff", analyticsHandler.DropoffHandler)
	r.GET("/api/analytics/summary", analyticsHandler.TierSummaryHandler)
	r.GET("/api/analytics/volatility", analyticsHandler.VolatilityHandler)
	r.GET("/api/analytics/recent-vs-historical", analyticsHandler.RecentVsHistoricalHandler)

	// 9. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}
