package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"AuctionTiers/internal/config"
	"AuctionTiers/internal/loader"
	"AuctionTiers/internal/model"
	"AuctionTiers/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoadService 加载服务：CSV -> auction_records 的整表替换，外加 load_runs 历史记录
type LoadService struct {
	auctionRepo repository.AuctionRepository
	loadRunRepo repository.LoadRunRepository
	logger      *logrus.Logger
	source      config.Source
	data        config.Data
}

// NewLoadService 创建 LoadService 实例
func NewLoadService(auctionRepo repository.AuctionRepository, loadRunRepo repository.LoadRunRepository, logger *logrus.Logger, cfg *config.Config) *LoadService {
	return &LoadService{
		auctionRepo: auctionRepo,
		loadRunRepo: loadRunRepo,
		logger:      logger,
		source:      cfg.Source,
		data:        cfg.Data,
	}
}

// Load 从 reader 加载数据源并整表替换 auction_records。
// 单行失败只计入报告，加载继续；同一数据源重复加载结果一致（幂等）。
func (s *LoadService) Load(ctx context.Context, sourceName string, r io.Reader) (*model.LoadReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取数据源失败: %w", err)
	}
	return s.loadBytes(ctx, sourceName, raw)
}

// LoadFile 从配置的CSV文件加载
func (s *LoadService) LoadFile(ctx context.Context) (*model.LoadReport, error) {
	raw, err := os.ReadFile(s.source.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}
	return s.loadBytes(ctx, s.source.CSVPath, raw)
}

// EnsureLoaded 幂等初始化：仅当库为空、或最近一次成功加载的指纹与当前源不一致时才执行加载，
// 否则直接no-op。返回值第一项表示本次是否实际执行了加载。
func (s *LoadService) EnsureLoaded(ctx context.Context) (bool, *model.LoadReport, error) {
	raw, err := os.ReadFile(s.source.CSVPath)
	if err != nil {
		return false, nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}
	fingerprint := fingerprintOf(raw)

	count, err := s.auctionRepo.Count(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("检查库状态失败: %w", err)
	}
	if count > 0 {
		last, err := s.loadRunRepo.Latest(ctx)
		if err != nil {
			return false, nil, fmt.Errorf("查询最近加载记录失败: %w", err)
		}
		if last != nil && last.Fingerprint == fingerprint {
			s.logger.WithField("fingerprint", fingerprint).Info("数据源未变化，跳过加载")
			return false, nil, nil
		}
	}

	report, err := s.loadBytes(ctx, s.source.CSVPath, raw)
	if err != nil {
		return false, nil, err
	}
	return true, report, nil
}

// loadBytes 解析 -> 整表替换 -> 记录加载历史
func (s *LoadService) loadBytes(ctx context.Context, sourceName string, raw []byte) (*model.LoadReport, error) {
	parsed, err := loader.ParseCSV(bytes.NewReader(raw), loader.Options{
		Columns: loader.ColumnMapping{
			Player: s.source.PlayerColumn,
			Value:  s.source.ValueColumn,
			Year:   s.source.YearColumn,
		},
		MinYear: s.data.MinYear,
		MaxYear: s.data.MaxYear,
	})
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败: %w", err)
	}

	records := make([]*model.AuctionRecord, 0, len(parsed.Records))
	for _, rec := range parsed.Records {
		records = append(records, &model.AuctionRecord{
			Position:   string(rec.Position),
			ValueCents: rec.ValueCents,
			Year:       rec.Year,
		})
	}
	if err := s.auctionRepo.ReplaceAll(ctx, records); err != nil {
		return nil, fmt.Errorf("整表替换失败: %w", err)
	}

	rowErrs := parsed.Errors
	if rowErrs == nil {
		rowErrs = []model.RowError{}
	}
	report := &model.LoadReport{
		RunUUID:         uuid.NewString(),
		SourceName:      sourceName,
		Fingerprint:     fingerprintOf(raw),
		RecordsLoaded:   len(records),
		RecordsRejected: len(rowErrs),
		Errors:          rowErrs,
	}

	rowErrors, err := json.Marshal(report.Errors)
	if err != nil {
		return nil, fmt.Errorf("序列化行错误明细失败: %w", err)
	}
	run := &model.LoadRun{
		RunUUID:         report.RunUUID,
		SourceName:      report.SourceName,
		Fingerprint:     report.Fingerprint,
		RecordsLoaded:   report.RecordsLoaded,
		RecordsRejected: report.RecordsRejected,
		RowErrors:       rowErrors,
	}
	if err := s.loadRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("记录加载历史失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source":   report.SourceName,
		"loaded":   report.RecordsLoaded,
		"rejected": report.RecordsRejected,
	}).Info("数据加载完成")
	return report, nil
}

// fingerprintOf 源数据指纹：原始字节的sha256十六进制
func fingerprintOf(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
