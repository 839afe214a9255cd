package service_test

import (
	"context"

	"AuctionTiers/internal/model"
	"AuctionTiers/internal/repository"
)

// fakeAuctionRepo 内存实现，主键自增语义与真实存储一致
type fakeAuctionRepo struct {
	records []*model.AuctionRecord
	nextID  uint64
}

var _ repository.AuctionRepository = (*fakeAuctionRepo)(nil)

func (f *fakeAuctionRepo) ReplaceAll(_ context.Context, records []*model.AuctionRecord) error {
	f.records = nil
	for _, rec := range records {
		f.nextID++
		stored := *rec
		stored.ID = f.nextID
		f.records = append(f.records, &stored)
	}
	return nil
}

func (f *fakeAuctionRepo) ListAll(_ context.Context) ([]*model.AuctionRecord, error) {
	out := make([]*model.AuctionRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeAuctionRepo) ListByFilter(_ context.Context, filter repository.AuctionFilter) ([]*model.AuctionRecord, error) {
	var out []*model.AuctionRecord
	for _, rec := range f.records {
		if filter.Position != "" && rec.Position != filter.Position {
			continue
		}
		if filter.Year > 0 && rec.Year != filter.Year {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeAuctionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

// seed 按插入序直接写入记录（测试分层引擎用）
func (f *fakeAuctionRepo) seed(records ...model.AuctionRecord) {
	for _, rec := range records {
		f.nextID++
		stored := rec
		stored.ID = f.nextID
		f.records = append(f.records, &stored)
	}
}

// fakeLoadRunRepo 内存加载历史
type fakeLoadRunRepo struct {
	runs []*model.LoadRun
}

var _ repository.LoadRunRepository = (*fakeLoadRunRepo)(nil)

func (f *fakeLoadRunRepo) Create(_ context.Context, run *model.LoadRun) error {
	stored := *run
	stored.ID = uint64(len(f.runs) + 1)
	f.runs = append(f.runs, &stored)
	return nil
}

func (f *fakeLoadRunRepo) Latest(_ context.Context) (*model.LoadRun, error) {
	if len(f.runs) == 0 {
		return nil, nil
	}
	return f.runs[len(f.runs)-1], nil
}
