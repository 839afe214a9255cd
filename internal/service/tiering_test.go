package service_test

import (
	"context"
	"errors"
	"testing"

	"AuctionTiers/internal/model"
	"AuctionTiers/internal/service"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func newTierService(repo *fakeAuctionRepo) *service.TierService {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return service.NewTierService(repo, logger)
}

func TestComputeTiers(t *testing.T) {
	Convey("Given auction records across two positions and years", t, func() {
		repo := &fakeAuctionRepo{}
		repo.seed(
			model.AuctionRecord{Position: "WR", ValueCents: 18000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: 22000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: 15000, Year: 2023},
			model.AuctionRecord{Position: "RB", ValueCents: 30000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: 20000, Year: 2022},
		)
		svc := newTierService(repo)

		Convey("When computing tiers", func() {
			tiers, err := svc.ComputeTiers(context.Background())
			So(err, ShouldBeNil)

			Convey("Then every (year, position) group gets dense ranks 1..N", func() {
				wr2023 := filterTiers(tiers, "WR", 2023)
				So(len(wr2023), ShouldEqual, 3)
				for i, tier := range wr2023 {
					So(tier.PositionRank, ShouldEqual, i+1)
				}
			})

			Convey("Then values are sorted descending within a group", func() {
				wr2023 := filterTiers(tiers, "WR", 2023)
				So(wr2023[0].ValueCents, ShouldEqual, 22000)
				So(wr2023[1].ValueCents, ShouldEqual, 18000)
				So(wr2023[2].ValueCents, ShouldEqual, 15000)
			})

			Convey("Then tier labels concatenate position and rank", func() {
				wr2023 := filterTiers(tiers, "WR", 2023)
				So(wr2023[0].TierLabel, ShouldEqual, "WR1")
				rb2023 := filterTiers(tiers, "RB", 2023)
				So(rb2023[0].TierLabel, ShouldEqual, "RB1")
			})

			Convey("Then groups from other years are independent", func() {
				wr2022 := filterTiers(tiers, "WR", 2022)
				So(len(wr2022), ShouldEqual, 1)
				So(wr2022[0].PositionRank, ShouldEqual, 1)
			})
		})
	})

	Convey("Given records with tied auction values", t, func() {
		repo := &fakeAuctionRepo{}
		repo.seed(
			model.AuctionRecord{Position: "WR", ValueCents: 15000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: 15000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: 15000, Year: 2023},
		)
		svc := newTierService(repo)

		Convey("When computing tiers twice on unchanged data", func() {
			first, err1 := svc.ComputeTiers(context.Background())
			second, err2 := svc.ComputeTiers(context.Background())
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then the outputs are identical (deterministic tie-break)", func() {
				So(second, ShouldResemble, first)
			})

			Convey("Then ties rank in insertion order with dense ranks", func() {
				So(len(first), ShouldEqual, 3)
				So(first[0].PositionRank, ShouldEqual, 1)
				So(first[1].PositionRank, ShouldEqual, 2)
				So(first[2].PositionRank, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an empty store", t, func() {
		svc := newTierService(&fakeAuctionRepo{})

		Convey("When computing tiers", func() {
			tiers, err := svc.ComputeTiers(context.Background())

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(tiers, ShouldBeEmpty)
			})
		})
	})

	Convey("Given storage containing a negative value", t, func() {
		repo := &fakeAuctionRepo{}
		repo.seed(
			model.AuctionRecord{Position: "WR", ValueCents: 22000, Year: 2023},
			model.AuctionRecord{Position: "WR", ValueCents: -100, Year: 2023},
		)
		svc := newTierService(repo)

		Convey("When computing tiers", func() {
			tiers, err := svc.ComputeTiers(context.Background())

			Convey("Then it fails fast with an integrity error naming the record", func() {
				So(tiers, ShouldBeNil)
				var integrity *model.IntegrityError
				So(err, ShouldNotBeNil)
				So(errors.As(err, &integrity), ShouldBeTrue)
				So(integrity.RecordIDs, ShouldContain, uint64(2))
			})
		})
	})

	Convey("Given storage containing an unrecognized position", t, func() {
		repo := &fakeAuctionRepo{}
		repo.seed(
			model.AuctionRecord{Position: "FLEX", ValueCents: 5000, Year: 2023},
		)
		svc := newTierService(repo)

		Convey("When computing tiers", func() {
			tiers, err := svc.ComputeTiers(context.Background())

			Convey("Then it fails fast with an integrity error", func() {
				So(tiers, ShouldBeNil)
				var integrity *model.IntegrityError
				So(errors.As(err, &integrity), ShouldBeTrue)
				So(integrity.RecordIDs, ShouldResemble, []uint64{1})
			})
		})
	})
}

// filterTiers 取出某 (position, year) 组的层级行（保持原输出序）
func filterTiers(tiers []model.PositionTier, position string, year int) []model.PositionTier {
	var out []model.PositionTier
	for _, t := range tiers {
		if string(t.Position) == position && t.Year == year {
			out = append(out, t)
		}
	}
	return out
}
