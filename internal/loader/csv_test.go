package loader_test

import (
	"strings"
	"testing"

	"AuctionTiers/internal/loader"
	"AuctionTiers/internal/model"

	. "github.com/smartystreets/goconvey/convey"
)

var testOptions = loader.Options{
	Columns: loader.ColumnMapping{
		Player: "Player and Position",
		Value:  "Auction Value",
		Year:   "Year",
	},
	MinYear: 2008,
	MaxYear: 2030,
}

func TestParseCSV(t *testing.T) {
	Convey("Given a well-formed CSV with league position labels", t, func() {
		csvData := "Player and Position,Auction Value,Year\n" +
			"\"Adams, Davante NYJ WR\",\"$220 \",2023\n" +
			"\"49ers, San Francisco SFO Def\",\"$3 \",2023\n" +
			"\"Tucker, Justin BAL PK\",\"$1 \",2023\n"

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)
			So(err, ShouldBeNil)

			Convey("Then every row loads with a normalized position", func() {
				So(len(result.Records), ShouldEqual, 3)
				So(result.Errors, ShouldBeEmpty)
				So(result.Records[0].Position, ShouldEqual, model.PositionWR)
				So(result.Records[1].Position, ShouldEqual, model.PositionDEF)
				So(result.Records[2].Position, ShouldEqual, model.PositionK)
			})

			Convey("Then dollar values convert exactly to cents", func() {
				So(result.Records[0].ValueCents, ShouldEqual, 22000)
				So(result.Records[1].ValueCents, ShouldEqual, 300)
				So(result.Records[2].ValueCents, ShouldEqual, 100)
			})
		})
	})

	Convey("Given a CSV with a BOM and reordered columns", t, func() {
		csvData := "\uFEFFYear,Player and Position,Auction Value\n" +
			"2022,\"Hill, Tyreek MIA WR\",\"$185\"\n"

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)

			Convey("Then columns resolve by name, not by index", func() {
				So(err, ShouldBeNil)
				So(len(result.Records), ShouldEqual, 1)
				So(result.Records[0].Year, ShouldEqual, 2022)
				So(result.Records[0].ValueCents, ShouldEqual, 18500)
			})
		})
	})

	Convey("Given rows with assorted defects", t, func() {
		csvData := "Player and Position,Auction Value,Year\n" +
			"\"Smith, John DAL Flex\",\"$10\",2023\n" + // 未识别位置
			"\"Jones, Mac NEP QB\",\"abc\",2023\n" + // 非数字价格
			"\"Kamara, Alvin NOS RB\",\"-$5\",2023\n" + // 负值
			"\"Kelce, Travis KCC TE\",\"$40\",not-a-year\n" + // 非法年份
			"\"Hunt, Kareem CLE RB\",\"$12\",1999\n" + // 年份越界
			"\"Chase, Ja'Marr CIN WR\",\"$150\",2023\n" // 有效行

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)
			So(err, ShouldBeNil)

			Convey("Then each bad row is rejected with its own reason, and good rows still load", func() {
				So(len(result.Records), ShouldEqual, 1)
				So(result.Records[0].ValueCents, ShouldEqual, 15000)
				So(len(result.Errors), ShouldEqual, 5)
				So(result.Errors[0], ShouldResemble, model.RowError{Row: 1, Reason: loader.ReasonUnrecognizedPosition})
				So(result.Errors[1], ShouldResemble, model.RowError{Row: 2, Reason: loader.ReasonInvalidValue})
				So(result.Errors[2], ShouldResemble, model.RowError{Row: 3, Reason: loader.ReasonNegativeValue})
				So(result.Errors[3], ShouldResemble, model.RowError{Row: 4, Reason: loader.ReasonInvalidYear})
				So(result.Errors[4], ShouldResemble, model.RowError{Row: 5, Reason: loader.ReasonYearOutOfRange})
			})
		})
	})

	Convey("Given a row missing the value column", t, func() {
		csvData := "Player and Position,Auction Value,Year\n" +
			"\"Adams, Davante NYJ WR\"\n"

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)

			Convey("Then the row is rejected, not fatal", func() {
				So(err, ShouldBeNil)
				So(result.Records, ShouldBeEmpty)
				So(len(result.Errors), ShouldEqual, 1)
				So(result.Errors[0].Reason, ShouldEqual, loader.ReasonMissingColumn)
			})
		})
	})

	Convey("Given a header missing a required column", t, func() {
		csvData := "Player,Value\nfoo,bar\n"

		Convey("When parsing", func() {
			_, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)

			Convey("Then parsing fails for the whole source", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a zero-dollar row", t, func() {
		csvData := "Player and Position,Auction Value,Year\n" +
			"\"Somebody, Cheap FA TE\",\"$0\",2023\n"

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)

			Convey("Then zero is a valid non-negative value", func() {
				So(err, ShouldBeNil)
				So(len(result.Records), ShouldEqual, 1)
				So(result.Records[0].ValueCents, ShouldEqual, 0)
			})
		})
	})

	Convey("Given values with commas and sub-dollar precision", t, func() {
		csvData := "Player and Position,Auction Value,Year\n" +
			"\"Star, Mega LAC RB\",\"$1,050.50\",2023\n"

		Convey("When parsing", func() {
			result, err := loader.ParseCSV(strings.NewReader(csvData), testOptions)

			Convey("Then the conversion is exact with no float drift", func() {
				So(err, ShouldBeNil)
				So(result.Records[0].ValueCents, ShouldEqual, 105050)
			})
		})
	})
}
