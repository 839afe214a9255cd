package model

import "strings"

// Position 球员位置枚举（入库前必须归一化到该封闭集合）
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionDEF Position = "DEF"
	PositionK   Position = "K"
)

// AllPositions 固定展示顺序（跨位置对比接口按此顺序输出）
var AllPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionDEF, PositionK}

// positionAliases 各联盟源数据中出现过的位置写法 -> 标准枚举
var positionAliases = map[string]Position{
	"qb":   PositionQB,
	"rb":   PositionRB,
	"wr":   PositionWR,
	"te":   PositionTE,
	"def":  PositionDEF,
	"dst":  PositionDEF,
	"d/st": PositionDEF,
	"k":    PositionK,
	"pk":   PositionK,
}

// ParsePosition 将源数据位置写法归一化为标准枚举；无法识别返回 false
func ParsePosition(raw string) (Position, bool) {
	p, ok := positionAliases[strings.ToLower(strings.TrimSpace(raw))]
	return p, ok
}

// Valid 判断是否属于标准枚举（存储层完整性校验用）
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE, PositionDEF, PositionK:
		return true
	}
	return false
}
