package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server Server `mapstructure:"server"` // 服务器配置
	SQLite SQLite `mapstructure:"sqlite"` // 嵌入式数据库配置
	Source Source `mapstructure:"source"` // CSV数据源配置
	Data   Data   `mapstructure:"data"`   // 数据有效性与展示配置
}

// Server 服务器配置
type Server struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// SQLite 嵌入式数据库配置
type SQLite struct {
	Path string `mapstructure:"path"` // 数据库文件路径
}

// Source CSV数据源配置。列名必须显式映射，不按列位置取值
type Source struct {
	CSVPath      string `mapstructure:"csv_path"`      // CSV文件路径
	PlayerColumn string `mapstructure:"player_column"` // 球员+位置列名（位置为末尾空格分隔token）
	ValueColumn  string `mapstructure:"value_column"`  // 拍卖价格列名（美元）
	YearColumn   string `mapstructure:"year_column"`   // 年份列名
}

// Data 数据有效性与展示配置
type Data struct {
	MinYear     int `mapstructure:"min_year"`     // 有效年份下界（含）
	MaxYear     int `mapstructure:"max_year"`     // 有效年份上界（含）
	MaxRankCap  int `mapstructure:"max_rank_cap"` // 查询接口 max_rank 上限
	DefaultRank int `mapstructure:"default_rank"` // 查询接口 max_rank 默认值
}

// LoadConfig 加载配置文件（config/config.yaml），路径类敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 环境变量覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖部署相关配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("SOURCE_CSV_PATH"); v != "" {
		cfg.Source.CSVPath = v
	}
}

// validate 校验配置自身的合法性
func (c *Config) validate() error {
	if c.SQLite.Path == "" {
		return fmt.Errorf("配置缺失: sqlite.path 不能为空")
	}
	if c.Source.PlayerColumn == "" || c.Source.ValueColumn == "" || c.Source.YearColumn == "" {
		return fmt.Errorf("配置缺失: source 列名映射（player_column/value_column/year_column）必须显式给出")
	}
	if c.Data.MinYear <= 0 || c.Data.MaxYear < c.Data.MinYear {
		return fmt.Errorf("配置非法: 年份范围 [%d, %d] 无效", c.Data.MinYear, c.Data.MaxYear)
	}
	if c.Data.MaxRankCap <= 0 {
		c.Data.MaxRankCap = 15
	}
	if c.Data.DefaultRank <= 0 || c.Data.DefaultRank > c.Data.MaxRankCap {
		c.Data.DefaultRank = 5
	}
	return nil
}
