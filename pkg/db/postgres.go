package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	_ "github.com/lib/pq"
)

// DB 账号、题库和战绩共用的连接池
var DB *sql.DB

// 战绩写入集中在对局结束时，连接池不需要很大
const (
	maxOpenConns    = 20
	connMaxIdleTime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Tables 业务表，按建表顺序
var Tables = []string{"players", "quiz_sets", "quiz_questions", "survivor_runs"}

// InitPostgres 按 database 配置打开连接池并确认可达
func InitPostgres() error {
	cfg := config.GlobalConfig.Database

	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("打开数据库 %s 失败: %w", cfg.DBName, err)
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("数据库 %s@%s:%d 不可达: %w", cfg.DBName, cfg.Host, cfg.Port, err)
	}

	DB = conn
	log.Printf("已连接题库数据库 %s@%s:%d", cfg.DBName, cfg.Host, cfg.Port)
	return nil
}

// TableCounts 统计各业务表的行数
func TableCounts(ctx context.Context) (map[string]int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("统计表 %s 失败: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Close 关闭连接池
func Close() {
	if DB == nil {
		return
	}
	if err := DB.Close(); err != nil {
		log.Printf("关闭数据库连接失败: %v", err)
	}
}
