//go:build ignore

// init_data.go

package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	dataType := flag.String("type", "all", "初始化数据类型 (accounts, quiz, all)")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	if err := db.InitAllTables(); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}

	ctx := context.Background()
	switch *dataType {
	case "accounts":
		if _, err := initTestAccounts(ctx); err != nil {
			log.Fatalf("初始化测试账号失败: %v", err)
		}
	case "quiz", "all":
		ownerID, err := initTestAccounts(ctx)
		if err != nil {
			log.Fatalf("初始化测试账号失败: %v", err)
		}
		if err := initSampleQuizSet(ctx, ownerID); err != nil {
			log.Fatalf("初始化示例题库失败: %v", err)
		}
	default:
		log.Fatalf("未知的数据类型: %s", *dataType)
	}

	log.Println("🎉 数据初始化完成！")
}

// initTestAccounts 创建测试账号，返回第一个账号的ID
func initTestAccounts(ctx context.Context) (int64, error) {
	accounts := []struct {
		username string
		email    string
	}{
		{"testuser1", "test1@pixelstorm.com"},
		{"testuser2", "test2@pixelstorm.com"},
		{"testuser3", "test3@pixelstorm.com"},
	}

	var firstID int64
	for i, a := range accounts {
		var id int64
		err := db.DB.QueryRowContext(ctx, `
			INSERT INTO players (username, password, email, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			a.username, hashPassword("password123"), a.email,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("创建账号 %s 失败: %w", a.username, err)
		}
		if i == 0 {
			firstID = id
		}
		log.Printf("✓ 测试账号: %s (id=%d)", a.username, id)
	}
	return firstID, nil
}

// initSampleQuizSet 创建示例题库
func initSampleQuizSet(ctx context.Context, ownerID int64) error {
	set := &models.QuizSet{
		OwnerID: ownerID,
		Title:   "示例题库",
		Quizzes: []models.Quiz{
			{
				Question:     "Go语言中用于并发通信的类型是？",
				Options:      []string{"mutex", "channel", "slice", "map"},
				CorrectIndex: 1,
				Explanation:  "channel 用于 goroutine 之间传递数据",
			},
			{
				Question:     "HTTP 状态码 404 表示？",
				Options:      []string{"服务器错误", "未授权", "资源不存在", "请求成功"},
				CorrectIndex: 2,
			},
			{
				Question:     "以下哪个不是关系型数据库？",
				Options:      []string{"PostgreSQL", "MySQL", "SQLite", "Redis"},
				CorrectIndex: 3,
				Explanation:  "Redis 是键值存储",
			},
			{
				Question:     "二进制数 1010 等于十进制的？",
				Options:      []string{"8", "10", "12", "5"},
				CorrectIndex: 1,
			},
		},
	}

	if err := db.SaveQuizSet(ctx, set); err != nil {
		return err
	}
	log.Printf("✓ 示例题库: %s (%d 题)", set.ID, len(set.Quizzes))
	return nil
}

// hashPassword 与网关登录使用相同的哈希
func hashPassword(password string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(password)))
}
