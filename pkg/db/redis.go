package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jacl-coder/PixelStorm-Quiz/config"
)

var (
	// RedisClient 全局Redis客户端实例
	RedisClient *redis.Client
	// Ctx 全局上下文
	Ctx = context.Background()
)

// InitRedis 初始化Redis连接
func InitRedis() error {
	redisConfig := config.GlobalConfig.Redis

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     redisConfig.GetRedisAddr(),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Println("成功连接到Redis服务器")
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
			return
		}
		log.Println("Redis连接已关闭")
	}
}

// RoomDigestChannel 房间摘要频道名
func RoomDigestChannel(roomID string) string {
	return "room:" + roomID + ":digest"
}

// PublishDigest 向房间频道发布一条玩家摘要
func PublishDigest(ctx context.Context, roomID string, data []byte) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis未初始化")
	}
	if err := RedisClient.Publish(ctx, RoomDigestChannel(roomID), data).Err(); err != nil {
		return fmt.Errorf("发布房间 %s 摘要失败: %w", roomID, err)
	}
	return nil
}

// SubscribeDigests 订阅房间频道，调用方负责关闭返回的 PubSub
func SubscribeDigests(ctx context.Context, roomID string) (*redis.PubSub, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis未初始化")
	}
	ps := RedisClient.Subscribe(ctx, RoomDigestChannel(roomID))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("订阅房间 %s 失败: %w", roomID, err)
	}
	return ps, nil
}
