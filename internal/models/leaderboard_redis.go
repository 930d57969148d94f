package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
	db     *sql.DB
}

// NewRedisLeaderboard 创建Redis排行榜管理器，sqlDB可为nil（不回源数据库）
func NewRedisLeaderboard(client *redis.Client, sqlDB *sql.DB) *RedisLeaderboard {
	return &RedisLeaderboard{
		client: client,
		db:     sqlDB,
	}
}

// 排行榜Redis键名
const (
	LeaderboardScoreKey    = "leaderboard:score"
	LeaderboardSurvivalKey = "leaderboard:survival"
	LeaderboardKillsKey    = "leaderboard:kills"

	// 玩家详细信息键前缀
	PlayerInfoPrefix = "player:info:"

	// 排行榜缓存时间
	LeaderboardCacheTTL = 5 * time.Minute
)

const leaderboardQuery = `
	SELECT player_id, username, best_score, best_survival, total_kills, accuracy
	FROM leaderboard`

// RecordRun 一局结束后更新各榜单，只在成绩更好时覆盖最高分和最长生存
func (rl *RedisLeaderboard) RecordRun(ctx context.Context, playerID int64, username string, run RunSummary) error {
	member := strconv.FormatInt(playerID, 10)

	pipe := rl.client.TxPipeline()
	pipe.ZAddArgs(ctx, LeaderboardScoreKey, redis.ZAddArgs{GT: true, Members: []redis.Z{{Score: float64(run.Score), Member: member}}})
	pipe.ZAddArgs(ctx, LeaderboardSurvivalKey, redis.ZAddArgs{GT: true, Members: []redis.Z{{Score: run.SurvivalTime, Member: member}}})
	pipe.ZIncrBy(ctx, LeaderboardKillsKey, float64(run.Kills), member)
	pipe.Del(ctx, PlayerInfoPrefix+member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新排行榜失败: %w", err)
	}

	if username != "" {
		if entry, err := rl.getPlayerInfoFromDB(ctx, playerID); err == nil {
			_ = rl.UpdatePlayerInfo(ctx, entry)
		} else {
			_ = rl.UpdatePlayerInfo(ctx, &LeaderboardEntry{PlayerID: playerID, Username: username})
		}
	}
	return nil
}

// UpdatePlayerScore 直接设置玩家在某个榜单的分数
func (rl *RedisLeaderboard) UpdatePlayerScore(ctx context.Context, playerID int64, scoreType LeaderboardType, score float64) error {
	return rl.client.ZAdd(ctx, rl.getLeaderboardKey(scoreType), &redis.Z{
		Score:  score,
		Member: strconv.FormatInt(playerID, 10),
	}).Err()
}

// UpdatePlayerInfo 更新玩家信息
func (rl *RedisLeaderboard) UpdatePlayerInfo(ctx context.Context, player *LeaderboardEntry) error {
	key := fmt.Sprintf("%s%d", PlayerInfoPrefix, player.PlayerID)

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	return rl.client.Set(ctx, key, data, LeaderboardCacheTTL).Err()
}

// GetLeaderboard 获取排行榜
func (rl *RedisLeaderboard) GetLeaderboard(ctx context.Context, scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	key := rl.getLeaderboardKey(scoreType)

	// 按分数降序
	members, err := rl.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		id, ok := member.Member.(string)
		if !ok {
			continue
		}
		playerID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}

		playerInfo, err := rl.getPlayerInfo(ctx, playerID)
		if err != nil {
			// Redis中没有时回源数据库
			playerInfo, err = rl.getPlayerInfoFromDB(ctx, playerID)
			if err != nil {
				playerInfo = &LeaderboardEntry{PlayerID: playerID}
			} else {
				_ = rl.UpdatePlayerInfo(ctx, playerInfo)
			}
		}

		playerInfo.Score = member.Score
		playerInfo.Rank = i + 1
		entries = append(entries, *playerInfo)
	}

	return entries, nil
}

// GetPlayerRank 获取玩家排名，不在榜上时返回-1
func (rl *RedisLeaderboard) GetPlayerRank(ctx context.Context, playerID int64, scoreType LeaderboardType) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, rl.getLeaderboardKey(scoreType), strconv.FormatInt(playerID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil
		}
		return -1, err
	}

	// Redis排名从0开始
	return int(rank) + 1, nil
}

// RefreshLeaderboard 从数据库重新加载排行榜
func (rl *RedisLeaderboard) RefreshLeaderboard(ctx context.Context) error {
	if rl.db == nil {
		return fmt.Errorf("未配置数据库")
	}

	rows, err := rl.db.QueryContext(ctx, leaderboardQuery+` LIMIT 1000`)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := rl.client.Del(ctx, LeaderboardScoreKey, LeaderboardSurvivalKey, LeaderboardKillsKey).Err(); err != nil {
		return err
	}

	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Username, &entry.BestScore,
			&entry.BestSurvival, &entry.TotalKills, &entry.Accuracy); err != nil {
			continue
		}

		rl.UpdatePlayerScore(ctx, entry.PlayerID, LeaderboardScore, float64(entry.BestScore))
		rl.UpdatePlayerScore(ctx, entry.PlayerID, LeaderboardSurvival, entry.BestSurvival)
		rl.UpdatePlayerScore(ctx, entry.PlayerID, LeaderboardKills, float64(entry.TotalKills))
		rl.UpdatePlayerInfo(ctx, &entry)
	}

	return rows.Err()
}

// getLeaderboardKey 获取排行榜键名
func (rl *RedisLeaderboard) getLeaderboardKey(scoreType LeaderboardType) string {
	switch scoreType {
	case LeaderboardSurvival:
		return LeaderboardSurvivalKey
	case LeaderboardKills:
		return LeaderboardKillsKey
	default:
		return LeaderboardScoreKey
	}
}

// getPlayerInfo 从Redis获取玩家信息
func (rl *RedisLeaderboard) getPlayerInfo(ctx context.Context, playerID int64) (*LeaderboardEntry, error) {
	data, err := rl.client.Get(ctx, fmt.Sprintf("%s%d", PlayerInfoPrefix, playerID)).Bytes()
	if err != nil {
		return nil, err
	}

	var entry LeaderboardEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// getPlayerInfoFromDB 从数据库获取玩家信息
func (rl *RedisLeaderboard) getPlayerInfoFromDB(ctx context.Context, playerID int64) (*LeaderboardEntry, error) {
	if rl.db == nil {
		return nil, fmt.Errorf("未配置数据库")
	}

	var entry LeaderboardEntry
	err := rl.db.QueryRowContext(ctx, leaderboardQuery+` WHERE player_id = $1`, playerID).Scan(
		&entry.PlayerID, &entry.Username, &entry.BestScore,
		&entry.BestSurvival, &entry.TotalKills, &entry.Accuracy,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
