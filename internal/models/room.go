package models

import (
	"sort"
	"time"
)

// RoomStatus 房间状态
type RoomStatus string

const (
	// RoomWaiting 等待中
	RoomWaiting RoomStatus = "waiting"
	// RoomPlaying 游戏中
	RoomPlaying RoomStatus = "playing"
	// RoomEnded 已结束
	RoomEnded RoomStatus = "ended"
)

// Room 大厅房间
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     RoomStatus `json:"status"`
	MaxPlayers int        `json:"max_players"`
	QuizSetID  string     `json:"quiz_set_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// 房间内玩家
	Players []RoomPlayer `json:"players,omitempty"`
}

// RoomPlayer 房间内的玩家
type RoomPlayer struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
}

// PlayerDigest 跨网络传输的玩家摘要，只包含排行榜需要的数据
type PlayerDigest struct {
	RoomID       string    `json:"room_id"`
	PlayerID     int64     `json:"player_id"`
	Username     string    `json:"username"`
	HP           float64   `json:"hp"`
	Level        int       `json:"level"`
	XP           int       `json:"xp"`
	Score        int       `json:"score"`
	SurvivalTime float64   `json:"survival_time"`
	Wave         int       `json:"wave"`
	Kills        int       `json:"kills"`
	Finished     bool      `json:"finished"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SortDigests 按分数降序，同分按生存时间降序
func SortDigests(digests []PlayerDigest) {
	sort.SliceStable(digests, func(i, j int) bool {
		if digests[i].Score != digests[j].Score {
			return digests[i].Score > digests[j].Score
		}
		return digests[i].SurvivalTime > digests[j].SurvivalTime
	})
}
