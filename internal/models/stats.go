// stats.go

package models

import (
	"time"
)

// RunSummary 一局结束时的最终数据
type RunSummary struct {
	SessionID    string    `json:"session_id" msgpack:"session_id"`
	Score        int       `json:"score" msgpack:"score"`
	Level        int       `json:"level" msgpack:"level"`
	Wave         int       `json:"wave" msgpack:"wave"`
	Kills        int       `json:"kills" msgpack:"kills"`
	SurvivalTime float64   `json:"survival_time" msgpack:"survival_time"` // 秒
	Quiz         QuizStats `json:"quiz" msgpack:"quiz"`
	Died         bool      `json:"died" msgpack:"died"`
}

// RunRecord 持久化的对局记录
type RunRecord struct {
	ID        string    `json:"id"`
	PlayerID  int64     `json:"player_id"`
	QuizSetID string    `json:"quiz_set_id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	RunSummary
}

// Accuracy 答题正确率
func (r *RunRecord) Accuracy() float64 {
	return r.Quiz.Accuracy()
}

// PlayerSnapshot 周期性状态快照
type PlayerSnapshot struct {
	SessionID    string         `json:"session_id" msgpack:"session_id"`
	HP           float64        `json:"hp" msgpack:"hp"`
	MaxHP        float64        `json:"max_hp" msgpack:"max_hp"`
	Level        int            `json:"level" msgpack:"level"`
	XP           int            `json:"xp" msgpack:"xp"`
	XPToNext     int            `json:"xp_to_next" msgpack:"xp_to_next"`
	Score        int            `json:"score" msgpack:"score"`
	SurvivalTime float64        `json:"survival_time" msgpack:"survival_time"`
	Wave         int            `json:"wave" msgpack:"wave"`
	Kills        int            `json:"kills" msgpack:"kills"`
	Paused       bool           `json:"paused" msgpack:"paused"`
	Position     Vector2D       `json:"position" msgpack:"position"`
	Weapons      []WeaponState  `json:"weapons" msgpack:"weapons"`
	Passives     []PassiveState `json:"passives" msgpack:"passives"`
	Quiz         QuizStats      `json:"quiz" msgpack:"quiz"`
	Monsters     int            `json:"monsters" msgpack:"monsters"`
	Effects      int            `json:"effects" msgpack:"effects"`
	Pickups      int            `json:"pickups" msgpack:"pickups"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID     int64   `json:"player_id"`
	Username     string  `json:"username"`
	BestScore    int     `json:"best_score"`
	BestSurvival float64 `json:"best_survival"`
	TotalKills   int     `json:"total_kills"`
	Accuracy     float64 `json:"accuracy"`
	Score        float64 `json:"score"` // 当前榜单的分值
	Rank         int     `json:"rank"`
}

// LeaderboardType 排行榜类型
type LeaderboardType string

const (
	// LeaderboardScore 最高分排行榜
	LeaderboardScore LeaderboardType = "score"
	// LeaderboardSurvival 生存时间排行榜
	LeaderboardSurvival LeaderboardType = "survival"
	// LeaderboardKills 击杀排行榜
	LeaderboardKills LeaderboardType = "kills"
)
