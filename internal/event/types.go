// types.go

package event

import "github.com/jacl-coder/PixelStorm-Quiz/internal/models"

// EventType 事件类型
type EventType string

// 核心发出的事件
const (
	GameReady         EventType = "game-ready"
	PlayerStateUpdate EventType = "player-state-update"
	LevelUp           EventType = "level-up"
	GamePaused        EventType = "game-paused"
	GameResumed       EventType = "game-resumed"
	GameOver          EventType = "game-over"
	MonsterKilled     EventType = "monster-killed"
	WaveChanged       EventType = "wave-changed"
	CameraShake       EventType = "camera-shake"
	QuizVerdict       EventType = "quiz-verdict"
)

// 外部输入的事件
const (
	UpgradeSelected EventType = "upgrade-selected"
	QuizResult      EventType = "quiz-result"
	JoystickMove    EventType = "joystick-move"
	KeyboardMove    EventType = "keyboard-move"
	PauseGame       EventType = "pause-game"
	ResumeGame      EventType = "resume-game"
)

// PauseReason 暂停原因
type PauseReason string

const (
	PauseManual  PauseReason = "manual"
	PauseLevelUp PauseReason = "level-up"
)

// PausePayload 暂停/恢复事件载荷
type PausePayload struct {
	Reason PauseReason `json:"reason" msgpack:"reason"`
}

// LevelUpPayload 升级事件载荷
type LevelUpPayload struct {
	Proposal models.LevelUpProposal `json:"proposal" msgpack:"proposal"`
	Quiz     *models.Quiz           `json:"quiz,omitempty" msgpack:"quiz,omitempty"`
}

// UpgradeSelectedPayload 玩家选择的升级
type UpgradeSelectedPayload struct {
	Kind models.UpgradeKind `json:"kind" msgpack:"kind"`
	ID   string             `json:"id" msgpack:"id"`
}

// QuizResultPayload 答题结果
// Answer 为所选选项下标，对错由服务端按当前题目判定，缺省或越界视为答错
type QuizResultPayload struct {
	Answer int `json:"answer" msgpack:"answer"`
}

// QuizVerdictPayload 答题判定
type QuizVerdictPayload struct {
	Correct      bool   `json:"correct" msgpack:"correct"`
	Level        int    `json:"level" msgpack:"level"`
	CorrectIndex int    `json:"correct_index" msgpack:"correct_index"`
	Explanation  string `json:"explanation,omitempty" msgpack:"explanation,omitempty"`
}

// MovePayload 移动输入，取值范围[-1, 1]
type MovePayload struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// MonsterKilledPayload 怪物击杀
type MonsterKilledPayload struct {
	MonsterID string             `json:"monster_id" msgpack:"monster_id"`
	Tier      models.MonsterTier `json:"tier" msgpack:"tier"`
	Position  models.Vector2D    `json:"position" msgpack:"position"`
	Score     int                `json:"score" msgpack:"score"`
}

// WaveChangedPayload 波次变化
type WaveChangedPayload struct {
	Wave   int  `json:"wave" msgpack:"wave"`
	IsBoss bool `json:"is_boss" msgpack:"is_boss"`
}

// CameraShakePayload 镜头震动
type CameraShakePayload struct {
	Intensity  float64 `json:"intensity" msgpack:"intensity"`
	DurationMs float64 `json:"duration_ms" msgpack:"duration_ms"`
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	Summary models.RunSummary `json:"summary" msgpack:"summary"`
}
