// game.go

package config

import (
	"errors"
	"fmt"
)

// GameConfig 战斗核心可调参数
type GameConfig struct {
	Player  PlayerConfig  `mapstructure:"player"`
	XP      XPConfig      `mapstructure:"xp"`
	Wave    WaveConfig    `mapstructure:"wave"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	World   WorldConfig   `mapstructure:"world"`
	Quiz    QuizConfig    `mapstructure:"quiz"`
	Session SessionConfig `mapstructure:"session"`
}

// PlayerConfig 玩家基础属性
type PlayerConfig struct {
	Speed           float64 `mapstructure:"speed"`
	MaxHP           float64 `mapstructure:"max_hp"`
	InvincibilityMs float64 `mapstructure:"invincibility_ms"`
	PickupRange     float64 `mapstructure:"pickup_range"`
	Radius          float64 `mapstructure:"radius"`
}

// XPConfig 经验曲线
type XPConfig struct {
	BaseToLevel        float64 `mapstructure:"base_to_level"`
	Multiplier         float64 `mapstructure:"multiplier"`
	GemAttractionSpeed float64 `mapstructure:"gem_attraction_speed"`
	MaxLevel           int     `mapstructure:"max_level"`
}

// WaveConfig 波次与刷怪
type WaveConfig struct {
	DurationMs          float64 `mapstructure:"duration_ms"`
	BaseSpawnIntervalMs float64 `mapstructure:"base_spawn_interval_ms"`
	MinSpawnIntervalMs  float64 `mapstructure:"min_spawn_interval_ms"`
	SpawnRateMultiplier float64 `mapstructure:"spawn_rate_multiplier"`
	BossEvery           int     `mapstructure:"boss_every"`
	BossStaggerMs       float64 `mapstructure:"boss_stagger_ms"`
	SpawnPadding        float64 `mapstructure:"spawn_padding"`
	StatGrowthPerWave   float64 `mapstructure:"stat_growth_per_wave"`
}

// LimitsConfig 数量上限
type LimitsConfig struct {
	MaxWeapons     int `mapstructure:"max_weapons"`
	MaxPassives    int `mapstructure:"max_passives"`
	UpgradeChoices int `mapstructure:"upgrade_choices"`
}

// WorldConfig 世界参数
type WorldConfig struct {
	ViewportWidth    float64 `mapstructure:"viewport_width"`
	ViewportHeight   float64 `mapstructure:"viewport_height"`
	CleanupDistance  float64 `mapstructure:"cleanup_distance"`
	BouncePadding    float64 `mapstructure:"bounce_padding"`
	DeathDelayMs     float64 `mapstructure:"death_delay_ms"`
	JoystickDeadzone float64 `mapstructure:"joystick_deadzone"`
	HealthDropChance float64 `mapstructure:"health_drop_chance"`
	MagnetDropChance float64 `mapstructure:"magnet_drop_chance"`
	HealthOrbValue   float64 `mapstructure:"health_orb_value"`
}

// QuizConfig 答题门控
type QuizConfig struct {
	CorrectBonus   int     `mapstructure:"correct_bonus"`
	RevertResumeMs float64 `mapstructure:"revert_resume_ms"`
}

// SessionConfig 会话参数
type SessionConfig struct {
	TickMs             int     `mapstructure:"tick_ms"`
	SnapshotIntervalMs float64 `mapstructure:"snapshot_interval_ms"`
	StartingWeapon     string  `mapstructure:"starting_weapon"`
}

// DefaultGameConfig 默认游戏参数
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Player: PlayerConfig{
			Speed:           200,
			MaxHP:           100,
			InvincibilityMs: 500,
			PickupRange:     50,
			Radius:          16,
		},
		XP: XPConfig{
			BaseToLevel:        10,
			Multiplier:         1.2,
			GemAttractionSpeed: 400,
			MaxLevel:           99,
		},
		Wave: WaveConfig{
			DurationMs:          30000,
			BaseSpawnIntervalMs: 1000,
			MinSpawnIntervalMs:  150,
			SpawnRateMultiplier: 0.9,
			BossEvery:           3,
			BossStaggerMs:       1500,
			SpawnPadding:        100,
			StatGrowthPerWave:   0.1,
		},
		Limits: LimitsConfig{
			MaxWeapons:     6,
			MaxPassives:    6,
			UpgradeChoices: 3,
		},
		World: WorldConfig{
			ViewportWidth:    1280,
			ViewportHeight:   720,
			CleanupDistance:  2000,
			BouncePadding:    64,
			DeathDelayMs:     300,
			JoystickDeadzone: 0.1,
			HealthDropChance: 0.02,
			MagnetDropChance: 0.005,
			HealthOrbValue:   20,
		},
		Quiz: QuizConfig{
			CorrectBonus:   100,
			RevertResumeMs: 500,
		},
		Session: SessionConfig{
			TickMs:             16,
			SnapshotIntervalMs: 250,
			StartingWeapon:     "magic_bolt",
		},
	}
}

// Validate 校验参数，避免除零和负数上限
func (c *GameConfig) Validate() error {
	if c.XP.BaseToLevel <= 0 || c.XP.Multiplier < 1 {
		return errors.New("经验曲线参数必须为正且倍率不小于1")
	}
	if c.XP.MaxLevel < 1 {
		return fmt.Errorf("最大等级无效: %d", c.XP.MaxLevel)
	}
	if c.Wave.DurationMs <= 0 || c.Wave.BaseSpawnIntervalMs <= 0 {
		return errors.New("波次时长和刷怪间隔必须为正")
	}
	if c.Limits.MaxWeapons < 1 || c.Limits.MaxPassives < 0 || c.Limits.UpgradeChoices < 1 {
		return fmt.Errorf("数量上限无效: %+v", c.Limits)
	}
	if c.Session.TickMs <= 0 {
		return fmt.Errorf("帧间隔无效: %d", c.Session.TickMs)
	}
	return nil
}
