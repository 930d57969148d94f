// weapon.go

package models

// Archetype 武器攻击原型
type Archetype string

const (
	// ArchetypeDirectional 朝向/瞄准射击
	ArchetypeDirectional Archetype = "directional"
	// ArchetypeRadial 环形齐射
	ArchetypeRadial Archetype = "radial"
	// ArchetypeOrbit 环绕体
	ArchetypeOrbit Archetype = "orbit"
	// ArchetypeHoming 追踪体
	ArchetypeHoming Archetype = "homing"
	// ArchetypeBouncing 反弹体
	ArchetypeBouncing Archetype = "bouncing"
	// ArchetypeTargetedArea 定点范围爆炸
	ArchetypeTargetedArea Archetype = "targeted_area"
	// ArchetypePulse 自身光环脉冲
	ArchetypePulse Archetype = "pulse"
	// ArchetypeBoomerang 回旋镖
	ArchetypeBoomerang Archetype = "boomerang"
	// ArchetypeHazard 敌方危险弹幕
	ArchetypeHazard Archetype = "hazard"
)

// TargetMode 目标选择方式
type TargetMode string

const (
	TargetFacing      TargetMode = "facing"
	TargetNearest     TargetMode = "nearest"
	TargetRandomEnemy TargetMode = "random_enemy"
	TargetRandomPoint TargetMode = "random_point"
)

// WeaponStats 武器数值块
type WeaponStats struct {
	Damage     float64 `json:"damage"`
	CooldownMs float64 `json:"cooldown_ms"`
	Area       float64 `json:"area"`
	Speed      float64 `json:"speed"` // 单位/秒
	DurationMs float64 `json:"duration_ms"`
	Amount     int     `json:"amount"`
	Pierce     int     `json:"pierce"` // 小于0表示无限
	Knockback  float64 `json:"knockback"`
}

// Add 逐项相加
func (s WeaponStats) Add(o WeaponStats) WeaponStats {
	return WeaponStats{
		Damage:     s.Damage + o.Damage,
		CooldownMs: s.CooldownMs + o.CooldownMs,
		Area:       s.Area + o.Area,
		Speed:      s.Speed + o.Speed,
		DurationMs: s.DurationMs + o.DurationMs,
		Amount:     s.Amount + o.Amount,
		Pierce:     s.Pierce + o.Pierce,
		Knockback:  s.Knockback + o.Knockback,
	}
}

// ArchetypeParams 原型专属参数
type ArchetypeParams struct {
	Targeting     TargetMode `json:"targeting,omitempty"`
	SpreadDeg     float64    `json:"spread_deg,omitempty"`
	JitterDeg     float64    `json:"jitter_deg,omitempty"`
	OrbitRadius   float64    `json:"orbit_radius,omitempty"`
	OrbitSpeedDeg float64    `json:"orbit_speed_deg,omitempty"` // 度/秒
	RetargetMs    float64    `json:"retarget_ms,omitempty"`
	TravelMs      float64    `json:"travel_ms,omitempty"`
	ScatterRadius float64    `json:"scatter_radius,omitempty"`
	HitIntervalMs float64    `json:"hit_interval_ms,omitempty"`
	Range         float64    `json:"range,omitempty"` // 索敌范围，0表示不限
}

// EvolutionTraits 进化后的行为分支
type EvolutionTraits struct {
	DamageMultiplier float64 `json:"damage_multiplier,omitempty"`
	ExtraAmount      int     `json:"extra_amount,omitempty"`
	ExtraPierce      int     `json:"extra_pierce,omitempty"`
	Persistent       bool    `json:"persistent,omitempty"` // 环绕体常驻
}

// WeaponDef 武器目录条目（只读）
type WeaponDef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxLevel    int       `json:"max_level"`
	Archetype   Archetype `json:"archetype"`

	Base        WeaponStats     `json:"base"`
	LevelDeltas []WeaponStats   `json:"level_deltas"` // 长度为 MaxLevel-1
	Params      ArchetypeParams `json:"params"`

	// 进化配对
	EvolutionPassive string          `json:"evolution_passive,omitempty"`
	EvolvedID        string          `json:"evolved_id,omitempty"`
	EvolvedName      string          `json:"evolved_name,omitempty"`
	Evolved          EvolutionTraits `json:"evolved,omitempty"`
}

// StatsAt 叠加前 level-1 条等级增量
func (d *WeaponDef) StatsAt(level int) WeaponStats {
	s := d.Base
	for i := 0; i < level-1 && i < len(d.LevelDeltas); i++ {
		s = s.Add(d.LevelDeltas[i])
	}
	return s
}

// CanEvolve 是否存在进化形态
func (d *WeaponDef) CanEvolve() bool {
	return d.EvolutionPassive != ""
}

// PassiveEffect 被动效果描述
type PassiveEffect struct {
	Stat          StatType `json:"stat"`
	ValuePerLevel float64  `json:"value_per_level"`
	IsPercentage  bool     `json:"is_percentage"`
}

// PassiveDef 被动目录条目（只读）
type PassiveDef struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	MaxLevel    int           `json:"max_level"`
	Effect      PassiveEffect `json:"effect"`
}

// WeaponState 武器实例摘要，用于快照
type WeaponState struct {
	ID        string `json:"id" msgpack:"id"`
	Level     int    `json:"level" msgpack:"level"`
	IsEvolved bool   `json:"is_evolved" msgpack:"evolved"`
}

// PassiveState 被动实例摘要，用于快照
type PassiveState struct {
	ID    string `json:"id" msgpack:"id"`
	Level int    `json:"level" msgpack:"level"`
}
