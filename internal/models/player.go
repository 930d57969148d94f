// player.go

package models

import (
	"math"
	"time"
)

// Player 玩家账号模型
type Player struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // 不序列化密码
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 生存战绩
	BestScore     int     `json:"best_score"`
	BestSurvival  float64 `json:"best_survival"` // 最长生存(秒)
	TotalKills    int     `json:"total_kills"`
	TotalRuns     int     `json:"total_runs"`
	TotalAnswered int     `json:"total_answered"`
	TotalCorrect  int     `json:"total_correct"`
}

// StatType 玩家可被被动强化的属性
type StatType string

const (
	StatMaxHP     StatType = "max_hp"
	StatMoveSpeed StatType = "move_speed"
	StatDamage    StatType = "damage"
	StatArea      StatType = "area"
	StatSpeed     StatType = "speed"
	StatDuration  StatType = "duration"
	StatCooldown  StatType = "cooldown"
	StatArmor     StatType = "armor"
	StatRegen     StatType = "hp_regen"
	StatAmount    StatType = "amount"
	StatLuck      StatType = "luck"
	StatGrowth    StatType = "growth"
	StatMagnet    StatType = "magnet"
)

// PlayerStats 玩家属性修正
type PlayerStats struct {
	DamageMultiplier   float64 `json:"damage_multiplier" msgpack:"damage"`
	AreaMultiplier     float64 `json:"area_multiplier" msgpack:"area"`
	SpeedMultiplier    float64 `json:"speed_multiplier" msgpack:"speed"`
	DurationMultiplier float64 `json:"duration_multiplier" msgpack:"duration"`
	CooldownMultiplier float64 `json:"cooldown_multiplier" msgpack:"cooldown"`
	Armor              float64 `json:"armor" msgpack:"armor"`
	HPRegen            float64 `json:"hp_regen" msgpack:"regen"`
	AmountBonus        float64 `json:"amount_bonus" msgpack:"amount"`
	Luck               float64 `json:"luck" msgpack:"luck"`
	Growth             float64 `json:"growth" msgpack:"growth"`
	MagnetRange        float64 `json:"magnet_range" msgpack:"magnet"`
}

// DefaultPlayerStats 初始属性
func DefaultPlayerStats() PlayerStats {
	return PlayerStats{
		DamageMultiplier:   1,
		AreaMultiplier:     1,
		SpeedMultiplier:    1,
		DurationMultiplier: 1,
		CooldownMultiplier: 1,
		MagnetRange:        1,
	}
}

// PlayerEntity 战斗中的玩家实体
type PlayerEntity struct {
	BaseEntity
	HP           float64     `json:"hp" msgpack:"hp"`
	MaxHP        float64     `json:"max_hp" msgpack:"max_hp"`
	MoveSpeed    float64     `json:"move_speed" msgpack:"-"`
	Radius       float64     `json:"radius" msgpack:"-"`
	PickupRadius float64     `json:"pickup_radius" msgpack:"-"`
	Stats        PlayerStats `json:"stats" msgpack:"stats"`
	IsAlive      bool        `json:"is_alive" msgpack:"alive"`

	// 受伤后的无敌帧
	Invincible   bool    `json:"invincible" msgpack:"invincible"`
	InvincibleMs float64 `json:"-" msgpack:"-"`

	// 最近一次非零移动方向
	Facing Vector2D `json:"facing" msgpack:"facing"`

	regenAccumMs float64
}

// NewPlayerEntity 创建玩家实体
func NewPlayerEntity(maxHP, moveSpeed, pickupRadius, radius float64) *PlayerEntity {
	return &PlayerEntity{
		BaseEntity:   NewBaseEntity(EntityPlayer, Vector2D{}),
		HP:           maxHP,
		MaxHP:        maxHP,
		MoveSpeed:    moveSpeed,
		Radius:       radius,
		PickupRadius: pickupRadius,
		Stats:        DefaultPlayerStats(),
		IsAlive:      true,
		Facing:       Vector2D{X: 1},
	}
}

// EffectivePickupRadius 实际拾取半径
func (p *PlayerEntity) EffectivePickupRadius() float64 {
	return p.PickupRadius * p.Stats.MagnetRange
}

// TakeDamage 承受伤害，返回实际扣除的血量。无敌帧内吸收全部伤害
func (p *PlayerEntity) TakeDamage(raw, invincibilityMs float64) float64 {
	if !p.IsAlive || p.Invincible {
		return 0
	}
	dealt := math.Floor(math.Max(1, raw-p.Stats.Armor))
	before := p.HP
	p.HP = clampHP(p.HP-dealt, p.MaxHP)
	if p.HP == 0 {
		p.IsAlive = false
	}
	if invincibilityMs > 0 {
		p.Invincible = true
		p.InvincibleMs = invincibilityMs
	}
	return before - p.HP
}

// Heal 回复血量
func (p *PlayerEntity) Heal(amount float64) {
	if !p.IsAlive || amount <= 0 {
		return
	}
	p.HP = clampHP(p.HP+amount, p.MaxHP)
}

// TickInvincibility 推进无敌帧计时
func (p *PlayerEntity) TickInvincibility(deltaMs float64) {
	if !p.Invincible {
		return
	}
	p.InvincibleMs -= deltaMs
	if p.InvincibleMs <= 0 {
		p.InvincibleMs = 0
		p.Invincible = false
	}
}

// Regenerate 按整秒结算生命回复
func (p *PlayerEntity) Regenerate(deltaMs float64) {
	if p.Stats.HPRegen <= 0 || !p.IsAlive {
		p.regenAccumMs = 0
		return
	}
	p.regenAccumMs += deltaMs
	for p.regenAccumMs >= 1000 {
		p.regenAccumMs -= 1000
		p.Heal(p.Stats.HPRegen)
	}
}

// ApplyStat 应用属性变化，是修改玩家属性的唯一入口
// 百分比对倍率类属性加 value/100，对基础值按当前值的百分比增加
func (p *PlayerEntity) ApplyStat(stat StatType, value float64, isPercentage bool) bool {
	pct := value / 100
	add := func(field *float64) {
		if isPercentage {
			*field += pct
		} else {
			*field += value
		}
	}

	switch stat {
	case StatMaxHP:
		delta := value
		if isPercentage {
			delta = p.MaxHP * pct
		}
		p.MaxHP += delta
		if p.MaxHP < 1 {
			p.MaxHP = 1
		}
		p.HP = clampHP(p.HP+math.Max(0, delta), p.MaxHP)
	case StatMoveSpeed:
		if isPercentage {
			p.MoveSpeed *= 1 + pct
		} else {
			p.MoveSpeed += value
		}
	case StatDamage:
		add(&p.Stats.DamageMultiplier)
	case StatArea:
		add(&p.Stats.AreaMultiplier)
	case StatSpeed:
		add(&p.Stats.SpeedMultiplier)
	case StatDuration:
		add(&p.Stats.DurationMultiplier)
	case StatCooldown:
		add(&p.Stats.CooldownMultiplier)
	case StatArmor:
		add(&p.Stats.Armor)
	case StatRegen:
		add(&p.Stats.HPRegen)
	case StatAmount:
		add(&p.Stats.AmountBonus)
	case StatLuck:
		add(&p.Stats.Luck)
	case StatGrowth:
		add(&p.Stats.Growth)
	case StatMagnet:
		add(&p.Stats.MagnetRange)
	default:
		return false
	}
	return true
}

func clampHP(hp, maxHP float64) float64 {
	return math.Max(0, math.Min(hp, maxHP))
}
