// weapon.go

package combat

import (
	"math"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// minCooldownMs 冷却下限
const minCooldownMs = 100

// WeaponInstance 玩家持有的武器实例
type WeaponInstance struct {
	Def       *models.WeaponDef
	Level     int
	IsEvolved bool

	cooldownMs float64

	// 环绕体句柄
	bodies []models.Handle
}

func newWeaponInstance(def *models.WeaponDef) *WeaponInstance {
	return &WeaponInstance{
		Def:   def,
		Level: 1,
	}
}

// ID 武器ID
func (wi *WeaponInstance) ID() string {
	return wi.Def.ID
}

// IsMaxLevel 是否满级
func (wi *WeaponInstance) IsMaxLevel() bool {
	return wi.Level >= wi.Def.MaxLevel
}

// DisplayName 进化后返回进化名
func (wi *WeaponInstance) DisplayName() string {
	if wi.IsEvolved && wi.Def.EvolvedName != "" {
		return wi.Def.EvolvedName
	}
	return wi.Def.Name
}

func (wi *WeaponInstance) raw() models.WeaponStats {
	return wi.Def.StatsAt(wi.Level)
}

// Damage 伤害
func (wi *WeaponInstance) Damage(ps models.PlayerStats) float64 {
	d := wi.raw().Damage * ps.DamageMultiplier
	if wi.IsEvolved && wi.Def.Evolved.DamageMultiplier > 0 {
		d *= wi.Def.Evolved.DamageMultiplier
	}
	return d
}

// Cooldown 冷却(毫秒)，不低于100
func (wi *WeaponInstance) Cooldown(ps models.PlayerStats) float64 {
	return math.Max(minCooldownMs, wi.raw().CooldownMs*ps.CooldownMultiplier)
}

// Area 范围
func (wi *WeaponInstance) Area(ps models.PlayerStats) float64 {
	return wi.raw().Area * ps.AreaMultiplier
}

// Speed 投射物速度(单位/秒)
func (wi *WeaponInstance) Speed(ps models.PlayerStats) float64 {
	return wi.raw().Speed * ps.SpeedMultiplier
}

// Duration 持续时间(毫秒)
func (wi *WeaponInstance) Duration(ps models.PlayerStats) float64 {
	return wi.raw().DurationMs * ps.DurationMultiplier
}

// Amount 数量
func (wi *WeaponInstance) Amount(ps models.PlayerStats) int {
	n := wi.raw().Amount + int(math.Floor(ps.AmountBonus))
	if wi.IsEvolved {
		n += wi.Def.Evolved.ExtraAmount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Pierce 穿透，小于0表示无限
func (wi *WeaponInstance) Pierce() int {
	p := wi.raw().Pierce
	if p < 0 {
		return -1
	}
	if wi.IsEvolved {
		p += wi.Def.Evolved.ExtraPierce
	}
	return p
}

// Knockback 击退
func (wi *WeaponInstance) Knockback() float64 {
	return wi.raw().Knockback
}

// Tick 推进冷却，冷却结束时发动攻击并返回 true
func (wi *WeaponInstance) Tick(w *World, deltaMs float64) bool {
	wi.cooldownMs -= deltaMs
	if wi.cooldownMs > 0 {
		return false
	}
	w.fire(wi)
	wi.cooldownMs = wi.Cooldown(w.Player.Stats)
	return true
}

// State 快照摘要
func (wi *WeaponInstance) State() models.WeaponState {
	return models.WeaponState{ID: wi.Def.ID, Level: wi.Level, IsEvolved: wi.IsEvolved}
}

// PassiveInstance 玩家持有的被动实例
type PassiveInstance struct {
	Def   *models.PassiveDef
	Level int
}

// IsMaxLevel 是否满级
func (pi *PassiveInstance) IsMaxLevel() bool {
	return pi.Level >= pi.Def.MaxLevel
}

// State 快照摘要
func (pi *PassiveInstance) State() models.PassiveState {
	return models.PassiveState{ID: pi.Def.ID, Level: pi.Level}
}
