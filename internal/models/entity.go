// entity.go

package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Vector2D 二维向量
type Vector2D struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Add 向量相加
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量相减
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 数乘
func (v Vector2D) Scale(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

// Len 向量长度
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize 单位化，零向量返回零向量
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

// DistanceTo 两点距离
func (v Vector2D) DistanceTo(o Vector2D) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Angle 向量方向(弧度)
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle 由角度构造单位向量
func FromAngle(rad float64) Vector2D {
	return Vector2D{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Handle 实体在竞技场中的稳定句柄
type Handle uint64

// EntityType 实体类型
type EntityType string

const (
	// EntityPlayer 玩家实体
	EntityPlayer EntityType = "player"
	// EntityMonster 怪物实体
	EntityMonster EntityType = "monster"
	// EntityEffect 攻击效果实体
	EntityEffect EntityType = "effect"
	// EntityPickup 拾取物实体
	EntityPickup EntityType = "pickup"
)

// Entity 游戏实体基础接口
type Entity interface {
	GetID() string
	GetType() EntityType
	GetPosition() Vector2D
	GetCreatedAt() time.Time
	IsRemoved() bool
	MarkRemoved()
}

// BaseEntity 基础实体结构
type BaseEntity struct {
	ID        string     `json:"id" msgpack:"id"`
	Type      EntityType `json:"type" msgpack:"type"`
	Position  Vector2D   `json:"position" msgpack:"position"`
	Velocity  Vector2D   `json:"velocity" msgpack:"velocity"`
	CreatedAt time.Time  `json:"created_at" msgpack:"-"`

	// 标记删除，在帧末统一压缩
	Removed bool `json:"-" msgpack:"-"`
}

// NewBaseEntity 创建基础实体
func NewBaseEntity(t EntityType, pos Vector2D) BaseEntity {
	return BaseEntity{
		ID:        uuid.New().String(),
		Type:      t,
		Position:  pos,
		CreatedAt: time.Now(),
	}
}

// GetID 获取实体ID
func (e *BaseEntity) GetID() string {
	return e.ID
}

// GetType 获取实体类型
func (e *BaseEntity) GetType() EntityType {
	return e.Type
}

// GetPosition 获取实体位置
func (e *BaseEntity) GetPosition() Vector2D {
	return e.Position
}

// GetCreatedAt 获取实体创建时间
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// IsRemoved 是否已标记删除
func (e *BaseEntity) IsRemoved() bool {
	return e.Removed
}

// MarkRemoved 标记删除
func (e *BaseEntity) MarkRemoved() {
	e.Removed = true
}

// MonsterTier 怪物档位
type MonsterTier string

const (
	TierBasic MonsterTier = "basic"
	TierFast  MonsterTier = "fast"
	TierTank  MonsterTier = "tank"
	TierBoss  MonsterTier = "boss"
)

// MonsterEntity 怪物实体
type MonsterEntity struct {
	BaseEntity
	Handle Handle      `json:"handle" msgpack:"handle"`
	Tier   MonsterTier `json:"tier" msgpack:"tier"`

	HP         float64 `json:"hp" msgpack:"hp"`
	MaxHP      float64 `json:"max_hp" msgpack:"max_hp"`
	Damage     float64 `json:"damage" msgpack:"-"`
	Speed      float64 `json:"speed" msgpack:"-"`
	Radius     float64 `json:"radius" msgpack:"radius"`
	XPValue    float64 `json:"xp_value" msgpack:"-"`
	ScoreValue int     `json:"score_value" msgpack:"-"`
	IsAlive    bool    `json:"is_alive" msgpack:"alive"`

	// 死亡后保留的动画时间
	DyingMs float64 `json:"-" msgpack:"-"`

	// 首领的危险弹幕冷却，0表示不发射
	HazardCooldownMs float64 `json:"-" msgpack:"-"`
	HazardTimerMs    float64 `json:"-" msgpack:"-"`

	// 追击目标，不持有所有权
	Target *PlayerEntity `json:"-" msgpack:"-"`
}

// ApplyDamage 扣血，返回是否因此死亡。已死亡的怪物不再受伤
func (m *MonsterEntity) ApplyDamage(amount float64) bool {
	if !m.IsAlive || m.Removed {
		return false
	}
	m.HP -= amount
	if m.HP <= 0 {
		m.HP = 0
		m.IsAlive = false
		return true
	}
	return false
}

// PickupKind 拾取物类型
type PickupKind string

const (
	PickupXPGem  PickupKind = "xp_gem"
	PickupHealth PickupKind = "health"
	PickupMagnet PickupKind = "magnet"
)

// PickupEntity 拾取物实体
type PickupEntity struct {
	BaseEntity
	Handle     Handle     `json:"handle" msgpack:"handle"`
	Kind       PickupKind `json:"kind" msgpack:"kind"`
	Value      float64    `json:"value" msgpack:"value"`
	Radius     float64    `json:"radius" msgpack:"-"`
	Collecting bool       `json:"collecting" msgpack:"collecting"`

	// 开始吸附后的目标，不持有所有权
	Target *PlayerEntity `json:"-" msgpack:"-"`
}

// EffectPhase 攻击效果阶段
type EffectPhase uint8

const (
	// PhaseActive 造成伤害
	PhaseActive EffectPhase = iota
	// PhaseTraveling 飞行中，不造成伤害
	PhaseTraveling
	// PhaseReturning 回旋返回
	PhaseReturning
)

// AttackEffectEntity 攻击效果实体（投射物、范围脉冲、近战挥砍）
type AttackEffectEntity struct {
	BaseEntity
	Handle    Handle    `json:"handle" msgpack:"handle"`
	WeaponID  string    `json:"weapon_id" msgpack:"weapon"`
	Archetype Archetype `json:"archetype" msgpack:"archetype"`
	Hostile   bool      `json:"hostile" msgpack:"hostile"`

	Damage    float64 `json:"damage" msgpack:"-"`
	Pierce    int     `json:"pierce" msgpack:"-"` // 小于0表示无限穿透
	Radius    float64 `json:"radius" msgpack:"radius"`
	Knockback float64 `json:"knockback" msgpack:"-"`
	Speed     float64 `json:"speed" msgpack:"-"`

	DurationMs float64     `json:"duration_ms" msgpack:"-"`
	AgeMs      float64     `json:"age_ms" msgpack:"-"`
	Phase      EffectPhase `json:"phase" msgpack:"phase"`

	// 同一怪物再次受击的间隔，0表示每个效果只命中一次
	HitIntervalMs float64            `json:"-" msgpack:"-"`
	HitLog        map[Handle]float64 `json:"-" msgpack:"-"`

	// 环绕
	OrbitAngle  float64 `json:"-" msgpack:"-"`
	OrbitRadius float64 `json:"-" msgpack:"-"`
	OrbitSpeed  float64 `json:"-" msgpack:"-"` // 弧度/毫秒
	Persistent  bool    `json:"-" msgpack:"-"`

	// 追踪
	TargetHandle    Handle  `json:"-" msgpack:"-"`
	RetargetMs      float64 `json:"-" msgpack:"-"`
	RetargetTimerMs float64 `json:"-" msgpack:"-"`

	// 定点落地
	Origin      Vector2D `json:"-" msgpack:"-"`
	Destination Vector2D `json:"-" msgpack:"-"`
	TravelMs    float64  `json:"-" msgpack:"-"`

	// 跟随玩家的光环
	FollowPlayer bool `json:"-" msgpack:"-"`
}

// RemainingMs 剩余寿命
func (e *AttackEffectEntity) RemainingMs() float64 {
	if e.Persistent {
		return math.Inf(1)
	}
	return e.DurationMs - e.AgeMs
}

// CanHit 判断是否可以命中指定怪物
func (e *AttackEffectEntity) CanHit(h Handle, nowMs float64) bool {
	if e.Phase == PhaseTraveling || e.Pierce == 0 {
		return false
	}
	last, ok := e.HitLog[h]
	if !ok {
		return true
	}
	return e.HitIntervalMs > 0 && nowMs-last >= e.HitIntervalMs
}

// RecordHit 记录命中，首次命中同一怪物时消耗一次穿透
func (e *AttackEffectEntity) RecordHit(h Handle, nowMs float64) {
	if e.HitLog == nil {
		e.HitLog = make(map[Handle]float64)
	}
	_, seen := e.HitLog[h]
	e.HitLog[h] = nowMs
	if !seen && e.Pierce > 0 {
		e.Pierce--
	}
}

// MonsterSpec 刷怪参数，由波次调度器按当前波次生成
type MonsterSpec struct {
	Tier             MonsterTier `json:"tier"`
	HP               float64     `json:"hp"`
	Damage           float64     `json:"damage"`
	Speed            float64     `json:"speed"`
	Radius           float64     `json:"radius"`
	XPValue          float64     `json:"xp_value"`
	ScoreValue       int         `json:"score_value"`
	HazardCooldownMs float64     `json:"hazard_cooldown_ms,omitempty"`
}

// NewMonsterEntity 按参数创建怪物
func NewMonsterEntity(spec MonsterSpec, pos Vector2D, target *PlayerEntity) *MonsterEntity {
	return &MonsterEntity{
		BaseEntity:       NewBaseEntity(EntityMonster, pos),
		Tier:             spec.Tier,
		HP:               spec.HP,
		MaxHP:            spec.HP,
		Damage:           spec.Damage,
		Speed:            spec.Speed,
		Radius:           spec.Radius,
		XPValue:          spec.XPValue,
		ScoreValue:       spec.ScoreValue,
		IsAlive:          true,
		HazardCooldownMs: spec.HazardCooldownMs,
		HazardTimerMs:    spec.HazardCooldownMs,
		Target:           target,
	}
}

// NewPickupEntity 创建拾取物
func NewPickupEntity(kind PickupKind, value float64, pos Vector2D) *PickupEntity {
	return &PickupEntity{
		BaseEntity: NewBaseEntity(EntityPickup, pos),
		Kind:       kind,
		Value:      value,
		Radius:     8,
	}
}
