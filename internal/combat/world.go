// world.go

package combat

import (
	"log"
	"math"
	"math/rand"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// 首领弹幕参数
const (
	hazardSpeed      = 250.0
	hazardRadius     = 10.0
	hazardDurationMs = 4000.0
)

// Kill 一次击杀记录
type Kill struct {
	MonsterID string
	Tier      models.MonsterTier
	Position  models.Vector2D
	Score     int
}

// TickResult 单帧结算结果，由会话转交给成长系统
type TickResult struct {
	Kills       []Kill
	XPCollected float64
	// XPGems 本帧拾取的每颗经验宝石面值，成长倍率按颗结算
	XPGems      []float64
	Healed      float64
	DamageTaken float64
	PlayerDied  bool
}

// World 单人战斗世界，只在一个goroutine中推进
type World struct {
	cfg config.GameConfig
	rng *rand.Rand

	Player    *models.PlayerEntity
	Inventory *Inventory

	monsters *arena[*models.MonsterEntity]
	effects  *arena[*models.AttackEffectEntity]
	pickups  *arena[*models.PickupEntity]

	nextHandle models.Handle
	nowMs      float64

	keyboard models.Vector2D
	joystick models.Vector2D

	result TickResult
}

// NewWorld 创建战斗世界，玩家位于原点
func NewWorld(cfg config.GameConfig, cat *catalog.Catalog, rng *rand.Rand) *World {
	player := models.NewPlayerEntity(cfg.Player.MaxHP, cfg.Player.Speed, cfg.Player.PickupRange, cfg.Player.Radius)
	return &World{
		cfg:       cfg,
		rng:       rng,
		Player:    player,
		Inventory: NewInventory(cat, player, cfg.Limits),
		monsters:  newArena[*models.MonsterEntity](),
		effects:   newArena[*models.AttackEffectEntity](),
		pickups:   newArena[*models.PickupEntity](),
	}
}

// NowMs 世界累计的模拟时间
func (w *World) NowMs() float64 {
	return w.nowMs
}

// SetKeyboard 设置键盘方向
func (w *World) SetKeyboard(dir models.Vector2D) {
	w.keyboard = dir
}

// SetJoystick 设置摇杆向量，分量范围[-1, 1]
func (w *World) SetJoystick(v models.Vector2D) {
	w.joystick = models.Vector2D{
		X: math.Max(-1, math.Min(1, v.X)),
		Y: math.Max(-1, math.Min(1, v.Y)),
	}
}

func (w *World) handle() models.Handle {
	w.nextHandle++
	return w.nextHandle
}

// Tick 推进一帧
func (w *World) Tick(deltaMs float64) TickResult {
	w.result = TickResult{}
	if !w.Player.IsAlive {
		w.result.PlayerDied = true
		return w.result
	}
	w.nowMs += deltaMs

	w.movePlayer(deltaMs)
	w.Player.TickInvincibility(deltaMs)
	before := w.Player.HP
	w.Player.Regenerate(deltaMs)
	w.result.Healed += w.Player.HP - before

	w.Inventory.Tick(w, deltaMs)

	w.updateEffects(deltaMs)
	w.updateMonsters(deltaMs)
	w.resolveHits()
	w.updatePickups(deltaMs)

	w.Sweep()
	w.Compact()

	w.result.PlayerDied = !w.Player.IsAlive
	return w.result
}

// movePlayer 摇杆超过死区时覆盖键盘输入
func (w *World) movePlayer(deltaMs float64) {
	dir := w.keyboard
	if w.joystick.Len() > w.cfg.World.JoystickDeadzone {
		dir = w.joystick
	}
	dir = dir.Normalize()

	p := w.Player
	p.Velocity = dir.Scale(p.MoveSpeed * p.Stats.SpeedMultiplier)
	p.Position = p.Position.Add(p.Velocity.Scale(deltaMs / 1000))
	if dir.Len() > 0 {
		p.Facing = dir
	}
}

// SpawnMonster 在指定位置生成怪物
func (w *World) SpawnMonster(spec models.MonsterSpec, pos models.Vector2D) *models.MonsterEntity {
	m := models.NewMonsterEntity(spec, pos, w.Player)
	m.Handle = w.handle()
	w.monsters.insert(m.Handle, m)
	return m
}

// SpawnPickup 在指定位置生成拾取物
func (w *World) SpawnPickup(kind models.PickupKind, value float64, pos models.Vector2D) *models.PickupEntity {
	p := models.NewPickupEntity(kind, value, pos)
	p.Handle = w.handle()
	w.pickups.insert(p.Handle, p)
	return p
}

func (w *World) addEffect(e *models.AttackEffectEntity) *models.AttackEffectEntity {
	e.Handle = w.handle()
	w.effects.insert(e.Handle, e)
	return e
}

// Monster 按句柄查找怪物
func (w *World) Monster(h models.Handle) (*models.MonsterEntity, bool) {
	return w.monsters.get(h)
}

// Effect 按句柄查找攻击效果
func (w *World) Effect(h models.Handle) (*models.AttackEffectEntity, bool) {
	return w.effects.get(h)
}

// Monsters 当前未移除的怪物
func (w *World) Monsters() []*models.MonsterEntity {
	out := make([]*models.MonsterEntity, 0, len(w.monsters.items))
	w.monsters.each(func(m *models.MonsterEntity) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Effects 当前未移除的攻击效果
func (w *World) Effects() []*models.AttackEffectEntity {
	out := make([]*models.AttackEffectEntity, 0, len(w.effects.items))
	w.effects.each(func(e *models.AttackEffectEntity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Pickups 当前未移除的拾取物
func (w *World) Pickups() []*models.PickupEntity {
	out := make([]*models.PickupEntity, 0, len(w.pickups.items))
	w.pickups.each(func(p *models.PickupEntity) bool {
		out = append(out, p)
		return true
	})
	return out
}

// LiveMonsters 存活怪物数量
func (w *World) LiveMonsters() int {
	count := 0
	w.monsters.each(func(m *models.MonsterEntity) bool {
		if m.IsAlive {
			count++
		}
		return true
	})
	return count
}

// updateMonsters 怪物直线追击玩家，死亡动画结束后移除
func (w *World) updateMonsters(deltaMs float64) {
	w.monsters.each(func(m *models.MonsterEntity) bool {
		if !m.IsAlive {
			m.DyingMs -= deltaMs
			if m.DyingMs <= 0 {
				m.MarkRemoved()
			}
			return true
		}

		target := w.Player.Position
		if m.Target != nil {
			target = m.Target.Position
		}
		offset := target.Sub(m.Position)
		dist := offset.Len()
		step := math.Min(m.Speed*deltaMs/1000, dist)
		m.Velocity = offset.Normalize().Scale(m.Speed)
		m.Position = m.Position.Add(offset.Normalize().Scale(step))

		if m.HazardCooldownMs > 0 {
			m.HazardTimerMs -= deltaMs
			if m.HazardTimerMs <= 0 {
				m.HazardTimerMs = m.HazardCooldownMs
				w.fireHazard(m)
			}
		}
		return true
	})
}

// fireHazard 首领向玩家发射危险弹幕，这是玩家受伤的唯一来源
func (w *World) fireHazard(m *models.MonsterEntity) {
	dir := w.Player.Position.Sub(m.Position).Normalize()
	if dir.Len() == 0 {
		dir = models.Vector2D{X: 1}
	}
	w.addEffect(&models.AttackEffectEntity{
		BaseEntity: models.NewBaseEntity(models.EntityEffect, m.Position),
		Archetype:  models.ArchetypeHazard,
		Hostile:    true,
		Damage:     m.Damage,
		Pierce:     1,
		Radius:     hazardRadius,
		Speed:      hazardSpeed,
		DurationMs: hazardDurationMs,
	}).Velocity = dir.Scale(hazardSpeed)
}

// resolveHits 结算攻击效果与怪物、敌方弹幕与玩家的重叠
// 玩家与怪物的接触本身不造成伤害
func (w *World) resolveHits() {
	w.effects.each(func(e *models.AttackEffectEntity) bool {
		if e.Hostile {
			w.resolveHostile(e)
			return true
		}
		if e.Phase == models.PhaseTraveling {
			return true
		}

		w.monsters.each(func(m *models.MonsterEntity) bool {
			if !m.IsAlive {
				return true
			}
			if e.Position.DistanceTo(m.Position) > e.Radius+m.Radius {
				return true
			}
			if !e.CanHit(m.Handle, w.nowMs) {
				return e.Pierce != 0
			}
			e.RecordHit(m.Handle, w.nowMs)
			w.knockback(e, m)
			if m.ApplyDamage(e.Damage) {
				w.onMonsterKilled(m)
			}
			return e.Pierce != 0
		})

		if e.Pierce == 0 {
			e.MarkRemoved()
		}
		return true
	})
}

func (w *World) resolveHostile(e *models.AttackEffectEntity) {
	p := w.Player
	if !p.IsAlive || e.Position.DistanceTo(p.Position) > e.Radius+p.Radius {
		return
	}
	dealt := p.TakeDamage(e.Damage, w.cfg.Player.InvincibilityMs)
	w.result.DamageTaken += dealt
	e.MarkRemoved()
}

func (w *World) knockback(e *models.AttackEffectEntity, m *models.MonsterEntity) {
	if e.Knockback <= 0 || m.Tier == models.TierBoss {
		return
	}
	push := m.Position.Sub(e.Position).Normalize()
	if push.Len() == 0 {
		push = w.Player.Facing
	}
	m.Position = m.Position.Add(push.Scale(e.Knockback))
}

// onMonsterKilled 每只怪物只会进入一次：计数、加分并掉落一个拾取物
func (w *World) onMonsterKilled(m *models.MonsterEntity) {
	m.DyingMs = w.cfg.World.DeathDelayMs
	m.Velocity = models.Vector2D{}
	w.result.Kills = append(w.result.Kills, Kill{
		MonsterID: m.ID,
		Tier:      m.Tier,
		Position:  m.Position,
		Score:     m.ScoreValue,
	})

	luck := 1 + w.Player.Stats.Luck
	roll := w.rng.Float64()
	switch {
	case roll < w.cfg.World.MagnetDropChance*luck:
		w.SpawnPickup(models.PickupMagnet, 0, m.Position)
	case roll < (w.cfg.World.MagnetDropChance+w.cfg.World.HealthDropChance)*luck:
		w.SpawnPickup(models.PickupHealth, w.cfg.World.HealthOrbValue, m.Position)
	default:
		w.SpawnPickup(models.PickupXPGem, m.XPValue, m.Position)
	}
}

// updatePickups 进入两倍拾取半径后开始吸附，接触时拾取
func (w *World) updatePickups(deltaMs float64) {
	p := w.Player
	attractRange := 2 * p.EffectivePickupRadius()
	step := w.cfg.XP.GemAttractionSpeed * deltaMs / 1000

	w.pickups.each(func(pk *models.PickupEntity) bool {
		if !pk.Collecting && pk.Position.DistanceTo(p.Position) <= attractRange {
			pk.Collecting = true
			pk.Target = p
		}
		if pk.Collecting {
			offset := p.Position.Sub(pk.Position)
			pk.Position = pk.Position.Add(offset.Normalize().Scale(math.Min(step, offset.Len())))
		}
		if pk.Position.DistanceTo(p.Position) <= p.Radius+pk.Radius {
			w.collect(pk)
		}
		return true
	})
}

func (w *World) collect(pk *models.PickupEntity) {
	pk.MarkRemoved()
	switch pk.Kind {
	case models.PickupXPGem:
		w.result.XPCollected += pk.Value
		w.result.XPGems = append(w.result.XPGems, pk.Value)
	case models.PickupHealth:
		before := w.Player.HP
		w.Player.Heal(pk.Value)
		w.result.Healed += w.Player.HP - before
	case models.PickupMagnet:
		w.pickups.each(func(other *models.PickupEntity) bool {
			if other.Kind == models.PickupXPGem {
				other.Collecting = true
				other.Target = w.Player
			}
			return true
		})
	default:
		log.Printf("未知拾取物类型: %s", pk.Kind)
	}
}

// Sweep 移除距离玩家超过清理距离的怪物、拾取物和攻击效果，返回移除数量
func (w *World) Sweep() int {
	limit := w.cfg.World.CleanupDistance
	center := w.Player.Position
	removed := 0

	w.monsters.each(func(m *models.MonsterEntity) bool {
		if m.Position.DistanceTo(center) > limit {
			m.MarkRemoved()
			removed++
		}
		return true
	})
	w.pickups.each(func(pk *models.PickupEntity) bool {
		if pk.Position.DistanceTo(center) > limit {
			pk.MarkRemoved()
			removed++
		}
		return true
	})
	w.effects.each(func(e *models.AttackEffectEntity) bool {
		if e.Position.DistanceTo(center) > limit {
			e.MarkRemoved()
			removed++
		}
		return true
	})
	return removed
}

// Compact 压缩全部集合
func (w *World) Compact() {
	w.monsters.compact()
	w.pickups.compact()
	w.effects.compact()
}

// Clear 会话结束时销毁全部实体
func (w *World) Clear() {
	w.monsters.clear()
	w.pickups.clear()
	w.effects.clear()
}

// nearestMonster 返回范围内最近的存活怪物，maxRange 为0表示不限
func (w *World) nearestMonster(from models.Vector2D, maxRange float64) (*models.MonsterEntity, bool) {
	var best *models.MonsterEntity
	bestDist := math.Inf(1)
	w.monsters.each(func(m *models.MonsterEntity) bool {
		if !m.IsAlive {
			return true
		}
		d := m.Position.DistanceTo(from)
		if maxRange > 0 && d > maxRange {
			return true
		}
		if d < bestDist {
			best, bestDist = m, d
		}
		return true
	})
	return best, best != nil
}

// randomMonster 随机选择范围内的存活怪物
func (w *World) randomMonster(from models.Vector2D, maxRange float64) (*models.MonsterEntity, bool) {
	var candidates []*models.MonsterEntity
	w.monsters.each(func(m *models.MonsterEntity) bool {
		if m.IsAlive && (maxRange <= 0 || m.Position.DistanceTo(from) <= maxRange) {
			candidates = append(candidates, m)
		}
		return true
	})
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[w.rng.Intn(len(candidates))], true
}
