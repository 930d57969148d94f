// archetypes.go

package combat

import (
	"log"
	"math"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

const (
	// defaultScatterRadius 没有目标时的随机落点半径
	defaultScatterRadius = 200.0
	// defaultBoomerangSpreadDeg 回旋武器未配置扩散角时的间隔
	defaultBoomerangSpreadDeg = 15.0
)

// executor 原型的攻击执行器
type executor func(w *World, wi *WeaponInstance)

var executors = map[models.Archetype]executor{
	models.ArchetypeDirectional:  fireDirectional,
	models.ArchetypeRadial:       fireRadial,
	models.ArchetypeOrbit:        fireOrbit,
	models.ArchetypeHoming:       fireHoming,
	models.ArchetypeBouncing:     fireBouncing,
	models.ArchetypeTargetedArea: fireTargetedArea,
	models.ArchetypePulse:        firePulse,
	models.ArchetypeBoomerang:    fireBoomerang,
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

// fire 按武器原型发动攻击
func (w *World) fire(wi *WeaponInstance) {
	exec, ok := executors[wi.Def.Archetype]
	if !ok {
		log.Printf("武器 %s 的原型 %s 无法由玩家发动", wi.Def.ID, wi.Def.Archetype)
		return
	}
	exec(w, wi)
}

// newEffect 以武器当前数值创建攻击效果
func (w *World) newEffect(wi *WeaponInstance, pos models.Vector2D) *models.AttackEffectEntity {
	ps := w.Player.Stats
	return &models.AttackEffectEntity{
		BaseEntity:    models.NewBaseEntity(models.EntityEffect, pos),
		WeaponID:      wi.Def.ID,
		Archetype:     wi.Def.Archetype,
		Damage:        wi.Damage(ps),
		Pierce:        wi.Pierce(),
		Radius:        wi.Area(ps),
		Knockback:     wi.Knockback(),
		Speed:         wi.Speed(ps),
		DurationMs:    wi.Duration(ps),
		HitIntervalMs: wi.Def.Params.HitIntervalMs,
	}
}

// aimAngle 按目标模式计算瞄准方向，找不到敌人时使用朝向
func (w *World) aimAngle(mode models.TargetMode, maxRange float64) float64 {
	origin := w.Player.Position
	var target *models.MonsterEntity
	var ok bool
	switch mode {
	case models.TargetNearest:
		target, ok = w.nearestMonster(origin, maxRange)
	case models.TargetRandomEnemy:
		target, ok = w.randomMonster(origin, maxRange)
	}
	if ok {
		if dir := target.Position.Sub(origin); dir.Len() > 0 {
			return dir.Angle()
		}
	}
	return w.Player.Facing.Angle()
}

// fireDirectional 沿瞄准方向发射N枚投射物，多枚时按扩散角对称分布
func fireDirectional(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	base := w.aimAngle(wi.Def.Params.Targeting, wi.Def.Params.Range)
	spread := deg2rad(wi.Def.Params.SpreadDeg)
	speed := wi.Speed(ps)

	for i := 0; i < n; i++ {
		angle := base + (float64(i)-float64(n-1)/2)*spread
		e := w.newEffect(wi, w.Player.Position)
		e.Velocity = models.FromAngle(angle).Scale(speed)
		w.addEffect(e)
	}
}

// fireRadial 以均匀角度向四周发射，可带随机偏移
func fireRadial(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	jitter := deg2rad(wi.Def.Params.JitterDeg)
	speed := wi.Speed(ps)

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		if jitter > 0 {
			angle += (w.rng.Float64()*2 - 1) * jitter
		}
		e := w.newEffect(wi, w.Player.Position)
		e.Velocity = models.FromAngle(angle).Scale(speed)
		w.addEffect(e)
	}
}

// fireOrbit 重建环绕体。进化后的常驻环绕体在存活时不重建
func fireOrbit(w *World, wi *WeaponInstance) {
	persistent := wi.IsEvolved && wi.Def.Evolved.Persistent
	if persistent && wi.liveBodies(w) > 0 {
		return
	}
	for _, h := range wi.bodies {
		if e, ok := w.effects.get(h); ok {
			e.MarkRemoved()
		}
	}
	wi.bodies = wi.bodies[:0]

	ps := w.Player.Stats
	n := wi.Amount(ps)
	radius := wi.Def.Params.OrbitRadius * ps.AreaMultiplier
	angularSpeed := deg2rad(wi.Def.Params.OrbitSpeedDeg) / 1000 * ps.SpeedMultiplier

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		e := w.newEffect(wi, w.Player.Position.Add(models.FromAngle(angle).Scale(radius)))
		e.OrbitAngle = angle
		e.OrbitRadius = radius
		e.OrbitSpeed = angularSpeed
		e.Persistent = persistent
		e.FollowPlayer = true
		w.addEffect(e)
		wi.bodies = append(wi.bodies, e.Handle)
	}
}

func (wi *WeaponInstance) liveBodies(w *World) int {
	count := 0
	for _, h := range wi.bodies {
		if _, ok := w.effects.get(h); ok {
			count++
		}
	}
	return count
}

// fireHoming 发射时锁定目标，之后按间隔修正速度方向
func fireHoming(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	speed := wi.Speed(ps)
	params := wi.Def.Params

	for i := 0; i < n; i++ {
		e := w.newEffect(wi, w.Player.Position)
		e.RetargetMs = params.RetargetMs
		e.RetargetTimerMs = params.RetargetMs

		var target *models.MonsterEntity
		var ok bool
		if params.Targeting == models.TargetRandomEnemy {
			target, ok = w.randomMonster(w.Player.Position, params.Range)
		} else {
			target, ok = w.nearestMonster(w.Player.Position, params.Range)
		}
		dir := w.Player.Facing
		if ok {
			e.TargetHandle = target.Handle
			if d := target.Position.Sub(e.Position).Normalize(); d.Len() > 0 {
				dir = d
			}
		}
		// 多枚时稍微错开初始方向
		offset := (float64(i) - float64(n-1)/2) * deg2rad(12)
		e.Velocity = models.FromAngle(dir.Angle() + offset).Scale(speed)
		w.addEffect(e)
	}
}

// fireBouncing 以随机方向发射，在视口边界内反弹
func fireBouncing(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	speed := wi.Speed(ps)

	for i := 0; i < n; i++ {
		e := w.newEffect(wi, w.Player.Position)
		e.Velocity = models.FromAngle(w.rng.Float64() * 2 * math.Pi).Scale(speed)
		w.addEffect(e)
	}
}

// fireTargetedArea 选定落点，飞行结束后在落点形成范围伤害
func fireTargetedArea(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	params := wi.Def.Params
	origin := w.Player.Position

	for i := 0; i < n; i++ {
		dest, ok := models.Vector2D{}, false
		switch params.Targeting {
		case models.TargetNearest:
			var m *models.MonsterEntity
			if m, ok = w.nearestMonster(origin, params.Range); ok {
				dest = m.Position
			}
		case models.TargetRandomEnemy:
			var m *models.MonsterEntity
			if m, ok = w.randomMonster(origin, params.Range); ok {
				dest = m.Position
			}
		}
		if !ok {
			dest = w.randomPointNear(origin, params.ScatterRadius)
		}

		e := w.newEffect(wi, dest)
		if params.TravelMs > 0 {
			e.Phase = models.PhaseTraveling
			e.Origin = origin
			e.Destination = dest
			e.TravelMs = params.TravelMs
			e.Position = origin
		}
		w.addEffect(e)
	}
}

func (w *World) randomPointNear(center models.Vector2D, radius float64) models.Vector2D {
	if radius <= 0 {
		radius = defaultScatterRadius
	}
	angle := w.rng.Float64() * 2 * math.Pi
	dist := math.Sqrt(w.rng.Float64()) * radius
	return center.Add(models.FromAngle(angle).Scale(dist))
}

// firePulse 以玩家为中心的光环，每次脉冲对每只怪物只命中一次
func firePulse(w *World, wi *WeaponInstance) {
	e := w.newEffect(wi, w.Player.Position)
	e.FollowPlayer = true
	e.HitIntervalMs = 0
	w.addEffect(e)
}

// fireBoomerang 前半段沿固定角度飞出，后半段飞回玩家当前位置
func fireBoomerang(w *World, wi *WeaponInstance) {
	ps := w.Player.Stats
	n := wi.Amount(ps)
	base := w.aimAngle(wi.Def.Params.Targeting, wi.Def.Params.Range)
	speed := wi.Speed(ps)
	spread := deg2rad(wi.Def.Params.SpreadDeg)
	if spread == 0 {
		spread = deg2rad(defaultBoomerangSpreadDeg)
	}

	for i := 0; i < n; i++ {
		angle := base + (float64(i)-float64(n-1)/2)*spread
		e := w.newEffect(wi, w.Player.Position)
		e.Velocity = models.FromAngle(angle).Scale(speed)
		w.addEffect(e)
	}
}

// updateEffects 推进攻击效果的运动和寿命
func (w *World) updateEffects(deltaMs float64) {
	sec := deltaMs / 1000
	player := w.Player.Position

	w.effects.each(func(e *models.AttackEffectEntity) bool {
		e.AgeMs += deltaMs

		switch e.Archetype {
		case models.ArchetypeOrbit:
			e.OrbitAngle += e.OrbitSpeed * deltaMs
			e.Position = player.Add(models.FromAngle(e.OrbitAngle).Scale(e.OrbitRadius))

		case models.ArchetypePulse:
			e.Position = player

		case models.ArchetypeHoming:
			w.steerHoming(e, deltaMs)
			e.Position = e.Position.Add(e.Velocity.Scale(sec))

		case models.ArchetypeBouncing:
			e.Position = e.Position.Add(e.Velocity.Scale(sec))
			w.bounce(e)

		case models.ArchetypeTargetedArea:
			if e.Phase == models.PhaseTraveling {
				t := e.AgeMs / e.TravelMs
				if t < 1 {
					e.Position = e.Origin.Add(e.Destination.Sub(e.Origin).Scale(t))
					return true
				}
				e.Position = e.Destination
				e.Phase = models.PhaseActive
				e.AgeMs = 0
			}

		case models.ArchetypeBoomerang:
			if e.AgeMs < e.DurationMs/2 {
				e.Position = e.Position.Add(e.Velocity.Scale(sec))
				break
			}
			e.Phase = models.PhaseReturning
			remaining := e.DurationMs - e.AgeMs
			if remaining <= 0 {
				e.Position = player
				break
			}
			e.Position = e.Position.Add(player.Sub(e.Position).Scale(math.Min(1, deltaMs/remaining)))

		default:
			e.Position = e.Position.Add(e.Velocity.Scale(sec))
		}

		if !e.Persistent && e.AgeMs >= e.DurationMs {
			e.MarkRemoved()
		}
		return true
	})
}

func (w *World) steerHoming(e *models.AttackEffectEntity, deltaMs float64) {
	if e.RetargetMs <= 0 {
		return
	}
	e.RetargetTimerMs -= deltaMs
	if e.RetargetTimerMs > 0 {
		return
	}
	e.RetargetTimerMs = e.RetargetMs

	target, ok := w.monsters.get(e.TargetHandle)
	if !ok || !target.IsAlive {
		if target, ok = w.nearestMonster(e.Position, 0); !ok {
			return
		}
		e.TargetHandle = target.Handle
	}
	if dir := target.Position.Sub(e.Position).Normalize(); dir.Len() > 0 {
		e.Velocity = dir.Scale(e.Speed)
	}
}

// bounce 在以玩家为中心、视口外扩边距的矩形内弹性反射
func (w *World) bounce(e *models.AttackEffectEntity) {
	halfW := w.cfg.World.ViewportWidth/2 + w.cfg.World.BouncePadding
	halfH := w.cfg.World.ViewportHeight/2 + w.cfg.World.BouncePadding
	c := w.Player.Position

	if e.Position.X < c.X-halfW {
		e.Position.X = c.X - halfW
		e.Velocity.X = math.Abs(e.Velocity.X)
	} else if e.Position.X > c.X+halfW {
		e.Position.X = c.X + halfW
		e.Velocity.X = -math.Abs(e.Velocity.X)
	}
	if e.Position.Y < c.Y-halfH {
		e.Position.Y = c.Y - halfH
		e.Velocity.Y = math.Abs(e.Velocity.Y)
	} else if e.Position.Y > c.Y+halfH {
		e.Position.Y = c.Y + halfH
		e.Velocity.Y = -math.Abs(e.Velocity.Y)
	}
}
