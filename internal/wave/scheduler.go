// scheduler.go

package wave

import (
	"math"
	"math/rand"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// Spawner 接收刷怪请求的一方
type Spawner interface {
	SpawnMonster(spec models.MonsterSpec, pos models.Vector2D) *models.MonsterEntity
}

// 各档位的1波基础数值
var tierBase = map[models.MonsterTier]models.MonsterSpec{
	models.TierBasic: {Tier: models.TierBasic, HP: 10, Damage: 5, Speed: 60, Radius: 12, XPValue: 1, ScoreValue: 10},
	models.TierFast:  {Tier: models.TierFast, HP: 6, Damage: 4, Speed: 110, Radius: 10, XPValue: 2, ScoreValue: 15},
	models.TierTank:  {Tier: models.TierTank, HP: 40, Damage: 10, Speed: 40, Radius: 20, XPValue: 5, ScoreValue: 30},
	models.TierBoss:  {Tier: models.TierBoss, HP: 400, Damage: 15, Speed: 50, Radius: 40, XPValue: 50, ScoreValue: 500, HazardCooldownMs: 2000},
}

// 档位解锁波次与权重
var tierUnlocks = []struct {
	tier   models.MonsterTier
	wave   int
	weight int
}{
	{models.TierBasic, 1, 60},
	{models.TierFast, 3, 25},
	{models.TierTank, 5, 15},
}

// Result 单次推进的结果
type Result struct {
	WaveChanged   bool
	Wave          int
	BossWave      bool
	Spawned       int
	BossesSpawned int
}

// Scheduler 波次与刷怪调度，只按模拟时间推进
type Scheduler struct {
	cfg   config.WaveConfig
	world config.WorldConfig
	rng   *rand.Rand

	wave          int
	elapsedMs     float64
	waveElapsedMs float64
	spawnTimerMs  float64

	// 待出场首领的剩余延迟
	pendingBosses []float64
}

// NewScheduler 从第1波开始
func NewScheduler(cfg config.WaveConfig, world config.WorldConfig, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		world: world,
		rng:   rng,
		wave:  1,
	}
}

// Wave 当前波次
func (s *Scheduler) Wave() int {
	return s.wave
}

// ElapsedMs 累计模拟时间
func (s *Scheduler) ElapsedMs() float64 {
	return s.elapsedMs
}

// PendingBosses 等待出场的首领数量
func (s *Scheduler) PendingBosses() int {
	return len(s.pendingBosses)
}

// SpawnInterval 当前刷怪间隔 max(min, base * multiplier^(wave-1))
func (s *Scheduler) SpawnInterval() float64 {
	interval := s.cfg.BaseSpawnIntervalMs * math.Pow(s.cfg.SpawnRateMultiplier, float64(s.wave-1))
	return math.Max(s.cfg.MinSpawnIntervalMs, interval)
}

// SpawnDistance 刷怪距离：视口对角线的一半加边距，保证在屏幕外
func (s *Scheduler) SpawnDistance() float64 {
	return math.Hypot(s.world.ViewportWidth, s.world.ViewportHeight)/2 + s.cfg.SpawnPadding
}

// IsBossWave 是否首领波
func (s *Scheduler) IsBossWave(wave int) bool {
	return s.cfg.BossEvery > 0 && wave%s.cfg.BossEvery == 0
}

// Update 推进调度，center 为玩家当前位置
func (s *Scheduler) Update(deltaMs float64, center models.Vector2D, sp Spawner) Result {
	s.elapsedMs += deltaMs
	s.waveElapsedMs += deltaMs

	res := Result{Wave: s.wave}
	for s.waveElapsedMs >= s.cfg.DurationMs {
		s.waveElapsedMs -= s.cfg.DurationMs
		s.wave++
		res.WaveChanged = true
		res.Wave = s.wave
		if s.IsBossWave(s.wave) {
			res.BossWave = true
			s.scheduleBosses(s.wave / s.cfg.BossEvery)
		}
	}

	s.spawnTimerMs += deltaMs
	interval := s.SpawnInterval()
	for s.spawnTimerMs >= interval {
		s.spawnTimerMs -= interval
		sp.SpawnMonster(s.SpecFor(s.pickTier()), s.spawnPoint(center))
		res.Spawned++
	}

	kept := s.pendingBosses[:0]
	for _, delay := range s.pendingBosses {
		delay -= deltaMs
		if delay <= 0 {
			sp.SpawnMonster(s.SpecFor(models.TierBoss), s.spawnPoint(center))
			res.BossesSpawned++
			continue
		}
		kept = append(kept, delay)
	}
	s.pendingBosses = kept

	return res
}

// scheduleBosses 首领依次错开出场，第一只立即出场
func (s *Scheduler) scheduleBosses(count int) {
	for i := 0; i < count; i++ {
		s.pendingBosses = append(s.pendingBosses, float64(i)*s.cfg.BossStaggerMs)
	}
}

// SpecFor 按当前波次缩放档位数值
func (s *Scheduler) SpecFor(tier models.MonsterTier) models.MonsterSpec {
	spec, ok := tierBase[tier]
	if !ok {
		spec = tierBase[models.TierBasic]
	}
	scale := 1 + s.cfg.StatGrowthPerWave*float64(s.wave-1)
	spec.HP *= scale
	spec.Damage *= scale
	return spec
}

func (s *Scheduler) pickTier() models.MonsterTier {
	total := 0
	for _, u := range tierUnlocks {
		if s.wave >= u.wave {
			total += u.weight
		}
	}
	roll := s.rng.Intn(total)
	for _, u := range tierUnlocks {
		if s.wave < u.wave {
			continue
		}
		if roll < u.weight {
			return u.tier
		}
		roll -= u.weight
	}
	return models.TierBasic
}

func (s *Scheduler) spawnPoint(center models.Vector2D) models.Vector2D {
	angle := s.rng.Float64() * 2 * math.Pi
	return center.Add(models.FromAngle(angle).Scale(s.SpawnDistance()))
}
