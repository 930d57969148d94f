package combat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

const frameMs = 16

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(config.DefaultGameConfig(), catalog.Default(), rand.New(rand.NewSource(1)))
}

func basicSpec() models.MonsterSpec {
	return models.MonsterSpec{
		Tier:       models.TierBasic,
		HP:         10,
		Damage:     50,
		Speed:      0,
		Radius:     12,
		XPValue:    3,
		ScoreValue: 10,
	}
}

func TestContactDealsNoDamage(t *testing.T) {
	w := newTestWorld(t)
	spec := basicSpec()
	spec.Speed = 80
	w.SpawnMonster(spec, w.Player.Position)

	hp := w.Player.HP
	for i := 0; i < 10; i++ {
		res := w.Tick(frameMs)
		assert.Zero(t, res.DamageTaken)
	}

	assert.Equal(t, hp, w.Player.HP)
	assert.True(t, w.Player.IsAlive)
}

func TestSweepRemovesFarEntities(t *testing.T) {
	w := newTestWorld(t)
	far := w.SpawnMonster(basicSpec(), models.Vector2D{X: 2001})
	near := w.SpawnMonster(basicSpec(), models.Vector2D{X: 1999})
	w.SpawnPickup(models.PickupXPGem, 1, models.Vector2D{Y: -2500})

	removed := w.Sweep()
	w.Compact()

	assert.Equal(t, 2, removed)
	_, ok := w.Monster(far.Handle)
	assert.False(t, ok)
	_, ok = w.Monster(near.Handle)
	assert.True(t, ok)
	assert.Empty(t, w.Pickups())
}

func TestSimultaneousHitsCountOneKill(t *testing.T) {
	w := newTestWorld(t)
	m := w.SpawnMonster(basicSpec(), models.Vector2D{X: 300})

	for i := 0; i < 2; i++ {
		w.addEffect(&models.AttackEffectEntity{
			BaseEntity: models.NewBaseEntity(models.EntityEffect, m.Position),
			Archetype:  models.ArchetypeDirectional,
			Damage:     15,
			Pierce:     1,
			Radius:     10,
			DurationMs: 1000,
		})
	}

	res := w.Tick(1)

	require.Len(t, res.Kills, 1)
	assert.Equal(t, m.ID, res.Kills[0].MonsterID)
	assert.Equal(t, 10, res.Kills[0].Score)
	assert.Len(t, w.Pickups(), 1)
	assert.False(t, m.IsAlive)
	assert.Zero(t, m.HP)

	res = w.Tick(1)
	assert.Empty(t, res.Kills)
	assert.Len(t, w.Pickups(), 1)
}

func TestDeadMonsterRemovedAfterDelay(t *testing.T) {
	w := newTestWorld(t)
	m := w.SpawnMonster(basicSpec(), models.Vector2D{X: 300})
	require.True(t, m.ApplyDamage(100))
	w.onMonsterKilled(m)

	w.Tick(200)
	_, ok := w.Monster(m.Handle)
	assert.True(t, ok)

	w.Tick(150)
	_, ok = w.Monster(m.Handle)
	assert.False(t, ok)
}

func TestMonsterPursuesPlayer(t *testing.T) {
	w := newTestWorld(t)
	spec := basicSpec()
	spec.Speed = 100
	m := w.SpawnMonster(spec, models.Vector2D{X: 100})

	w.Tick(100)

	assert.InDelta(t, 90, m.Position.X, 1e-9)
	assert.InDelta(t, 0, m.Position.Y, 1e-9)
}

func TestPierceExhaustionRemovesEffect(t *testing.T) {
	w := newTestWorld(t)
	spec := basicSpec()
	spec.HP = 1000
	a := w.SpawnMonster(spec, models.Vector2D{X: 300})
	w.SpawnMonster(spec, models.Vector2D{X: 300, Y: 5})

	e := w.addEffect(&models.AttackEffectEntity{
		BaseEntity: models.NewBaseEntity(models.EntityEffect, a.Position),
		Archetype:  models.ArchetypeDirectional,
		Damage:     5,
		Pierce:     1,
		Radius:     10,
		DurationMs: 1000,
	})

	w.Tick(1)

	_, ok := w.Effect(e.Handle)
	assert.False(t, ok)

	damaged := 0
	for _, m := range w.Monsters() {
		if m.HP < m.MaxHP {
			damaged++
		}
	}
	assert.Equal(t, 1, damaged)
}

func TestHazardDamageRespectsInvincibility(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 2; i++ {
		w.addEffect(&models.AttackEffectEntity{
			BaseEntity: models.NewBaseEntity(models.EntityEffect, w.Player.Position),
			Archetype:  models.ArchetypeHazard,
			Hostile:    true,
			Damage:     10,
			Pierce:     1,
			Radius:     10,
			DurationMs: 1000,
		})
	}

	res := w.Tick(frameMs)

	assert.Equal(t, 10.0, res.DamageTaken)
	assert.Equal(t, 90.0, w.Player.HP)
	assert.True(t, w.Player.Invincible)
}

func TestBossFiresHazard(t *testing.T) {
	w := newTestWorld(t)
	spec := basicSpec()
	spec.Tier = models.TierBoss
	spec.HazardCooldownMs = 100
	w.SpawnMonster(spec, models.Vector2D{X: 400})

	w.Tick(100)

	hostile := 0
	for _, e := range w.Effects() {
		if e.Hostile {
			hostile++
			assert.Less(t, e.Velocity.X, 0.0)
		}
	}
	assert.Equal(t, 1, hostile)
}

func TestPlayerDeathReported(t *testing.T) {
	w := newTestWorld(t)
	w.addEffect(&models.AttackEffectEntity{
		BaseEntity: models.NewBaseEntity(models.EntityEffect, w.Player.Position),
		Archetype:  models.ArchetypeHazard,
		Hostile:    true,
		Damage:     1000,
		Pierce:     1,
		Radius:     10,
		DurationMs: 1000,
	})

	res := w.Tick(frameMs)

	assert.True(t, res.PlayerDied)
	assert.Zero(t, w.Player.HP)
	assert.Equal(t, TickResult{PlayerDied: true}, w.Tick(frameMs))
}

func TestKnockbackSparesBoss(t *testing.T) {
	tests := []struct {
		tier models.MonsterTier
		want float64
	}{
		{models.TierBasic, 312},
		{models.TierBoss, 300},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			w := newTestWorld(t)
			spec := basicSpec()
			spec.HP = 1000
			spec.Tier = tt.tier
			m := w.SpawnMonster(spec, models.Vector2D{X: 300})
			w.addEffect(&models.AttackEffectEntity{
				BaseEntity: models.NewBaseEntity(models.EntityEffect, models.Vector2D{X: 290}),
				Archetype:  models.ArchetypeDirectional,
				Damage:     1,
				Pierce:     -1,
				Radius:     10,
				Knockback:  12,
				DurationMs: 1000,
			})

			w.Tick(1)

			assert.Equal(t, 999.0, m.HP)
			assert.InDelta(t, tt.want, m.Position.X, 1e-9)
			assert.InDelta(t, 0, m.Position.Y, 1e-9)
		})
	}
}

func TestDropKindScalesWithLuck(t *testing.T) {
	tests := []struct {
		name         string
		magnet, heal float64
		luck         float64
		want         models.PickupKind
		wantValue    float64
	}{
		{"magnet", 0.5, 0, 1, models.PickupMagnet, 0},
		{"health", 0, 0.5, 1, models.PickupHealth, 20},
		{"gem", 0, 0, 1, models.PickupXPGem, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			w.cfg.World.MagnetDropChance = tt.magnet
			w.cfg.World.HealthDropChance = tt.heal
			w.Player.Stats.Luck = tt.luck

			for i := 0; i < 20; i++ {
				w.onMonsterKilled(w.SpawnMonster(basicSpec(), models.Vector2D{X: float64(i)}))
			}

			pickups := w.Pickups()
			require.Len(t, pickups, 20)
			for _, pk := range pickups {
				assert.Equal(t, tt.want, pk.Kind)
				assert.Equal(t, tt.wantValue, pk.Value)
			}
		})
	}

	w := newTestWorld(t)
	w.cfg.World.MagnetDropChance = 0
	w.cfg.World.HealthDropChance = 0.5
	for i := 0; i < 200; i++ {
		w.onMonsterKilled(w.SpawnMonster(basicSpec(), models.Vector2D{X: float64(i)}))
	}
	kinds := map[models.PickupKind]int{}
	for _, pk := range w.Pickups() {
		kinds[pk.Kind]++
	}
	assert.Greater(t, kinds[models.PickupHealth], 0)
	assert.Greater(t, kinds[models.PickupXPGem], 0)
	assert.Zero(t, kinds[models.PickupMagnet])
}

func TestPickupAttractedAndCollected(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPickup(models.PickupXPGem, 5, models.Vector2D{X: 90})
	idle := w.SpawnPickup(models.PickupXPGem, 7, models.Vector2D{X: -150})

	total := 0.0
	for i := 0; i < 30; i++ {
		total += w.Tick(frameMs).XPCollected
	}

	assert.Equal(t, 5.0, total)
	remaining := w.Pickups()
	require.Len(t, remaining, 1)
	assert.Equal(t, idle.Handle, remaining[0].Handle)
	assert.False(t, idle.Collecting)
}

func TestGemValuesReportedSeparately(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPickup(models.PickupXPGem, 1, w.Player.Position)
	w.SpawnPickup(models.PickupXPGem, 3, w.Player.Position)

	res := w.Tick(frameMs)

	assert.ElementsMatch(t, []float64{1, 3}, res.XPGems)
	assert.Equal(t, 4.0, res.XPCollected)
	assert.Empty(t, w.Tick(frameMs).XPGems)
}

func TestMagnetPullsAllGems(t *testing.T) {
	w := newTestWorld(t)
	gem := w.SpawnPickup(models.PickupXPGem, 2, models.Vector2D{X: 800})
	w.SpawnPickup(models.PickupMagnet, 0, w.Player.Position)

	w.Tick(frameMs)

	assert.True(t, gem.Collecting)
}

func TestHealthOrbHealsClamped(t *testing.T) {
	w := newTestWorld(t)
	w.Player.HP = 95
	w.SpawnPickup(models.PickupHealth, 20, w.Player.Position)

	res := w.Tick(frameMs)

	assert.Equal(t, 100.0, w.Player.HP)
	assert.Equal(t, 5.0, res.Healed)
}

func TestJoystickOverridesKeyboard(t *testing.T) {
	w := newTestWorld(t)
	w.SetKeyboard(models.Vector2D{X: 1})
	w.SetJoystick(models.Vector2D{Y: 1})
	w.Tick(1000)

	assert.InDelta(t, 0, w.Player.Position.X, 1e-9)
	assert.InDelta(t, 200, w.Player.Position.Y, 1e-9)

	w2 := newTestWorld(t)
	w2.SetKeyboard(models.Vector2D{X: 1, Y: 1})
	w2.SetJoystick(models.Vector2D{X: 0.05})
	w2.Tick(1000)

	assert.InDelta(t, 200, w2.Player.Position.Len(), 1e-9)
	assert.InDelta(t, w2.Player.Position.X, w2.Player.Position.Y, 1e-9)
}

func TestRegenerationThroughTick(t *testing.T) {
	w := newTestWorld(t)
	w.Player.HP = 50
	w.Player.ApplyStat(models.StatRegen, 1, false)

	w.Tick(999)
	assert.Equal(t, 50.0, w.Player.HP)
	w.Tick(1)
	assert.Equal(t, 51.0, w.Player.HP)
}

func TestHPStaysWithinBounds(t *testing.T) {
	w := newTestWorld(t)
	w.Player.ApplyStat(models.StatRegen, 50, false)
	spec := basicSpec()
	spec.Tier = models.TierBoss
	spec.HazardCooldownMs = 50
	spec.Damage = 7
	for i := 0; i < 5; i++ {
		w.SpawnMonster(spec, models.Vector2D{X: float64(100 + 30*i), Y: float64(20 * i)})
	}

	for i := 0; i < 500 && w.Player.IsAlive; i++ {
		w.Tick(frameMs)
		require.GreaterOrEqual(t, w.Player.HP, 0.0)
		require.LessOrEqual(t, w.Player.HP, w.Player.MaxHP)
	}
}
