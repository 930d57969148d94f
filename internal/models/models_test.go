package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerTakeDamage(t *testing.T) {
	p := NewPlayerEntity(100, 200, 50, 16)
	p.Stats.Armor = 3

	assert.Equal(t, 7.0, p.TakeDamage(10, 500))
	assert.Equal(t, 93.0, p.HP)
	assert.True(t, p.Invincible)

	// 无敌帧内不受伤
	assert.Zero(t, p.TakeDamage(50, 500))
	p.TickInvincibility(499)
	assert.True(t, p.Invincible)
	p.TickInvincibility(1)
	assert.False(t, p.Invincible)

	// 护甲再高也至少扣1点
	p.Stats.Armor = 100
	assert.Equal(t, 1.0, p.TakeDamage(5, 0))
	assert.False(t, p.Invincible)
}

func TestPlayerDeathClampsHP(t *testing.T) {
	p := NewPlayerEntity(20, 200, 50, 16)
	dealt := p.TakeDamage(500, 0)

	assert.Equal(t, 20.0, dealt)
	assert.Zero(t, p.HP)
	assert.False(t, p.IsAlive)

	p.Heal(10)
	assert.Zero(t, p.HP, "死亡后不能回血")
}

func TestPlayerRegenerate(t *testing.T) {
	p := NewPlayerEntity(100, 200, 50, 16)
	p.HP = 50
	p.Stats.HPRegen = 2

	p.Regenerate(600)
	assert.Equal(t, 50.0, p.HP)
	p.Regenerate(600)
	assert.Equal(t, 52.0, p.HP)

	p.Regenerate(10000)
	assert.Equal(t, 72.0, p.HP)

	p.HP = 99
	p.Regenerate(1000)
	assert.Equal(t, 100.0, p.HP)
}

func TestPlayerApplyStat(t *testing.T) {
	p := NewPlayerEntity(100, 200, 50, 16)
	p.HP = 80

	require.True(t, p.ApplyStat(StatMaxHP, 20, true))
	assert.Equal(t, 120.0, p.MaxHP)
	assert.Equal(t, 100.0, p.HP)

	require.True(t, p.ApplyStat(StatMoveSpeed, 10, true))
	assert.InDelta(t, 220, p.MoveSpeed, 1e-9)

	require.True(t, p.ApplyStat(StatDamage, 10, true))
	assert.InDelta(t, 1.1, p.Stats.DamageMultiplier, 1e-9)

	require.True(t, p.ApplyStat(StatCooldown, -8, true))
	assert.InDelta(t, 0.92, p.Stats.CooldownMultiplier, 1e-9)

	require.True(t, p.ApplyStat(StatArmor, 1, false))
	assert.Equal(t, 1.0, p.Stats.Armor)

	require.True(t, p.ApplyStat(StatMagnet, 25, true))
	assert.InDelta(t, 62.5, p.EffectivePickupRadius(), 1e-9)

	assert.False(t, p.ApplyStat("charisma", 1, false))
}

func TestMonsterApplyDamage(t *testing.T) {
	m := NewMonsterEntity(MonsterSpec{Tier: TierBasic, HP: 10}, Vector2D{}, nil)

	assert.False(t, m.ApplyDamage(4))
	assert.True(t, m.ApplyDamage(6))
	assert.Zero(t, m.HP)
	assert.False(t, m.ApplyDamage(1), "已死亡的怪物不会再次死亡")
}

func TestEffectHitLog(t *testing.T) {
	e := &AttackEffectEntity{Pierce: 2}

	assert.True(t, e.CanHit(1, 0))
	e.RecordHit(1, 0)
	assert.False(t, e.CanHit(1, 100), "无命中间隔时同一怪物只命中一次")
	assert.Equal(t, 1, e.Pierce)

	e.RecordHit(2, 0)
	assert.Zero(t, e.Pierce)
	assert.False(t, e.CanHit(3, 0), "穿透耗尽")

	aura := &AttackEffectEntity{Pierce: -1, HitIntervalMs: 500}
	aura.RecordHit(1, 0)
	assert.Equal(t, -1, aura.Pierce)
	assert.False(t, aura.CanHit(1, 499))
	assert.True(t, aura.CanHit(1, 500))

	traveling := &AttackEffectEntity{Pierce: 1, Phase: PhaseTraveling}
	assert.False(t, traveling.CanHit(1, 0))
}

func TestQuizValidate(t *testing.T) {
	q := Quiz{Question: "?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2}
	require.NoError(t, q.Validate())
	assert.True(t, q.IsCorrect(2))
	assert.False(t, q.IsCorrect(-1))

	tests := []struct {
		name string
		quiz Quiz
	}{
		{"empty question", Quiz{Question: " ", Options: q.Options}},
		{"three options", Quiz{Question: "?", Options: []string{"a", "b", "c"}}},
		{"index too large", Quiz{Question: "?", Options: q.Options, CorrectIndex: 4}},
		{"negative index", Quiz{Question: "?", Options: q.Options, CorrectIndex: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.quiz.Validate())
		})
	}
}

func TestQuizSetValidate(t *testing.T) {
	good := Quiz{Question: "?", Options: []string{"a", "b", "c", "d"}}

	assert.NoError(t, (&QuizSet{Title: "t", Quizzes: []Quiz{good}}).Validate())
	assert.Error(t, (&QuizSet{Quizzes: []Quiz{good}}).Validate())
	assert.Error(t, (&QuizSet{Title: "t"}).Validate())

	err := (&QuizSet{Title: "t", Quizzes: []Quiz{good, {Question: "?"}}}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "第 2 题")
}

func TestQuizStatsAccuracy(t *testing.T) {
	assert.Zero(t, QuizStats{}.Accuracy())
	assert.Equal(t, 75.0, QuizStats{Answered: 4, Correct: 3}.Accuracy())
}

func TestFindChoice(t *testing.T) {
	p := &LevelUpProposal{Choices: []UpgradeChoice{
		{Kind: UpgradeWeapon, ID: "garlic"},
		{Kind: UpgradePassive, ID: "wings"},
	}}

	c, ok := p.FindChoice(UpgradePassive, "wings")
	assert.True(t, ok)
	assert.Equal(t, "wings", c.ID)

	_, ok = p.FindChoice(UpgradeWeapon, "wings")
	assert.False(t, ok)
}

func TestSortDigests(t *testing.T) {
	now := time.Now()
	digests := []PlayerDigest{
		{PlayerID: 1, Score: 100, SurvivalTime: 30, UpdatedAt: now},
		{PlayerID: 2, Score: 300, SurvivalTime: 10, UpdatedAt: now},
		{PlayerID: 3, Score: 100, SurvivalTime: 60, UpdatedAt: now},
	}
	SortDigests(digests)

	ids := []int64{digests[0].PlayerID, digests[1].PlayerID, digests[2].PlayerID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestWeaponStatsAt(t *testing.T) {
	def := &WeaponDef{
		MaxLevel:    3,
		Base:        WeaponStats{Damage: 10, Amount: 1},
		LevelDeltas: []WeaponStats{{Amount: 1}, {Damage: 5}},
	}

	assert.Equal(t, WeaponStats{Damage: 10, Amount: 1}, def.StatsAt(1))
	assert.Equal(t, WeaponStats{Damage: 10, Amount: 2}, def.StatsAt(2))
	assert.Equal(t, WeaponStats{Damage: 15, Amount: 2}, def.StatsAt(3))
	assert.Equal(t, def.StatsAt(3), def.StatsAt(10))
	assert.False(t, def.CanEvolve())
}

func TestVector(t *testing.T) {
	v := Vector2D{X: 3, Y: 4}
	assert.Equal(t, 5.0, v.Len())
	assert.InDelta(t, 1, v.Normalize().Len(), 1e-9)
	assert.Equal(t, Vector2D{}, Vector2D{}.Normalize())
	assert.Equal(t, 5.0, Vector2D{}.DistanceTo(v))
}
