package progression

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/combat"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

func newTestEngine(seed int64) *Engine {
	cfg := config.DefaultGameConfig()
	return NewEngine(cfg.XP, cfg.Limits, rand.New(rand.NewSource(seed)))
}

func newTestInventory() *combat.Inventory {
	cfg := config.DefaultGameConfig()
	player := models.NewPlayerEntity(cfg.Player.MaxHP, cfg.Player.Speed, cfg.Player.PickupRange, cfg.Player.Radius)
	return combat.NewInventory(catalog.Default(), player, cfg.Limits)
}

func TestXPCurve(t *testing.T) {
	e := newTestEngine(1)

	assert.Equal(t, 10, e.XPToNext(1))
	assert.Equal(t, 12, e.XPToNext(2))
	assert.Equal(t, 14, e.XPToNext(3))
	assert.Equal(t, 17, e.XPToNext(4))
}

func TestGainXPAppliesGrowthAndFloors(t *testing.T) {
	e := newTestEngine(1)

	assert.Zero(t, e.GainXP(3, 0.5))
	assert.Equal(t, 4, e.XP)

	assert.Zero(t, e.GainXP(0.4, 0))
	assert.Equal(t, 4, e.XP)
}

func TestGainXPCarriesOverflowAcrossLevels(t *testing.T) {
	e := newTestEngine(1)

	gained := e.GainXP(25, 0)

	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, e.Level)
	assert.Equal(t, 3, e.XP)
}

func TestGainXPStopsAtMaxLevel(t *testing.T) {
	cfg := config.DefaultGameConfig()
	cfg.XP.MaxLevel = 2
	e := NewEngine(cfg.XP, cfg.Limits, rand.New(rand.NewSource(1)))

	assert.Equal(t, 1, e.GainXP(1000, 0))
	assert.Equal(t, 2, e.Level)
	assert.Equal(t, e.Threshold(), e.XP)
}

func TestRevertLevelHalvesThreshold(t *testing.T) {
	e := newTestEngine(1)
	e.Level = 5
	e.XP = 3

	e.RevertLevel()

	assert.Equal(t, 4, e.Level)
	assert.Equal(t, 17, e.Threshold())
	assert.Equal(t, 8, e.XP)
}

func TestRankChoicesOrdering(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		cands := []models.UpgradeChoice{
			{ID: "new", Priority: 0},
			{ID: "passive", Priority: 1},
			{ID: "w1", Priority: 2},
			{ID: "evo", Priority: 3},
			{ID: "w2", Priority: 2},
		}
		got := rankChoices(cands, 5, rand.New(rand.NewSource(seed)))

		require.Len(t, got, 5)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Priority, got[i].Priority)
		}
		assert.Equal(t, "evo", got[0].ID)
	}
}

func TestRankChoicesShufflesWithinPriority(t *testing.T) {
	seen := map[string]bool{}
	for seed := int64(0); seed < 50; seed++ {
		cands := []models.UpgradeChoice{{ID: "a", Priority: 2}, {ID: "b", Priority: 2}}
		got := rankChoices(cands, 1, rand.New(rand.NewSource(seed)))
		seen[got[0].ID] = true
	}
	assert.Len(t, seen, 2)
}

func TestGenerateChoicesPrefersEvolution(t *testing.T) {
	e := newTestEngine(7)
	inv := newTestInventory()

	require.True(t, inv.AddWeapon("magic_bolt"))
	for inv.UpgradeWeapon("magic_bolt") {
	}
	require.True(t, inv.AddPassive("empty_tome"))
	for inv.UpgradePassive("empty_tome") {
	}
	require.True(t, inv.AddWeapon("whip"))
	require.True(t, inv.AddPassive("armor"))

	got := e.GenerateChoices(inv, 3)

	require.Len(t, got, 3)
	assert.True(t, got[0].IsEvolution)
	assert.Equal(t, "magic_bolt", got[0].ID)
	assert.Equal(t, "whip", got[1].ID)
	assert.Equal(t, PriorityWeaponUpgrade, got[1].Priority)
	assert.Equal(t, "armor", got[2].ID)
	assert.Equal(t, PriorityPassiveUpgrade, got[2].Priority)
}

func TestGenerateChoicesSkipsNewWhenSlotsFull(t *testing.T) {
	e := newTestEngine(3)
	inv := newTestInventory()
	for _, def := range catalog.Default().Weapons()[:6] {
		require.True(t, inv.AddWeapon(def.ID))
		for inv.UpgradeWeapon(def.ID) {
		}
	}
	for _, def := range catalog.Default().Passives()[:6] {
		require.True(t, inv.AddPassive(def.ID))
		for inv.UpgradePassive(def.ID) {
		}
	}

	got := e.GenerateChoices(inv, 3)

	for _, c := range got {
		assert.False(t, c.IsNew)
		assert.True(t, c.IsEvolution)
	}
}

func TestGateHappyPath(t *testing.T) {
	e := newTestEngine(1)
	g := NewGate(e, 500)
	e.GainXP(10, 0)
	require.Equal(t, 2, e.Level)

	choices := []models.UpgradeChoice{{Kind: models.UpgradeWeapon, ID: "whip", IsNew: true}}
	require.NoError(t, g.Open(models.LevelUpProposal{Level: e.Level, Choices: choices, HasQuiz: true}))
	assert.True(t, g.Blocking())
	assert.ErrorIs(t, g.Open(models.LevelUpProposal{}), ErrGateBusy)

	_, err := g.SelectUpgrade(models.UpgradeWeapon, "whip")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	state, err := g.Resolve(true)
	require.NoError(t, err)
	assert.Equal(t, GateConfirmed, state)
	assert.Equal(t, 2, e.Level)
	assert.True(t, g.Blocking())

	_, err = g.SelectUpgrade(models.UpgradeWeapon, "cross")
	assert.True(t, errors.Is(err, ErrUnknownChoice))

	choice, err := g.SelectUpgrade(models.UpgradeWeapon, "whip")
	require.NoError(t, err)
	assert.Equal(t, "whip", choice.ID)
	assert.Equal(t, GateIdle, g.State())
	assert.Nil(t, g.Proposal())
}

func TestGateMissPath(t *testing.T) {
	e := newTestEngine(1)
	g := NewGate(e, 500)
	e.Level = 4
	e.XP = 16
	require.Equal(t, 1, e.GainXP(1, 0))
	require.Equal(t, 5, e.Level)

	require.NoError(t, g.Open(models.LevelUpProposal{Level: 5, HasQuiz: true, Choices: []models.UpgradeChoice{{ID: "x"}}}))
	state, err := g.Resolve(false)
	require.NoError(t, err)
	assert.Equal(t, GateReverted, state)

	assert.Equal(t, 4, e.Level)
	assert.Equal(t, 17, e.Threshold())
	assert.Equal(t, 8, e.XP)
	assert.Empty(t, g.Proposal().Choices)

	_, err = g.SelectUpgrade(models.UpgradeWeapon, "x")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	assert.False(t, g.Advance(300))
	assert.True(t, g.Blocking())
	assert.True(t, g.Advance(200))
	assert.Equal(t, GateIdle, g.State())
	assert.False(t, g.Advance(1000))
}

func TestGateDoubleLevelUpRevertsOnlyOne(t *testing.T) {
	e := newTestEngine(1)
	g := NewGate(e, 500)

	require.Equal(t, 2, e.GainXP(22, 0))
	require.Equal(t, 3, e.Level)

	require.NoError(t, g.Open(models.LevelUpProposal{Level: e.Level, HasQuiz: true}))
	_, err := g.Resolve(false)
	require.NoError(t, err)

	assert.Equal(t, 2, e.Level)
	assert.Equal(t, 6, e.XP)
}

func TestGateConfirmWithoutQuiz(t *testing.T) {
	e := newTestEngine(1)
	g := NewGate(e, 500)

	assert.ErrorIs(t, g.ConfirmWithoutQuiz(), ErrNotPending)
	require.NoError(t, g.Open(models.LevelUpProposal{Level: 2, HasQuiz: true}))
	require.NoError(t, g.ConfirmWithoutQuiz())

	assert.Equal(t, GateConfirmed, g.State())
	assert.False(t, g.Proposal().HasQuiz)
	_, err := g.Resolve(true)
	assert.ErrorIs(t, err, ErrNotPending)

	require.NoError(t, g.Dismiss())
	assert.Equal(t, GateIdle, g.State())
}
