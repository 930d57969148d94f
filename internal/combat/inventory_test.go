package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

func newTestInventory() (*Inventory, *models.PlayerEntity) {
	cfg := config.DefaultGameConfig()
	player := models.NewPlayerEntity(cfg.Player.MaxHP, cfg.Player.Speed, cfg.Player.PickupRange, cfg.Player.Radius)
	return NewInventory(catalog.Default(), player, cfg.Limits), player
}

func TestWeaponCapEnforced(t *testing.T) {
	inv, _ := newTestInventory()
	all := catalog.Default().Weapons()

	for i := 0; i < 6; i++ {
		require.True(t, inv.AddWeapon(all[i].ID))
	}
	before := inv.WeaponStates()

	assert.False(t, inv.AddWeapon(all[6].ID))
	assert.Equal(t, before, inv.WeaponStates())
	assert.False(t, inv.HasWeaponSlot())

	// 已持有的武器仍可通过 add 升级
	assert.True(t, inv.AddWeapon(all[0].ID))
	w, _ := inv.Weapon(all[0].ID)
	assert.Equal(t, 2, w.Level)
}

func TestPassiveCapEnforced(t *testing.T) {
	inv, _ := newTestInventory()
	all := catalog.Default().Passives()

	for i := 0; i < 6; i++ {
		require.True(t, inv.AddPassive(all[i].ID))
	}
	assert.False(t, inv.AddPassive(all[6].ID))
	assert.Len(t, inv.Passives(), 6)
}

func TestAddOnOwnedEqualsUpgrade(t *testing.T) {
	a, _ := newTestInventory()
	b, _ := newTestInventory()

	require.True(t, a.AddWeapon("cross"))
	require.True(t, b.AddWeapon("cross"))

	for i := 0; i < 10; i++ {
		assert.Equal(t, b.UpgradeWeapon("cross"), a.AddWeapon("cross"))
		assert.Equal(t, b.WeaponStates(), a.WeaponStates())
	}

	require.True(t, a.AddPassive("wings"))
	require.True(t, b.AddPassive("wings"))
	for i := 0; i < 6; i++ {
		assert.Equal(t, b.UpgradePassive("wings"), a.AddPassive("wings"))
		assert.Equal(t, b.PassiveStates(), a.PassiveStates())
	}
}

func TestLevelNeverExceedsMax(t *testing.T) {
	inv, _ := newTestInventory()
	require.True(t, inv.AddWeapon("whip"))
	require.True(t, inv.AddPassive("armor"))

	for i := 0; i < 20; i++ {
		inv.UpgradeWeapon("whip")
		inv.UpgradePassive("armor")
	}

	w, _ := inv.Weapon("whip")
	p, _ := inv.Passive("armor")
	assert.Equal(t, w.Def.MaxLevel, w.Level)
	assert.Equal(t, p.Def.MaxLevel, p.Level)
}

func TestUnknownIDsFailQuietly(t *testing.T) {
	inv, _ := newTestInventory()

	assert.False(t, inv.AddWeapon("no_such_weapon"))
	assert.False(t, inv.AddPassive("no_such_passive"))
	assert.False(t, inv.UpgradeWeapon("magic_bolt"))
	assert.False(t, inv.UpgradePassive("spinach"))
	assert.False(t, inv.Apply(models.UpgradeChoice{Kind: "skill", ID: "magic_bolt"}))
	assert.Empty(t, inv.Weapons())
	assert.Empty(t, inv.Passives())
}

func TestPassiveAppliesStatPerLevel(t *testing.T) {
	inv, player := newTestInventory()

	require.True(t, inv.AddPassive("spinach"))
	assert.InDelta(t, 1.1, player.Stats.DamageMultiplier, 1e-9)
	require.True(t, inv.UpgradePassive("spinach"))
	assert.InDelta(t, 1.2, player.Stats.DamageMultiplier, 1e-9)

	require.True(t, inv.AddPassive("hollow_heart"))
	assert.InDelta(t, 120, player.MaxHP, 1e-9)
	assert.InDelta(t, 120, player.HP, 1e-9)

	require.True(t, inv.AddPassive("duplicator"))
	assert.Equal(t, 1.0, player.Stats.AmountBonus)
}

func TestEvolutionRequiresBothMaxed(t *testing.T) {
	inv, _ := newTestInventory()
	require.True(t, inv.AddWeapon("magic_bolt"))
	for inv.UpgradeWeapon("magic_bolt") {
	}
	assert.False(t, inv.CanEvolve("magic_bolt"))

	require.True(t, inv.AddPassive("empty_tome"))
	assert.False(t, inv.CanEvolve("magic_bolt"))
	for inv.UpgradePassive("empty_tome") {
	}
	require.True(t, inv.CanEvolve("magic_bolt"))

	ok := inv.Apply(models.UpgradeChoice{Kind: models.UpgradeWeapon, ID: "magic_bolt", IsEvolution: true})
	require.True(t, ok)

	w, _ := inv.Weapon("magic_bolt")
	assert.True(t, w.IsEvolved)
	assert.Equal(t, "magic_bolt", w.ID())
	assert.Equal(t, "神圣飞弹", w.DisplayName())
	assert.Len(t, inv.Weapons(), 1)
	assert.False(t, inv.CanEvolve("magic_bolt"))
	assert.False(t, inv.EvolveWeapon("magic_bolt"))
}

func TestWeaponWithoutPairCannotEvolve(t *testing.T) {
	inv, _ := newTestInventory()
	require.True(t, inv.AddWeapon("frost_shard"))
	for inv.UpgradeWeapon("frost_shard") {
	}
	assert.False(t, inv.CanEvolve("frost_shard"))
}
