package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Weapons())
	require.NotEmpty(t, c.Passives())
	assert.Same(t, c, Default())

	w, ok := c.Weapon("magic_bolt")
	require.True(t, ok)
	assert.Equal(t, models.ArchetypeDirectional, w.Archetype)
	assert.True(t, w.CanEvolve())

	stats := w.StatsAt(3)
	assert.Equal(t, 2, stats.Amount)
	assert.Equal(t, 1000.0, stats.CooldownMs)

	_, ok = c.Weapon("unknown")
	assert.False(t, ok)
}

func TestDefaultCatalogConsistency(t *testing.T) {
	c := Default()
	for _, w := range c.Weapons() {
		assert.Len(t, w.LevelDeltas, w.MaxLevel-1, w.ID)
		if w.CanEvolve() {
			_, ok := c.Passive(w.EvolutionPassive)
			assert.True(t, ok, "%s 的进化被动 %s", w.ID, w.EvolutionPassive)
			assert.NotEmpty(t, w.EvolvedID, w.ID)
		}
	}
	for _, p := range c.Passives() {
		assert.GreaterOrEqual(t, p.MaxLevel, 1, p.ID)
	}
}

func TestNewRejectsInvalidData(t *testing.T) {
	wings := passive("wings", "翅膀", "", models.StatMoveSpeed, 10, true)
	weapon := func(id string, maxLevel, deltas int, evo string) *models.WeaponDef {
		return &models.WeaponDef{ID: id, MaxLevel: maxLevel, LevelDeltas: make([]models.WeaponStats, deltas), EvolutionPassive: evo}
	}

	_, err := New([]*models.WeaponDef{weapon("a", 3, 2, "wings")}, []*models.PassiveDef{wings})
	assert.NoError(t, err)

	tests := []struct {
		name     string
		weapons  []*models.WeaponDef
		passives []*models.PassiveDef
	}{
		{"delta count", []*models.WeaponDef{weapon("a", 3, 1, "")}, nil},
		{"zero level", []*models.WeaponDef{weapon("a", 0, 0, "")}, nil},
		{"missing evolution passive", []*models.WeaponDef{weapon("a", 2, 1, "crown")}, []*models.PassiveDef{wings}},
		{"duplicate weapon", []*models.WeaponDef{weapon("a", 1, 0, ""), weapon("a", 1, 0, "")}, nil},
		{"duplicate passive", nil, []*models.PassiveDef{wings, wings}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.weapons, tt.passives)
			assert.Error(t, err)
		})
	}
}
