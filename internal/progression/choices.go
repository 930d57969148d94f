// choices.go

package progression

import (
	"math/rand"
	"sort"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/combat"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// 候选优先级
const (
	PriorityEvolution      = 3
	PriorityWeaponUpgrade  = 2
	PriorityPassiveUpgrade = 1
	PriorityNew            = 0
)

// GenerateChoices 生成升级选项：进化 > 武器升级 > 被动升级 > 新武器/新被动
func (e *Engine) GenerateChoices(inv *combat.Inventory, count int) []models.UpgradeChoice {
	return rankChoices(candidates(inv), count, e.rng)
}

func candidates(inv *combat.Inventory) []models.UpgradeChoice {
	var out []models.UpgradeChoice

	for _, wi := range inv.Weapons() {
		switch {
		case inv.CanEvolve(wi.ID()):
			out = append(out, models.UpgradeChoice{
				Kind:         models.UpgradeWeapon,
				ID:           wi.ID(),
				Name:         wi.Def.EvolvedName,
				IsEvolution:  true,
				Priority:     PriorityEvolution,
				CurrentLevel: wi.Level,
				NextLevel:    wi.Level,
			})
		case !wi.IsMaxLevel():
			out = append(out, models.UpgradeChoice{
				Kind:         models.UpgradeWeapon,
				ID:           wi.ID(),
				Name:         wi.DisplayName(),
				Priority:     PriorityWeaponUpgrade,
				CurrentLevel: wi.Level,
				NextLevel:    wi.Level + 1,
			})
		}
	}

	for _, pi := range inv.Passives() {
		if pi.IsMaxLevel() {
			continue
		}
		out = append(out, models.UpgradeChoice{
			Kind:         models.UpgradePassive,
			ID:           pi.Def.ID,
			Name:         pi.Def.Name,
			Priority:     PriorityPassiveUpgrade,
			CurrentLevel: pi.Level,
			NextLevel:    pi.Level + 1,
		})
	}

	cat := inv.Catalog()
	if inv.HasWeaponSlot() {
		for _, def := range cat.Weapons() {
			if _, owned := inv.Weapon(def.ID); owned {
				continue
			}
			out = append(out, models.UpgradeChoice{
				Kind:      models.UpgradeWeapon,
				ID:        def.ID,
				Name:      def.Name,
				IsNew:     true,
				Priority:  PriorityNew,
				NextLevel: 1,
			})
		}
	}
	if inv.HasPassiveSlot() {
		for _, def := range cat.Passives() {
			if _, owned := inv.Passive(def.ID); owned {
				continue
			}
			out = append(out, models.UpgradeChoice{
				Kind:      models.UpgradePassive,
				ID:        def.ID,
				Name:      def.Name,
				IsNew:     true,
				Priority:  PriorityNew,
				NextLevel: 1,
			})
		}
	}

	return out
}

// rankChoices 先打乱再按优先级稳定降序，同优先级内顺序随机
func rankChoices(cands []models.UpgradeChoice, count int, rng *rand.Rand) []models.UpgradeChoice {
	rng.Shuffle(len(cands), func(i, j int) {
		cands[i], cands[j] = cands[j], cands[i]
	})
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Priority > cands[j].Priority
	})
	if count < len(cands) {
		cands = cands[:count]
	}
	return cands
}
