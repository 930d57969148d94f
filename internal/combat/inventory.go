// inventory.go

package combat

import (
	"log"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// Inventory 玩家的武器与被动栏位，每个ID最多一个实例
type Inventory struct {
	cat    *catalog.Catalog
	player *models.PlayerEntity

	maxWeapons  int
	maxPassives int

	weapons  []*WeaponInstance
	passives []*PassiveInstance
}

// NewInventory 创建空栏位
func NewInventory(cat *catalog.Catalog, player *models.PlayerEntity, limits config.LimitsConfig) *Inventory {
	return &Inventory{
		cat:         cat,
		player:      player,
		maxWeapons:  limits.MaxWeapons,
		maxPassives: limits.MaxPassives,
	}
}

// Catalog 栏位使用的目录
func (inv *Inventory) Catalog() *catalog.Catalog {
	return inv.cat
}

// Weapons 按获得顺序返回武器
func (inv *Inventory) Weapons() []*WeaponInstance {
	return inv.weapons
}

// Passives 按获得顺序返回被动
func (inv *Inventory) Passives() []*PassiveInstance {
	return inv.passives
}

// Weapon 查找已持有的武器
func (inv *Inventory) Weapon(id string) (*WeaponInstance, bool) {
	for _, wi := range inv.weapons {
		if wi.Def.ID == id {
			return wi, true
		}
	}
	return nil, false
}

// Passive 查找已持有的被动
func (inv *Inventory) Passive(id string) (*PassiveInstance, bool) {
	for _, pi := range inv.passives {
		if pi.Def.ID == id {
			return pi, true
		}
	}
	return nil, false
}

// HasWeaponSlot 是否还能获得新武器
func (inv *Inventory) HasWeaponSlot() bool {
	return len(inv.weapons) < inv.maxWeapons
}

// HasPassiveSlot 是否还能获得新被动
func (inv *Inventory) HasPassiveSlot() bool {
	return len(inv.passives) < inv.maxPassives
}

// AddWeapon 获得武器，已持有时等同于升级
func (inv *Inventory) AddWeapon(id string) bool {
	if _, owned := inv.Weapon(id); owned {
		return inv.UpgradeWeapon(id)
	}
	def, ok := inv.cat.Weapon(id)
	if !ok {
		log.Printf("未知武器: %s", id)
		return false
	}
	if !inv.HasWeaponSlot() {
		log.Printf("武器栏已满(%d)，无法获得 %s", inv.maxWeapons, id)
		return false
	}
	inv.weapons = append(inv.weapons, newWeaponInstance(def))
	return true
}

// UpgradeWeapon 武器升一级，未持有或已满级时失败
func (inv *Inventory) UpgradeWeapon(id string) bool {
	wi, ok := inv.Weapon(id)
	if !ok {
		log.Printf("升级失败，未持有武器: %s", id)
		return false
	}
	if wi.IsMaxLevel() {
		return false
	}
	wi.Level++
	return true
}

// CanEvolve 武器满级、未进化且配对被动也满级
func (inv *Inventory) CanEvolve(id string) bool {
	wi, ok := inv.Weapon(id)
	if !ok || wi.IsEvolved || !wi.IsMaxLevel() || !wi.Def.CanEvolve() {
		return false
	}
	pi, ok := inv.Passive(wi.Def.EvolutionPassive)
	return ok && pi.IsMaxLevel()
}

// EvolveWeapon 进化武器，只设置进化标记，不更换目录ID
func (inv *Inventory) EvolveWeapon(id string) bool {
	if !inv.CanEvolve(id) {
		log.Printf("武器 %s 不满足进化条件", id)
		return false
	}
	wi, _ := inv.Weapon(id)
	wi.IsEvolved = true
	return true
}

// AddPassive 获得被动，已持有时等同于升级
func (inv *Inventory) AddPassive(id string) bool {
	if _, owned := inv.Passive(id); owned {
		return inv.UpgradePassive(id)
	}
	def, ok := inv.cat.Passive(id)
	if !ok {
		log.Printf("未知被动: %s", id)
		return false
	}
	if !inv.HasPassiveSlot() {
		log.Printf("被动栏已满(%d)，无法获得 %s", inv.maxPassives, id)
		return false
	}
	pi := &PassiveInstance{Def: def, Level: 1}
	inv.passives = append(inv.passives, pi)
	inv.applyPassive(pi)
	return true
}

// UpgradePassive 被动升一级并立即生效
func (inv *Inventory) UpgradePassive(id string) bool {
	pi, ok := inv.Passive(id)
	if !ok {
		log.Printf("升级失败，未持有被动: %s", id)
		return false
	}
	if pi.IsMaxLevel() {
		return false
	}
	pi.Level++
	inv.applyPassive(pi)
	return true
}

func (inv *Inventory) applyPassive(pi *PassiveInstance) {
	eff := pi.Def.Effect
	if !inv.player.ApplyStat(eff.Stat, eff.ValuePerLevel, eff.IsPercentage) {
		log.Printf("被动 %s 的属性无效: %s", pi.Def.ID, eff.Stat)
	}
}

// Apply 应用一个升级选项
func (inv *Inventory) Apply(choice models.UpgradeChoice) bool {
	switch choice.Kind {
	case models.UpgradeWeapon:
		if choice.IsEvolution {
			return inv.EvolveWeapon(choice.ID)
		}
		return inv.AddWeapon(choice.ID)
	case models.UpgradePassive:
		return inv.AddPassive(choice.ID)
	default:
		log.Printf("未知升级类型: %s", choice.Kind)
		return false
	}
}

// Tick 推进全部武器
func (inv *Inventory) Tick(w *World, deltaMs float64) {
	for _, wi := range inv.weapons {
		wi.Tick(w, deltaMs)
	}
}

// WeaponStates 武器摘要
func (inv *Inventory) WeaponStates() []models.WeaponState {
	out := make([]models.WeaponState, 0, len(inv.weapons))
	for _, wi := range inv.weapons {
		out = append(out, wi.State())
	}
	return out
}

// PassiveStates 被动摘要
func (inv *Inventory) PassiveStates() []models.PassiveState {
	out := make([]models.PassiveState, 0, len(inv.passives))
	for _, pi := range inv.passives {
		out = append(out, pi.State())
	}
	return out
}
