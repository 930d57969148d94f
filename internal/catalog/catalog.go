// catalog.go

package catalog

import (
	"fmt"
	"sync"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// Catalog 武器与被动的只读目录
type Catalog struct {
	weapons     []*models.WeaponDef
	passives    []*models.PassiveDef
	weaponByID  map[string]*models.WeaponDef
	passiveByID map[string]*models.PassiveDef
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default 返回内置目录
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(weaponTable(), passiveTable())
		if err != nil {
			panic(fmt.Sprintf("内置目录无效: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// New 创建目录并校验数据
func New(weapons []*models.WeaponDef, passives []*models.PassiveDef) (*Catalog, error) {
	c := &Catalog{
		weapons:     weapons,
		passives:    passives,
		weaponByID:  make(map[string]*models.WeaponDef, len(weapons)),
		passiveByID: make(map[string]*models.PassiveDef, len(passives)),
	}

	for _, p := range passives {
		if p.MaxLevel < 1 {
			return nil, fmt.Errorf("被动 %s 最大等级无效: %d", p.ID, p.MaxLevel)
		}
		if _, dup := c.passiveByID[p.ID]; dup {
			return nil, fmt.Errorf("被动ID重复: %s", p.ID)
		}
		c.passiveByID[p.ID] = p
	}

	for _, w := range weapons {
		if w.MaxLevel < 1 {
			return nil, fmt.Errorf("武器 %s 最大等级无效: %d", w.ID, w.MaxLevel)
		}
		if len(w.LevelDeltas) != w.MaxLevel-1 {
			return nil, fmt.Errorf("武器 %s 等级增量数量应为 %d，实际为 %d", w.ID, w.MaxLevel-1, len(w.LevelDeltas))
		}
		if w.EvolutionPassive != "" {
			if _, ok := c.passiveByID[w.EvolutionPassive]; !ok {
				return nil, fmt.Errorf("武器 %s 的进化被动不存在: %s", w.ID, w.EvolutionPassive)
			}
		}
		if _, dup := c.weaponByID[w.ID]; dup {
			return nil, fmt.Errorf("武器ID重复: %s", w.ID)
		}
		c.weaponByID[w.ID] = w
	}

	return c, nil
}

// Weapon 按ID查找武器
func (c *Catalog) Weapon(id string) (*models.WeaponDef, bool) {
	w, ok := c.weaponByID[id]
	return w, ok
}

// Passive 按ID查找被动
func (c *Catalog) Passive(id string) (*models.PassiveDef, bool) {
	p, ok := c.passiveByID[id]
	return p, ok
}

// Weapons 按表顺序返回全部武器
func (c *Catalog) Weapons() []*models.WeaponDef {
	return c.weapons
}

// Passives 按表顺序返回全部被动
func (c *Catalog) Passives() []*models.PassiveDef {
	return c.passives
}
