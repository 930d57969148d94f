// passives.go

package catalog

import "github.com/jacl-coder/PixelStorm-Quiz/internal/models"

const passiveMaxLevel = 5

func passive(id, name, desc string, stat models.StatType, perLevel float64, pct bool) *models.PassiveDef {
	return &models.PassiveDef{
		ID:          id,
		Name:        name,
		Description: desc,
		MaxLevel:    passiveMaxLevel,
		Effect: models.PassiveEffect{
			Stat:          stat,
			ValuePerLevel: perLevel,
			IsPercentage:  pct,
		},
	}
}

func passiveTable() []*models.PassiveDef {
	return []*models.PassiveDef{
		passive("spinach", "菠菜", "伤害提高10%", models.StatDamage, 10, true),
		passive("armor", "护甲", "受到的伤害减少1", models.StatArmor, 1, false),
		passive("hollow_heart", "空心之心", "最大生命提高20%", models.StatMaxHP, 20, true),
		passive("pummarola", "番茄", "每秒回复0.2生命", models.StatRegen, 0.2, false),
		passive("empty_tome", "空白法典", "冷却缩短8%", models.StatCooldown, -8, true),
		passive("candelabrador", "烛台", "攻击范围提高10%", models.StatArea, 10, true),
		passive("bracer", "护腕", "投射物速度提高10%", models.StatSpeed, 10, true),
		passive("spellbinder", "缚咒者", "持续时间提高10%", models.StatDuration, 10, true),
		passive("duplicator", "复制器", "投射物数量加1", models.StatAmount, 1, false),
		passive("wings", "翅膀", "移动速度提高10%", models.StatMoveSpeed, 10, true),
		passive("attractorb", "吸引宝珠", "拾取范围提高25%", models.StatMagnet, 25, true),
		passive("clover", "四叶草", "幸运提高10%", models.StatLuck, 10, true),
		passive("crown", "王冠", "经验获取提高8%", models.StatGrowth, 8, true),
	}
}
