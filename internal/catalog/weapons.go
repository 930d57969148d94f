// weapons.go

package catalog

import "github.com/jacl-coder/PixelStorm-Quiz/internal/models"

// 等级增量简写
func dmg(v float64) models.WeaponStats  { return models.WeaponStats{Damage: v} }
func cd(v float64) models.WeaponStats   { return models.WeaponStats{CooldownMs: v} }
func area(v float64) models.WeaponStats { return models.WeaponStats{Area: v} }
func spd(v float64) models.WeaponStats  { return models.WeaponStats{Speed: v} }
func dur(v float64) models.WeaponStats  { return models.WeaponStats{DurationMs: v} }
func amt(n int) models.WeaponStats      { return models.WeaponStats{Amount: n} }
func pierce(n int) models.WeaponStats   { return models.WeaponStats{Pierce: n} }

func both(a, b models.WeaponStats) models.WeaponStats { return a.Add(b) }

const weaponMaxLevel = 8

func weaponTable() []*models.WeaponDef {
	return []*models.WeaponDef{
		{
			ID: "magic_bolt", Name: "魔法飞弹", Description: "向最近的敌人发射魔法弹",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeDirectional,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 1200, Area: 8, Speed: 400, DurationMs: 2000, Amount: 1, Pierce: 1},
			LevelDeltas: []models.WeaponStats{amt(1), cd(-200), amt(1), dmg(10), amt(1), pierce(1), dmg(10)},
			Params:      models.ArchetypeParams{Targeting: models.TargetNearest, SpreadDeg: 8},
			EvolutionPassive: "empty_tome", EvolvedID: "holy_bolt", EvolvedName: "神圣飞弹",
			Evolved: models.EvolutionTraits{DamageMultiplier: 1.5, ExtraPierce: 2},
		},
		{
			ID: "throwing_knife", Name: "飞刀", Description: "向移动方向投掷飞刀",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeDirectional,
			Base:        models.WeaponStats{Damage: 6, CooldownMs: 1000, Area: 6, Speed: 600, DurationMs: 1500, Amount: 1, Pierce: 1},
			LevelDeltas: []models.WeaponStats{amt(1), both(amt(1), dmg(5)), amt(1), pierce(1), amt(1), amt(1), both(dmg(5), pierce(1))},
			Params:      models.ArchetypeParams{Targeting: models.TargetFacing, SpreadDeg: 10},
			EvolutionPassive: "bracer", EvolvedID: "thousand_edge", EvolvedName: "千刃",
			Evolved: models.EvolutionTraits{ExtraAmount: 3},
		},
		{
			ID: "fire_wand", Name: "火焰法杖", Description: "向随机敌人喷射火球",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeDirectional,
			Base:        models.WeaponStats{Damage: 20, CooldownMs: 2500, Area: 12, Speed: 300, DurationMs: 3000, Amount: 3, Pierce: 1},
			LevelDeltas: []models.WeaponStats{dmg(10), spd(60), dmg(10), spd(60), dmg(10), spd(60), dmg(10)},
			Params:      models.ArchetypeParams{Targeting: models.TargetRandomEnemy, SpreadDeg: 15},
			EvolutionPassive: "spinach", EvolvedID: "hellfire", EvolvedName: "地狱火",
			Evolved: models.EvolutionTraits{DamageMultiplier: 2, ExtraPierce: 5},
		},
		{
			ID: "holy_book", Name: "圣经", Description: "环绕玩家旋转的书页",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeOrbit,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 3000, Area: 14, Speed: 0, DurationMs: 3000, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{amt(1), area(4), both(dur(500), dmg(10)), amt(1), area(4), both(dur(500), dmg(10)), amt(1)},
			Params:      models.ArchetypeParams{OrbitRadius: 90, OrbitSpeedDeg: 180, HitIntervalMs: 500},
			EvolutionPassive: "spellbinder", EvolvedID: "unholy_vespers", EvolvedName: "邪恶晚祷",
			Evolved: models.EvolutionTraits{Persistent: true, DamageMultiplier: 1.2},
		},
		{
			ID: "garlic_aura", Name: "蒜香光环", Description: "持续伤害周围的敌人",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypePulse,
			Base:        models.WeaponStats{Damage: 5, CooldownMs: 1300, Area: 60, DurationMs: 1000, Amount: 1, Pierce: -1, Knockback: 4},
			LevelDeltas: []models.WeaponStats{both(area(8), dmg(2)), both(cd(-100), dmg(1)), both(area(8), dmg(1)), both(cd(-100), dmg(2)), both(area(8), dmg(1)), both(cd(-100), dmg(1)), both(area(8), dmg(1))},
			Params:      models.ArchetypeParams{},
			EvolutionPassive: "pummarola", EvolvedID: "soul_eater", EvolvedName: "噬魂者",
			Evolved: models.EvolutionTraits{DamageMultiplier: 1.5},
		},
		{
			ID: "holy_water", Name: "圣水", Description: "投掷圣水形成持续伤害区域",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeTargetedArea,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 4500, Area: 40, DurationMs: 2000, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{both(amt(1), area(4)), both(dmg(10), dur(500)), both(amt(1), area(4)), both(dmg(10), dur(300)), both(amt(1), area(4)), both(dmg(5), dur(300)), both(dmg(5), area(4))},
			Params:      models.ArchetypeParams{Targeting: models.TargetRandomPoint, ScatterRadius: 250, TravelMs: 400, HitIntervalMs: 500},
			EvolutionPassive: "attractorb", EvolvedID: "la_borra", EvolvedName: "圣泉",
			Evolved: models.EvolutionTraits{DamageMultiplier: 1.5, ExtraAmount: 1},
		},
		{
			ID: "rune_tracer", Name: "符文追迹", Description: "在屏幕边缘来回反弹的符文",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeBouncing,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 3000, Area: 10, Speed: 350, DurationMs: 2250, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{both(dmg(5), spd(70)), both(dmg(5), dur(300)), amt(1), both(dmg(5), spd(70)), both(dmg(5), dur(300)), amt(1), dur(500)},
			Params:      models.ArchetypeParams{HitIntervalMs: 400},
			EvolutionPassive: "armor", EvolvedID: "nodus", EvolvedName: "结界符文",
			Evolved: models.EvolutionTraits{ExtraAmount: 2},
		},
		{
			ID: "lightning_ring", Name: "雷电之环", Description: "雷击随机敌人",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeTargetedArea,
			Base:        models.WeaponStats{Damage: 15, CooldownMs: 4500, Area: 20, DurationMs: 150, Amount: 2, Pierce: -1},
			LevelDeltas: []models.WeaponStats{amt(1), both(area(8), dmg(10)), amt(1), both(area(8), dmg(20)), amt(1), both(area(8), dmg(20)), amt(1)},
			Params:      models.ArchetypeParams{Targeting: models.TargetRandomEnemy},
			EvolutionPassive: "duplicator", EvolvedID: "thunder_loop", EvolvedName: "雷霆回环",
			Evolved: models.EvolutionTraits{ExtraAmount: 2},
		},
		{
			ID: "cross", Name: "十字架", Description: "飞出后返回玩家身边的十字架",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeBoomerang,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 2000, Area: 10, Speed: 500, DurationMs: 2000, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{dmg(10), both(area(2), spd(125)), amt(1), dmg(10), both(area(2), spd(125)), amt(1), dmg(10)},
			Params:      models.ArchetypeParams{Targeting: models.TargetNearest, HitIntervalMs: 600},
			EvolutionPassive: "clover", EvolvedID: "heaven_sword", EvolvedName: "天堂之剑",
			Evolved: models.EvolutionTraits{DamageMultiplier: 1.5, ExtraAmount: 1},
		},
		{
			ID: "spirit_missile", Name: "灵魂导弹", Description: "锁定敌人并持续追踪",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeHoming,
			Base:        models.WeaponStats{Damage: 12, CooldownMs: 1800, Area: 8, Speed: 300, DurationMs: 3000, Amount: 1, Pierce: 1},
			LevelDeltas: []models.WeaponStats{amt(1), dmg(5), spd(50), amt(1), dmg(5), pierce(1), amt(1)},
			Params:      models.ArchetypeParams{Targeting: models.TargetNearest, RetargetMs: 100, Range: 600},
			EvolutionPassive: "wings", EvolvedID: "phantom_swarm", EvolvedName: "幻影蜂群",
			Evolved: models.EvolutionTraits{ExtraAmount: 2},
		},
		{
			ID: "star_burst", Name: "星爆", Description: "向四周均匀发射星光",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeRadial,
			Base:        models.WeaponStats{Damage: 8, CooldownMs: 2200, Area: 8, Speed: 350, DurationMs: 1500, Amount: 6, Pierce: 1},
			LevelDeltas: []models.WeaponStats{amt(2), dmg(4), amt(2), both(cd(-200), dmg(4)), amt(2), pierce(1), dmg(8)},
			Params:      models.ArchetypeParams{},
			EvolutionPassive: "crown", EvolvedID: "supernova", EvolvedName: "超新星",
			Evolved: models.EvolutionTraits{ExtraAmount: 6},
		},
		{
			ID: "frost_shard", Name: "冰晶碎片", Description: "向四周散射冰晶，方向带有随机偏移",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeRadial,
			Base:        models.WeaponStats{Damage: 6, CooldownMs: 1600, Area: 6, Speed: 450, DurationMs: 1200, Amount: 4, Pierce: 2},
			LevelDeltas: []models.WeaponStats{amt(1), dmg(3), amt(1), cd(-150), amt(1), dmg(3), amt(2)},
			Params:      models.ArchetypeParams{JitterDeg: 20},
		},
		{
			ID: "meteor", Name: "陨石", Description: "召唤陨石砸向最近的敌人",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeTargetedArea,
			Base:        models.WeaponStats{Damage: 30, CooldownMs: 5000, Area: 60, DurationMs: 800, Amount: 1, Pierce: -1, Knockback: 20},
			LevelDeltas: []models.WeaponStats{dmg(10), area(10), amt(1), dmg(15), area(10), cd(-500), amt(1)},
			Params:      models.ArchetypeParams{Targeting: models.TargetNearest, TravelMs: 900, Range: 700},
			EvolutionPassive: "candelabrador", EvolvedID: "starfall", EvolvedName: "星陨",
			Evolved: models.EvolutionTraits{ExtraAmount: 2},
		},
		{
			ID: "whip", Name: "皮鞭", Description: "向前后两侧挥鞭",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeDirectional,
			Base:        models.WeaponStats{Damage: 12, CooldownMs: 1350, Area: 40, Speed: 60, DurationMs: 250, Amount: 1, Pierce: -1, Knockback: 8},
			LevelDeltas: []models.WeaponStats{amt(1), dmg(5), both(dmg(5), area(4)), dmg(5), both(dmg(5), area(4)), dmg(5), dmg(5)},
			Params:      models.ArchetypeParams{Targeting: models.TargetFacing, SpreadDeg: 180},
			EvolutionPassive: "hollow_heart", EvolvedID: "bloody_tear", EvolvedName: "血泪",
			Evolved: models.EvolutionTraits{DamageMultiplier: 1.3, ExtraAmount: 1},
		},
		{
			ID: "guardian_blades", Name: "守护之刃", Description: "贴身高速旋转的刀刃",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeOrbit,
			Base:        models.WeaponStats{Damage: 7, CooldownMs: 2500, Area: 10, DurationMs: 2500, Amount: 2, Pierce: -1},
			LevelDeltas: []models.WeaponStats{dmg(3), amt(1), dur(500), dmg(3), amt(1), dur(500), amt(1)},
			Params:      models.ArchetypeParams{OrbitRadius: 60, OrbitSpeedDeg: 300, HitIntervalMs: 300},
		},
		{
			ID: "laser_drone", Name: "激光无人机", Description: "随机锁定范围内敌人的追踪弹",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeHoming,
			Base:        models.WeaponStats{Damage: 8, CooldownMs: 1400, Area: 6, Speed: 420, DurationMs: 2000, Amount: 2, Pierce: 1},
			LevelDeltas: []models.WeaponStats{dmg(3), amt(1), spd(60), dmg(3), amt(1), cd(-200), amt(1)},
			Params:      models.ArchetypeParams{Targeting: models.TargetRandomEnemy, RetargetMs: 150, Range: 500},
		},
		{
			ID: "bouncing_orb", Name: "弹跳法球", Description: "体积较大的反弹法球",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeBouncing,
			Base:        models.WeaponStats{Damage: 14, CooldownMs: 3500, Area: 16, Speed: 250, DurationMs: 3000, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{area(4), dmg(6), amt(1), area(4), dmg(6), dur(1000), amt(1)},
			Params:      models.ArchetypeParams{HitIntervalMs: 500},
		},
		{
			ID: "chakram", Name: "飞轮", Description: "沿移动方向掷出并折返",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeBoomerang,
			Base:        models.WeaponStats{Damage: 9, CooldownMs: 1700, Area: 12, Speed: 450, DurationMs: 1600, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{dmg(4), amt(1), spd(80), dmg(4), amt(1), spd(80), dmg(8)},
			Params:      models.ArchetypeParams{Targeting: models.TargetFacing, SpreadDeg: 25, HitIntervalMs: 500},
		},
		{
			ID: "shockwave", Name: "冲击波", Description: "向四周释放贯穿的冲击波",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeRadial,
			Base:        models.WeaponStats{Damage: 10, CooldownMs: 3000, Area: 14, Speed: 300, DurationMs: 800, Amount: 8, Pierce: -1, Knockback: 12},
			LevelDeltas: []models.WeaponStats{dmg(4), dur(150), amt(2), dmg(4), dur(150), amt(2), dmg(8)},
			Params:      models.ArchetypeParams{JitterDeg: 5},
		},
		{
			ID: "poison_cloud", Name: "毒雾", Description: "在敌人所在位置生成毒雾",
			MaxLevel: weaponMaxLevel, Archetype: models.ArchetypeTargetedArea,
			Base:        models.WeaponStats{Damage: 4, CooldownMs: 5000, Area: 70, DurationMs: 4000, Amount: 1, Pierce: -1},
			LevelDeltas: []models.WeaponStats{dmg(2), area(10), dur(1000), dmg(2), amt(1), area(10), dmg(4)},
			Params:      models.ArchetypeParams{Targeting: models.TargetRandomEnemy, TravelMs: 300, HitIntervalMs: 400, Range: 800},
		},
	}
}
