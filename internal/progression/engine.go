// engine.go

package progression

import (
	"math"
	"math/rand"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
)

// Engine 经验与等级
type Engine struct {
	cfg    config.XPConfig
	limits config.LimitsConfig
	rng    *rand.Rand

	Level int
	XP    int
}

// NewEngine 创建1级、0经验的成长引擎
func NewEngine(xp config.XPConfig, limits config.LimitsConfig, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:    xp,
		limits: limits,
		rng:    rng,
		Level:  1,
	}
}

// XPToNext 指定等级升级所需经验 floor(base * multiplier^(level-1))
func (e *Engine) XPToNext(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(e.cfg.BaseToLevel * math.Pow(e.cfg.Multiplier, float64(level-1))))
}

// Threshold 当前等级升级所需经验
func (e *Engine) Threshold() int {
	return e.XPToNext(e.Level)
}

// AtMaxLevel 是否已达最大等级
func (e *Engine) AtMaxLevel() bool {
	return e.Level >= e.cfg.MaxLevel
}

// GainXP 按成长倍率获得经验，溢出部分继续结算，返回本次升级数
func (e *Engine) GainXP(raw, growth float64) int {
	amount := int(math.Floor(raw * (1 + growth)))
	if amount <= 0 {
		return 0
	}
	e.XP += amount

	gained := 0
	for !e.AtMaxLevel() && e.XP >= e.Threshold() {
		e.XP -= e.Threshold()
		e.Level++
		gained++
	}
	if e.AtMaxLevel() && e.XP > e.Threshold() {
		e.XP = e.Threshold()
	}
	return gained
}

// RevertLevel 撤销一次暂定升级：等级减一，经验置为新门槛的一半
func (e *Engine) RevertLevel() {
	if e.Level > 1 {
		e.Level--
	}
	e.XP = int(math.Floor(0.5 * float64(e.Threshold())))
}
