// gate.go

package progression

import (
	"errors"
	"fmt"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// GateState 升级门控状态
type GateState int

const (
	// GateIdle 无待处理升级
	GateIdle GateState = iota
	// GatePendingQuiz 暂定升级，等待答题结果
	GatePendingQuiz
	// GateConfirmed 升级已确认，等待选择升级项
	GateConfirmed
	// GateReverted 升级已撤销，等待自动恢复
	GateReverted
)

func (s GateState) String() string {
	switch s {
	case GateIdle:
		return "idle"
	case GatePendingQuiz:
		return "pending_quiz"
	case GateConfirmed:
		return "confirmed"
	case GateReverted:
		return "reverted"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

var (
	// ErrGateBusy 已有未结束的升级提案
	ErrGateBusy = errors.New("已有待处理的升级提案")
	// ErrNotPending 当前没有等待答题的升级
	ErrNotPending = errors.New("没有等待答题的升级")
	// ErrNotConfirmed 升级未确认，不能选择升级项
	ErrNotConfirmed = errors.New("升级尚未确认")
	// ErrUnknownChoice 选择的升级项不在提案中
	ErrUnknownChoice = errors.New("升级项不在提案中")
)

// Gate 升级答题门控
// Idle -> PendingQuiz -> Confirmed|Reverted -> Idle
type Gate struct {
	engine *Engine

	state    GateState
	proposal *models.LevelUpProposal

	revertDelayMs float64
	resumeInMs    float64
}

// NewGate 创建门控，revertDelayMs 为答错后自动恢复的延迟
func NewGate(engine *Engine, revertDelayMs float64) *Gate {
	return &Gate{
		engine:        engine,
		revertDelayMs: revertDelayMs,
	}
}

// State 当前状态
func (g *Gate) State() GateState {
	return g.state
}

// Proposal 当前提案，Idle 时为nil
func (g *Gate) Proposal() *models.LevelUpProposal {
	return g.proposal
}

// Blocking 门控是否要求暂停战斗
func (g *Gate) Blocking() bool {
	return g.state != GateIdle
}

// Open 打开提案。等级已由经验结算暂定提升
func (g *Gate) Open(p models.LevelUpProposal) error {
	if g.state != GateIdle {
		return ErrGateBusy
	}
	g.proposal = &p
	g.state = GatePendingQuiz
	return nil
}

// Resolve 提交答题结果。答错时撤销一级并开始自动恢复计时
func (g *Gate) Resolve(correct bool) (GateState, error) {
	if g.state != GatePendingQuiz {
		return g.state, ErrNotPending
	}
	if correct {
		g.state = GateConfirmed
		return g.state, nil
	}

	g.engine.RevertLevel()
	g.proposal.Choices = nil
	g.state = GateReverted
	g.resumeInMs = g.revertDelayMs
	return g.state, nil
}

// ConfirmWithoutQuiz 题库耗尽时视为答对
func (g *Gate) ConfirmWithoutQuiz() error {
	if g.state != GatePendingQuiz {
		return ErrNotPending
	}
	g.proposal.HasQuiz = false
	g.state = GateConfirmed
	return nil
}

// SelectUpgrade 在已确认的提案中选择升级项，成功后回到 Idle
func (g *Gate) SelectUpgrade(kind models.UpgradeKind, id string) (models.UpgradeChoice, error) {
	if g.state != GateConfirmed {
		return models.UpgradeChoice{}, ErrNotConfirmed
	}
	choice, ok := g.proposal.FindChoice(kind, id)
	if !ok {
		return models.UpgradeChoice{}, fmt.Errorf("%w: %s/%s", ErrUnknownChoice, kind, id)
	}
	g.reset()
	return choice, nil
}

// Dismiss 已确认但没有任何可选升级项时直接结束
func (g *Gate) Dismiss() error {
	if g.state != GateConfirmed {
		return ErrNotConfirmed
	}
	g.reset()
	return nil
}

// Advance 以界面计时推进撤销后的恢复延迟，恢复时返回 true
func (g *Gate) Advance(deltaMs float64) bool {
	if g.state != GateReverted {
		return false
	}
	g.resumeInMs -= deltaMs
	if g.resumeInMs > 0 {
		return false
	}
	g.reset()
	return true
}

func (g *Gate) reset() {
	g.state = GateIdle
	g.proposal = nil
	g.resumeInMs = 0
}
