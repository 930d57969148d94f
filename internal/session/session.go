// session.go

package session

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/catalog"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/combat"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/event"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/progression"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/wave"
)

// ErrSessionClosed 会话已关闭
var ErrSessionClosed = errors.New("会话已关闭")

// bossShake 首领波的镜头震动
var bossShake = event.CameraShakePayload{Intensity: 0.01, DurationMs: 500}

// Option 会话选项
type Option func(*Session)

// WithRand 指定随机源，测试中用于复现
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithCatalog 指定武器目录
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Session) { s.cat = cat }
}

// WithID 指定会话ID
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// Session 单人战斗会话
// 所有方法与事件处理都必须在同一个goroutine中调用
type Session struct {
	ID string

	cfg  config.GameConfig
	bus  *event.Bus
	bank *QuizBank
	cat  *catalog.Catalog
	rng  *rand.Rand

	World    *combat.World
	Progress *progression.Engine
	Gate     *progression.Gate
	Waves    *wave.Scheduler

	started   bool
	closed    bool
	over      bool
	startedAt time.Time

	pauses map[event.PauseReason]bool

	score      int
	kills      int
	quizStats  models.QuizStats
	survivalMs float64

	pendingQuiz     *models.Quiz
	snapshotTimerMs float64

	subs []*event.Subscription

	// Update 期间发出的事件在帧末统一发布
	inUpdate bool
	outbox   []event.Event
}

// New 创建会话，bus 由调用方持有并注入
func New(cfg config.GameConfig, bus *event.Bus, quizzes []models.Quiz, opts ...Option) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		cfg:    cfg,
		bus:    bus,
		bank:   NewQuizBank(quizzes),
		pauses: make(map[event.PauseReason]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.cat == nil {
		s.cat = catalog.Default()
	}

	s.World = combat.NewWorld(cfg, s.cat, s.rng)
	s.Progress = progression.NewEngine(cfg.XP, cfg.Limits, s.rng)
	s.Gate = progression.NewGate(s.Progress, cfg.Quiz.RevertResumeMs)
	s.Waves = wave.NewScheduler(cfg.Wave, cfg.World, s.rng)
	return s
}

// Start 订阅输入事件、发放初始武器并发出 game-ready
func (s *Session) Start() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.started {
		return nil
	}
	s.started = true
	s.startedAt = time.Now()

	s.subs = append(s.subs,
		s.bus.Subscribe(event.UpgradeSelected, s.onUpgradeSelected),
		s.bus.Subscribe(event.QuizResult, s.onQuizResult),
		s.bus.Subscribe(event.JoystickMove, s.onJoystick),
		s.bus.Subscribe(event.KeyboardMove, s.onKeyboard),
		s.bus.Subscribe(event.PauseGame, func(event.Event) { s.pause(event.PauseManual) }),
		s.bus.Subscribe(event.ResumeGame, func(event.Event) { s.resume(event.PauseManual) }),
	)

	if id := s.cfg.Session.StartingWeapon; id != "" && !s.World.Inventory.AddWeapon(id) {
		log.Printf("会话 %s 初始武器 %s 发放失败", s.ID, id)
	}

	log.Printf("会话 %s 开始，题库剩余 %d 题", s.ID, s.bank.Remaining())
	s.emit(event.GameReady, s.Snapshot())
	return nil
}

// Close 结束会话，取消全部订阅并销毁实体，可重复调用
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	s.outbox = nil
	s.World.Clear()
	log.Printf("会话 %s 关闭", s.ID)
}

// Closed 是否已关闭
func (s *Session) Closed() bool {
	return s.closed
}

// Over 是否已结束（玩家死亡）
func (s *Session) Over() bool {
	return s.over
}

// Paused 战斗是否暂停
func (s *Session) Paused() bool {
	return len(s.pauses) > 0
}

// PausedBy 是否因指定原因暂停
func (s *Session) PausedBy(reason event.PauseReason) bool {
	return s.pauses[reason]
}

// Score 当前分数
func (s *Session) Score() int {
	return s.score
}

// Kills 击杀数
func (s *Session) Kills() int {
	return s.kills
}

// QuizStats 答题统计
func (s *Session) QuizStats() models.QuizStats {
	return s.quizStats
}

// CurrentQuiz 待答的题目，没有待处理升级时返回题库当前题
func (s *Session) CurrentQuiz() *models.Quiz {
	if s.pendingQuiz != nil {
		return s.pendingQuiz
	}
	return s.bank.Current()
}

// Update 推进一帧。暂停时只推进界面计时，战斗、波次和生存时间都不前进
func (s *Session) Update(deltaMs float64) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.started || s.over {
		return nil
	}

	s.inUpdate = true
	defer s.flush()

	if s.Gate.Advance(deltaMs) {
		s.resume(event.PauseLevelUp)
	}
	if s.Paused() {
		return nil
	}

	s.survivalMs += deltaMs
	res := s.World.Tick(deltaMs)

	for _, k := range res.Kills {
		s.kills++
		s.score += k.Score
		s.emit(event.MonsterKilled, event.MonsterKilledPayload{
			MonsterID: k.MonsterID,
			Tier:      k.Tier,
			Position:  k.Position,
			Score:     k.Score,
		})
	}

	if res.PlayerDied {
		s.gameOver()
		return nil
	}

	wr := s.Waves.Update(deltaMs, s.World.Player.Position, s.World)
	if wr.WaveChanged {
		s.emit(event.WaveChanged, event.WaveChangedPayload{Wave: wr.Wave, IsBoss: wr.BossWave})
		if wr.BossWave {
			s.emit(event.CameraShake, bossShake)
		}
	}

	levels := 0
	for _, value := range res.XPGems {
		levels += s.Progress.GainXP(value, s.World.Player.Stats.Growth)
	}
	if levels > 0 {
		s.openLevelUp()
	}

	s.snapshotTimerMs += deltaMs
	if s.snapshotTimerMs >= s.cfg.Session.SnapshotIntervalMs {
		s.snapshotTimerMs = 0
		s.emit(event.PlayerStateUpdate, s.Snapshot())
	}
	return nil
}

// openLevelUp 暂定升级已生效，打开门控并暂停战斗
func (s *Session) openLevelUp() {
	choices := s.Progress.GenerateChoices(s.World.Inventory, s.cfg.Limits.UpgradeChoices)
	quiz := s.bank.Current()
	proposal := models.LevelUpProposal{
		Level:   s.Progress.Level,
		Choices: choices,
		HasQuiz: quiz != nil,
	}
	if err := s.Gate.Open(proposal); err != nil {
		log.Printf("会话 %s 打开升级失败: %v", s.ID, err)
		return
	}

	s.pendingQuiz = quiz
	s.pause(event.PauseLevelUp)
	s.emit(event.LevelUp, event.LevelUpPayload{Proposal: *s.Gate.Proposal(), Quiz: quiz})

	if quiz == nil {
		if err := s.Gate.ConfirmWithoutQuiz(); err != nil {
			log.Printf("会话 %s 自动确认升级失败: %v", s.ID, err)
			return
		}
		s.onConfirmed()
	}
}

// onConfirmed 确认后加分，没有可选项时直接恢复
func (s *Session) onConfirmed() {
	s.score += s.cfg.Quiz.CorrectBonus
	if len(s.Gate.Proposal().Choices) == 0 {
		if err := s.Gate.Dismiss(); err == nil {
			s.resume(event.PauseLevelUp)
		}
	}
}

func (s *Session) onQuizResult(ev event.Event) {
	if s.closed {
		return
	}
	p, ok := ev.Payload.(event.QuizResultPayload)
	if !ok {
		log.Printf("会话 %s 答题结果载荷无效: %T", s.ID, ev.Payload)
		return
	}
	if s.Gate.State() != progression.GatePendingQuiz {
		log.Printf("会话 %s 忽略答题结果: 当前状态 %s", s.ID, s.Gate.State())
		return
	}

	quiz := s.pendingQuiz
	correct := quiz != nil && quiz.IsCorrect(p.Answer)

	state, err := s.Gate.Resolve(correct)
	if err != nil {
		log.Printf("会话 %s 答题结算失败: %v", s.ID, err)
		return
	}

	s.quizStats.Answered++
	if correct {
		s.quizStats.Correct++
	}
	s.bank.Advance()
	s.pendingQuiz = nil

	verdict := event.QuizVerdictPayload{Correct: correct, Level: s.Progress.Level}
	if quiz != nil {
		verdict.CorrectIndex = quiz.CorrectIndex
		verdict.Explanation = quiz.Explanation
	}
	s.emit(event.QuizVerdict, verdict)

	if state == progression.GateConfirmed {
		s.onConfirmed()
	}
}

func (s *Session) onUpgradeSelected(ev event.Event) {
	if s.closed {
		return
	}
	p, ok := ev.Payload.(event.UpgradeSelectedPayload)
	if !ok {
		log.Printf("会话 %s 升级选择载荷无效: %T", s.ID, ev.Payload)
		return
	}
	choice, err := s.Gate.SelectUpgrade(p.Kind, p.ID)
	if err != nil {
		log.Printf("会话 %s 选择升级失败: %v", s.ID, err)
		return
	}
	if !s.World.Inventory.Apply(choice) {
		log.Printf("会话 %s 升级 %s/%s 未生效", s.ID, choice.Kind, choice.ID)
	}
	s.resume(event.PauseLevelUp)
}

func (s *Session) onJoystick(ev event.Event) {
	if p, ok := ev.Payload.(event.MovePayload); ok {
		s.World.SetJoystick(models.Vector2D{X: p.X, Y: p.Y})
	}
}

func (s *Session) onKeyboard(ev event.Event) {
	if p, ok := ev.Payload.(event.MovePayload); ok {
		s.World.SetKeyboard(models.Vector2D{X: p.X, Y: p.Y})
	}
}

// pause 暂停原因可叠加
func (s *Session) pause(reason event.PauseReason) {
	if s.closed || s.pauses[reason] {
		return
	}
	s.pauses[reason] = true
	s.emit(event.GamePaused, event.PausePayload{Reason: reason})
}

// resume 移除暂停原因，全部移除后才真正恢复
func (s *Session) resume(reason event.PauseReason) {
	if !s.pauses[reason] {
		return
	}
	if reason == event.PauseLevelUp && s.Gate.Blocking() {
		return
	}
	delete(s.pauses, reason)
	if len(s.pauses) == 0 {
		s.emit(event.GameResumed, event.PausePayload{Reason: reason})
	}
}

func (s *Session) gameOver() {
	s.over = true
	summary := s.Summary()
	log.Printf("会话 %s 结束: 分数 %d, 等级 %d, 波次 %d, 击杀 %d", s.ID, summary.Score, summary.Level, summary.Wave, summary.Kills)
	s.emit(event.GameOver, event.GameOverPayload{Summary: summary})
}

// Summary 当前的结算数据
func (s *Session) Summary() models.RunSummary {
	return models.RunSummary{
		SessionID:    s.ID,
		Score:        s.score,
		Level:        s.Progress.Level,
		Wave:         s.Waves.Wave(),
		Kills:        s.kills,
		SurvivalTime: s.survivalMs / 1000,
		Quiz:         s.quizStats,
		Died:         s.over,
	}
}

// StartedAt 开始时间
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Snapshot 当前状态快照
func (s *Session) Snapshot() models.PlayerSnapshot {
	p := s.World.Player
	return models.PlayerSnapshot{
		SessionID:    s.ID,
		HP:           p.HP,
		MaxHP:        p.MaxHP,
		Level:        s.Progress.Level,
		XP:           s.Progress.XP,
		XPToNext:     s.Progress.Threshold(),
		Score:        s.score,
		SurvivalTime: s.survivalMs / 1000,
		Wave:         s.Waves.Wave(),
		Kills:        s.kills,
		Paused:       s.Paused(),
		Position:     p.Position,
		Weapons:      s.World.Inventory.WeaponStates(),
		Passives:     s.World.Inventory.PassiveStates(),
		Quiz:         s.quizStats,
		Monsters:     s.World.LiveMonsters(),
		Effects:      len(s.World.Effects()),
		Pickups:      len(s.World.Pickups()),
	}
}

// emit Update 期间暂存，否则立即发布
func (s *Session) emit(t event.EventType, payload interface{}) {
	s.outbox = append(s.outbox, event.Event{Type: t, Payload: payload})
	if !s.inUpdate {
		s.flush()
	}
}

func (s *Session) flush() {
	s.inUpdate = false
	for len(s.outbox) > 0 {
		ev := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.bus.Publish(ev.Type, ev.Payload)
	}
}
