package game

import (
	"context"
	"log"
	"time"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/event"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/protocol"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/session"
)

// 单帧最大步长(毫秒)，连接卡顿后不会一次推进过久
const maxFrameMs = 250.0

// 转发给客户端的事件
var forwardedEvents = []event.EventType{
	event.GameReady,
	event.PlayerStateUpdate,
	event.LevelUp,
	event.GamePaused,
	event.GameResumed,
	event.GameOver,
	event.MonsterKilled,
	event.WaveChanged,
	event.CameraShake,
	event.QuizVerdict,
}

// runBattle 战斗循环，session只在这个协程里被访问
func (s *GameServer) runBattle(pc *PlayerConnection, quizzes []models.Quiz) {
	bus := event.NewBus()
	sess := session.New(s.config.Game, bus, quizzes)
	defer sess.Close()

	subs := make([]*event.Subscription, 0, len(forwardedEvents)+2)
	for _, et := range forwardedEvents {
		subs = append(subs, bus.Subscribe(et, func(ev event.Event) {
			s.forward(pc, ev)
		}))
	}
	subs = append(subs,
		bus.Subscribe(event.PlayerStateUpdate, func(ev event.Event) {
			if snap, ok := ev.Payload.(models.PlayerSnapshot); ok && pc.Room != nil {
				pc.Room.PublishDigest(digestFromSnapshot(pc, snap, false))
			}
		}),
		bus.Subscribe(event.GameOver, func(ev event.Event) {
			if p, ok := ev.Payload.(event.GameOverPayload); ok {
				s.finishRun(pc, sess, p.Summary)
			}
		}),
	)
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	if err := sess.Start(); err != nil {
		log.Printf("会话启动失败: %v", err)
		s.closeConnection(pc)
		return
	}
	log.Printf("玩家 %d 开始对局 %s", pc.PlayerID, sess.ID)

	tick := time.Duration(s.config.Game.Session.TickMs) * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := float64(now.Sub(last).Microseconds()) / 1000
			last = now
			if dt > maxFrameMs {
				dt = maxFrameMs
			}
			if err := sess.Update(dt); err != nil {
				log.Printf("对局 %s 更新失败: %v", sess.ID, err)
				return
			}
			if sess.Over() {
				return
			}
		case cmd := <-pc.commands:
			bus.Publish(cmd.Type, cmd.Payload)
		case <-pc.done:
			log.Printf("玩家 %d 离开，对局 %s 结束", pc.PlayerID, sess.ID)
			return
		case <-s.shutdown:
			return
		}
	}
}

// forward 编码事件并推送给客户端，发送队列满时断开连接
func (s *GameServer) forward(pc *PlayerConnection, ev event.Event) {
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	if !pc.send(data) && !pc.Closed() {
		log.Printf("玩家 %d 发送队列已满", pc.PlayerID)
		go s.closeConnection(pc)
	}
}

// finishRun 发布最终摘要并异步保存对局记录
func (s *GameServer) finishRun(pc *PlayerConnection, sess *session.Session, summary models.RunSummary) {
	if pc.Room != nil {
		pc.Room.PublishDigest(digestFromSnapshot(pc, sess.Snapshot(), true))
	}

	rec := &models.RunRecord{
		PlayerID:   pc.PlayerID,
		QuizSetID:  pc.QuizSetID,
		StartTime:  sess.StartedAt(),
		EndTime:    time.Now(),
		RunSummary: summary,
	}
	if s.recordRun == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.recordRun(ctx, rec, pc.Username)
	}()
}

// digestFromSnapshot 从快照提取排行榜需要的字段
func digestFromSnapshot(pc *PlayerConnection, snap models.PlayerSnapshot, finished bool) models.PlayerDigest {
	d := models.PlayerDigest{
		PlayerID:     pc.PlayerID,
		Username:     pc.Username,
		HP:           snap.HP,
		Level:        snap.Level,
		XP:           snap.XP,
		Score:        snap.Score,
		SurvivalTime: snap.SurvivalTime,
		Wave:         snap.Wave,
		Kills:        snap.Kills,
		Finished:     finished,
		UpdatedAt:    time.Now(),
	}
	if pc.Room != nil {
		d.RoomID = pc.Room.ID
	}
	return d
}
