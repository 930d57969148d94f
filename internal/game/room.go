package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/protocol"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

const (
	// 排行榜推送间隔
	leaderboardInterval = time.Second
	// 空房间保留时间
	roomIdleTimeout = 5 * time.Minute
)

// Room 大厅房间：成员各自进行独立的对局，只通过摘要共享排行榜
type Room struct {
	ID         string
	Status     models.RoomStatus
	MaxPlayers int
	CreatedAt  time.Time

	members      map[string]*PlayerConnection
	digests      map[int64]models.PlayerDigest
	dirty        bool
	lastActivity time.Time
	mutex        sync.RWMutex

	pubsub    *redis.PubSub
	shutdown  chan struct{}
	isRunning bool
	stopOnce  sync.Once
}

// NewRoom 创建新房间
func NewRoom(id string, maxPlayers int) *Room {
	now := time.Now()
	return &Room{
		ID:           id,
		Status:       models.RoomWaiting,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		members:      make(map[string]*PlayerConnection),
		digests:      make(map[int64]models.PlayerDigest),
		lastActivity: now,
		shutdown:     make(chan struct{}),
	}
}

// Start 启动房间；Redis可用时订阅房间频道，否则只在本进程内合并摘要
func (r *Room) Start() error {
	r.mutex.Lock()
	if r.isRunning {
		r.mutex.Unlock()
		return fmt.Errorf("房间已经在运行")
	}
	if r.Status == models.RoomEnded {
		r.mutex.Unlock()
		return fmt.Errorf("房间已关闭")
	}
	r.isRunning = true
	r.mutex.Unlock()

	if db.RedisClient != nil {
		ps, err := db.SubscribeDigests(context.Background(), r.ID)
		if err != nil {
			log.Printf("房间 %s 订阅失败，改为本地模式: %v", r.ID, err)
		} else {
			r.mutex.Lock()
			stopped := r.Status == models.RoomEnded
			if !stopped {
				r.pubsub = ps
			}
			r.mutex.Unlock()
			if stopped {
				ps.Close()
				return nil
			}
			go r.receiveLoop(ps.Channel())
		}
	}

	go r.broadcastLoop()

	log.Printf("房间 %s 启动", r.ID)
	return nil
}

// Stop 停止房间
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.shutdown)

		r.mutex.Lock()
		ps := r.pubsub
		r.pubsub = nil
		r.Status = models.RoomEnded
		r.isRunning = false
		r.mutex.Unlock()

		if ps != nil {
			ps.Close()
		}

		log.Printf("房间 %s 已停止", r.ID)
	})
}

// AddPlayer 添加玩家到房间
func (r *Room) AddPlayer(pc *PlayerConnection) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Status == models.RoomEnded {
		return fmt.Errorf("房间已关闭")
	}
	if r.MaxPlayers > 0 && len(r.members) >= r.MaxPlayers {
		return fmt.Errorf("房间已满")
	}

	r.members[pc.ID] = pc
	r.Status = models.RoomPlaying
	r.lastActivity = time.Now()
	r.dirty = true
	return nil
}

// RemovePlayer 从房间移除玩家，摘要保留在排行榜上
func (r *Room) RemovePlayer(connID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.members[connID]; !ok {
		return
	}
	delete(r.members, connID)
	r.lastActivity = time.Now()
	if len(r.members) == 0 && r.Status == models.RoomPlaying {
		r.Status = models.RoomWaiting
	}
}

// GetPlayerCount 获取房间人数
func (r *Room) GetPlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.members)
}

// ShouldCleanup 房间空闲超时后可以清理
func (r *Room) ShouldCleanup() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.members) == 0 && time.Since(r.lastActivity) > roomIdleTimeout
}

// PublishDigest 发布玩家摘要
func (r *Room) PublishDigest(d models.PlayerDigest) {
	d.RoomID = r.ID

	r.mutex.RLock()
	subscribed := r.pubsub != nil
	r.mutex.RUnlock()

	if subscribed {
		data, err := protocol.EncodeDigest(d)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err = db.PublishDigest(ctx, r.ID, data)
			cancel()
		}
		if err == nil {
			return
		}
		log.Printf("房间 %s 发布摘要失败: %v", r.ID, err)
	}

	r.ApplyDigest(d)
}

// ApplyDigest 合并一条摘要，较旧的摘要不会覆盖较新的
func (r *Room) ApplyDigest(d models.PlayerDigest) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if prev, ok := r.digests[d.PlayerID]; ok && prev.UpdatedAt.After(d.UpdatedAt) {
		return
	}
	r.digests[d.PlayerID] = d
	r.dirty = true
	r.lastActivity = time.Now()
}

// Leaderboard 当前排行榜
func (r *Room) Leaderboard() []models.PlayerDigest {
	r.mutex.RLock()
	board := make([]models.PlayerDigest, 0, len(r.digests))
	for _, d := range r.digests {
		board = append(board, d)
	}
	r.mutex.RUnlock()

	models.SortDigests(board)
	return board
}

// Info 房间信息
func (r *Room) Info() models.Room {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	info := models.Room{
		ID:         r.ID,
		Name:       r.ID,
		Status:     r.Status,
		MaxPlayers: r.MaxPlayers,
		CreatedAt:  r.CreatedAt,
	}
	for _, pc := range r.members {
		info.Players = append(info.Players, models.RoomPlayer{
			PlayerID: pc.PlayerID,
			Username: pc.Username,
			Ready:    !pc.Closed(),
		})
	}
	return info
}

// receiveLoop 接收其他服务实例发布的摘要
func (r *Room) receiveLoop(ch <-chan *redis.Message) {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d, err := protocol.DecodeDigest([]byte(msg.Payload))
			if err != nil {
				log.Printf("房间 %s 收到无效摘要: %v", r.ID, err)
				continue
			}
			r.ApplyDigest(d)
		case <-r.shutdown:
			return
		}
	}
}

// broadcastLoop 定时向成员推送排行榜
func (r *Room) broadcastLoop() {
	ticker := time.NewTicker(leaderboardInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.broadcastLeaderboard()
		case <-r.shutdown:
			return
		}
	}
}

// broadcastLeaderboard 排行榜有变化时推送给所有成员
func (r *Room) broadcastLeaderboard() {
	r.mutex.Lock()
	if !r.dirty {
		r.mutex.Unlock()
		return
	}
	r.dirty = false
	members := make([]*PlayerConnection, 0, len(r.members))
	for _, pc := range r.members {
		members = append(members, pc)
	}
	r.mutex.Unlock()

	data, err := protocol.EncodeLeaderboard(r.Leaderboard())
	if err != nil {
		log.Printf("房间 %s 编码排行榜失败: %v", r.ID, err)
		return
	}
	for _, pc := range members {
		pc.send(data)
	}
}
