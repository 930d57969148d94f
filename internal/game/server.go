package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/protocol"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// TokenValidator 校验客户端令牌
type TokenValidator interface {
	ValidateToken(token string) (int64, string, bool)
}

// QuizLoader 按ID加载题库
type QuizLoader func(ctx context.Context, id string) (*models.QuizSet, error)

// RunRecorder 对局结束后保存记录
type RunRecorder func(ctx context.Context, rec *models.RunRecord, username string)

// GameServer 游戏服务器，每个WebSocket连接托管一局独立的战斗
type GameServer struct {
	config      *config.Config
	auth        TokenValidator
	loadQuizSet QuizLoader
	recordRun   RunRecorder
	rooms       map[string]*Room
	roomsMutex  sync.RWMutex
	httpServer  *http.Server
	connections map[string]*PlayerConnection
	connMutex   sync.RWMutex

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, auth TokenValidator) *GameServer {
	s := &GameServer{
		config:      cfg,
		auth:        auth,
		loadQuizSet: db.LoadQuizSet,
		rooms:       make(map[string]*Room),
		connections: make(map[string]*PlayerConnection),
		shutdown:    make(chan struct{}),
	}
	s.recordRun = s.persistRun
	return s
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler: s.createHandler(),
	}

	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.GamePort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	// 启动房间管理
	go s.roomManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	s.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	log.Println("游戏服务器已停止")
	return nil
}

// closeAll 通知所有战斗循环退出并关闭房间和连接
func (s *GameServer) closeAll() {
	close(s.shutdown)

	s.roomsMutex.Lock()
	for _, room := range s.rooms {
		room.Stop()
	}
	s.roomsMutex.Unlock()

	s.connMutex.RLock()
	conns := make([]*PlayerConnection, 0, len(s.connections))
	for _, pc := range s.connections {
		conns = append(conns, pc)
	}
	s.connMutex.RUnlock()

	for _, pc := range conns {
		s.closeConnection(pc)
	}
}

// createHandler 创建HTTP处理器
func (s *GameServer) createHandler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 房间列表与房间排行榜
	mux.HandleFunc("/rooms", s.handleListRooms)
	mux.HandleFunc("/rooms/leaderboard", s.handleRoomLeaderboard)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// handleListRooms 列出所有房间
func (s *GameServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.ListRooms()
	infos := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// handleRoomLeaderboard 输出房间排行榜
func (s *GameServer) handleRoomLeaderboard(w http.ResponseWriter, r *http.Request) {
	room, ok := s.GetRoom(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "房间不存在", http.StatusNotFound)
		return
	}

	data, err := protocol.LeaderboardJSON(room.Leaderboard())
	if err != nil {
		http.Error(w, "生成排行榜失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// roomManager 房间管理器
func (s *GameServer) roomManager() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupRooms()
		case <-s.shutdown:
			return
		}
	}
}

// cleanupRooms 清理空闲房间
func (s *GameServer) cleanupRooms() {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	for id, room := range s.rooms {
		if room.ShouldCleanup() {
			log.Printf("清理空闲房间: %s", id)
			room.Stop()
			delete(s.rooms, id)
		}
	}
}

// JoinRoom 获取或创建房间，房间ID由客户端指定以便多个服务实例共享同一个频道
func (s *GameServer) JoinRoom(roomID string) (*Room, error) {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	if room, ok := s.rooms[roomID]; ok {
		return room, nil
	}

	if max := s.config.Server.MaxRoomCount; max > 0 && len(s.rooms) >= max {
		return nil, errors.New("房间数量已达上限")
	}

	room := NewRoom(roomID, s.config.Server.MaxPlayers)
	if err := room.Start(); err != nil {
		return nil, err
	}
	s.rooms[room.ID] = room

	log.Printf("创建房间: %s, 最大玩家数: %d", room.ID, room.MaxPlayers)
	return room, nil
}

// GetRoom 获取房间
func (s *GameServer) GetRoom(roomID string) (*Room, bool) {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	room, exists := s.rooms[roomID]
	return room, exists
}

// ListRooms 列出所有房间
func (s *GameServer) ListRooms() []*Room {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}

	return rooms
}

// persistRun 保存对局记录并更新排行榜
func (s *GameServer) persistRun(ctx context.Context, rec *models.RunRecord, username string) {
	if db.DB != nil {
		if err := db.SaveRun(ctx, rec); err != nil {
			log.Printf("保存玩家 %d 对局记录失败: %v", rec.PlayerID, err)
		}
	}

	if db.RedisClient != nil {
		lb := models.NewRedisLeaderboard(db.RedisClient, db.DB)
		if err := lb.RecordRun(ctx, rec.PlayerID, username, rec.RunSummary); err != nil {
			log.Printf("更新排行榜失败: %v", err)
		}
	}
}
