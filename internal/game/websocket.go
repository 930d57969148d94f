// websocket.go

package game

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/event"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/protocol"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 客户端指令都很小
	maxMessageSize = 4 * 1024

	sendBuffer    = 256
	commandBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID         string
	PlayerID   int64
	Username   string
	Room       *Room
	QuizSetID  string
	LastActive time.Time

	// 下发帧
	Send chan []byte
	// 客户端指令，由战斗循环消费
	commands chan event.Event

	done      chan struct{}
	closeOnce sync.Once
}

func newPlayerConnection(playerID int64, username string) *PlayerConnection {
	return &PlayerConnection{
		ID:         uuid.New().String(),
		PlayerID:   playerID,
		Username:   username,
		LastActive: time.Now(),
		Send:       make(chan []byte, sendBuffer),
		commands:   make(chan event.Event, commandBuffer),
		done:       make(chan struct{}),
	}
}

// Closed 连接是否已关闭
func (pc *PlayerConnection) Closed() bool {
	select {
	case <-pc.done:
		return true
	default:
		return false
	}
}

// send 投递一帧，发送队列满时返回false
func (pc *PlayerConnection) send(data []byte) bool {
	if pc.Closed() {
		return false
	}
	select {
	case pc.Send <- data:
		return true
	default:
		return false
	}
}

// handleWSConnection 处理WebSocket连接
// 查询参数: token 必填，quiz_set 题库ID，room 房间ID
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	playerID, username, ok := s.auth.ValidateToken(query.Get("token"))
	if !ok {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	var quizzes []models.Quiz
	quizSetID := query.Get("quiz_set")
	if quizSetID != "" {
		set, err := s.loadQuizSet(r.Context(), quizSetID)
		if errors.Is(err, db.ErrQuizSetNotFound) {
			http.Error(w, "题库不存在", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("加载题库 %s 失败: %v", quizSetID, err)
			http.Error(w, "加载题库失败", http.StatusInternalServerError)
			return
		}
		quizzes = set.Quizzes
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	pc := newPlayerConnection(playerID, username)
	pc.QuizSetID = quizSetID

	if roomID := query.Get("room"); roomID != "" {
		room, err := s.JoinRoom(roomID)
		if err == nil {
			err = room.AddPlayer(pc)
		}
		if err != nil {
			log.Printf("玩家 %d 加入房间 %s 失败: %v", playerID, roomID, err)
		} else {
			pc.Room = room
		}
	}

	s.connMutex.Lock()
	s.connections[pc.ID] = pc
	s.connMutex.Unlock()

	log.Printf("玩家 %d(%s) 已连接", playerID, username)

	go s.readPump(conn, pc)
	go s.writePump(conn, pc)
	go s.runBattle(pc, quizzes)
}

// readPump 读取客户端指令并转交给战斗循环
func (s *GameServer) readPump(conn *websocket.Conn, pc *PlayerConnection) {
	defer func() {
		s.closeConnection(pc)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		cmd, err := protocol.DecodeCommand(message, messageType == websocket.TextMessage)
		if err != nil {
			log.Printf("玩家 %d 指令无效: %v", pc.PlayerID, err)
			continue
		}

		select {
		case pc.commands <- cmd:
		case <-pc.done:
			return
		default:
			log.Printf("玩家 %d 指令队列已满，丢弃 %s", pc.PlayerID, cmd.Type)
		}
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, pc *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-pc.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				s.closeConnection(pc)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeConnection(pc)
				return
			}
		case <-pc.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// closeConnection 关闭玩家连接，可重复调用
func (s *GameServer) closeConnection(pc *PlayerConnection) {
	pc.closeOnce.Do(func() {
		close(pc.done)

		if pc.Room != nil {
			pc.Room.RemovePlayer(pc.ID)
		}

		s.connMutex.Lock()
		delete(s.connections, pc.ID)
		s.connMutex.Unlock()

		log.Printf("玩家 %d 已断开连接", pc.PlayerID)
	})
}

// ConnectionCount 当前连接数
func (s *GameServer) ConnectionCount() int {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return len(s.connections)
}
