// codec.go

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/event"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// RoomLeaderboard 房间排行榜推送的帧类型
const RoomLeaderboard event.EventType = "room-leaderboard"

var (
	// ErrUnknownCommand 未知的客户端指令
	ErrUnknownCommand = errors.New("未知指令")
	// ErrUnexpectedFrame 帧类型与期望不符
	ErrUnexpectedFrame = errors.New("帧类型不匹配")
)

// Frame 服务端下发的帧
type Frame struct {
	Type    event.EventType `msgpack:"type" json:"type"`
	Payload interface{}     `msgpack:"payload,omitempty" json:"payload,omitempty"`
}

// inbound 解码时先保留原始负载，再按类型解析
type inbound struct {
	Type    event.EventType    `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// jsonInbound 文本帧
type jsonInbound struct {
	Type    event.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent 将事件编码为msgpack二进制帧
func EncodeEvent(ev event.Event) ([]byte, error) {
	data, err := msgpack.Marshal(&Frame{Type: ev.Type, Payload: ev.Payload})
	if err != nil {
		return nil, fmt.Errorf("编码事件 %s 失败: %w", ev.Type, err)
	}
	return data, nil
}

// EncodeSnapshot 编码状态快照
func EncodeSnapshot(snap models.PlayerSnapshot) ([]byte, error) {
	return EncodeEvent(event.Event{Type: event.PlayerStateUpdate, Payload: snap})
}

// DecodeSnapshot 解码状态快照帧
func DecodeSnapshot(data []byte) (models.PlayerSnapshot, error) {
	var snap models.PlayerSnapshot
	var in inbound
	if err := msgpack.Unmarshal(data, &in); err != nil {
		return snap, fmt.Errorf("解析帧失败: %w", err)
	}
	if in.Type != event.PlayerStateUpdate {
		return snap, fmt.Errorf("%w: %s", ErrUnexpectedFrame, in.Type)
	}
	if err := msgpack.Unmarshal(in.Payload, &snap); err != nil {
		return snap, fmt.Errorf("解析快照失败: %w", err)
	}
	return snap, nil
}

// EncodeLeaderboard 编码房间排行榜帧
func EncodeLeaderboard(digests []models.PlayerDigest) ([]byte, error) {
	return EncodeEvent(event.Event{Type: RoomLeaderboard, Payload: digests})
}

// DecodeCommand 解码客户端指令，text为true时按JSON文本帧解析
func DecodeCommand(data []byte, text bool) (event.Event, error) {
	var (
		typ       event.EventType
		raw       []byte
		unmarshal func([]byte, interface{}) error
	)

	if text {
		var in jsonInbound
		if err := json.Unmarshal(data, &in); err != nil {
			return event.Event{}, fmt.Errorf("解析指令失败: %w", err)
		}
		typ, raw, unmarshal = in.Type, in.Payload, json.Unmarshal
	} else {
		var in inbound
		if err := msgpack.Unmarshal(data, &in); err != nil {
			return event.Event{}, fmt.Errorf("解析指令失败: %w", err)
		}
		typ, raw, unmarshal = in.Type, in.Payload, msgpack.Unmarshal
	}

	decode := func(v interface{}) error {
		if len(raw) == 0 {
			return fmt.Errorf("指令 %s 缺少负载", typ)
		}
		if err := unmarshal(raw, v); err != nil {
			return fmt.Errorf("解析指令 %s 负载失败: %w", typ, err)
		}
		return nil
	}

	switch typ {
	case event.UpgradeSelected:
		var p event.UpgradeSelectedPayload
		if err := decode(&p); err != nil {
			return event.Event{}, err
		}
		return event.Event{Type: typ, Payload: p}, nil
	case event.QuizResult:
		p := event.QuizResultPayload{Answer: -1}
		if err := decode(&p); err != nil {
			return event.Event{}, err
		}
		return event.Event{Type: typ, Payload: p}, nil
	case event.JoystickMove, event.KeyboardMove:
		var p event.MovePayload
		if err := decode(&p); err != nil {
			return event.Event{}, err
		}
		return event.Event{Type: typ, Payload: p}, nil
	case event.PauseGame, event.ResumeGame:
		return event.Event{Type: typ}, nil
	default:
		return event.Event{}, fmt.Errorf("%w: %s", ErrUnknownCommand, typ)
	}
}
