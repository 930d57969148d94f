package protocol

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

// ConvertDigestToStruct 将玩家摘要转换为协议消息
func ConvertDigestToStruct(d *models.PlayerDigest) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"room_id":       d.RoomID,
		"player_id":     d.PlayerID,
		"username":      d.Username,
		"hp":            d.HP,
		"level":         d.Level,
		"xp":            d.XP,
		"score":         d.Score,
		"survival_time": d.SurvivalTime,
		"wave":          d.Wave,
		"kills":         d.Kills,
		"finished":      d.Finished,
		"updated_at":    d.UpdatedAt.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("构建摘要消息失败: %w", err)
	}
	return s, nil
}

// ConvertStructToDigest 将协议消息还原为玩家摘要，缺失字段取零值
func ConvertStructToDigest(s *structpb.Struct) models.PlayerDigest {
	f := s.GetFields()
	num := func(key string) float64 { return f[key].GetNumberValue() }

	return models.PlayerDigest{
		RoomID:       f["room_id"].GetStringValue(),
		PlayerID:     int64(num("player_id")),
		Username:     f["username"].GetStringValue(),
		HP:           num("hp"),
		Level:        int(num("level")),
		XP:           int(num("xp")),
		Score:        int(num("score")),
		SurvivalTime: num("survival_time"),
		Wave:         int(num("wave")),
		Kills:        int(num("kills")),
		Finished:     f["finished"].GetBoolValue(),
		UpdatedAt:    time.UnixMilli(int64(num("updated_at"))),
	}
}

// EncodeDigest 序列化玩家摘要，用于Redis发布
func EncodeDigest(d models.PlayerDigest) ([]byte, error) {
	s, err := ConvertDigestToStruct(&d)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("序列化摘要失败: %w", err)
	}
	return data, nil
}

// DecodeDigest 反序列化玩家摘要
func DecodeDigest(data []byte) (models.PlayerDigest, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return models.PlayerDigest{}, fmt.Errorf("解析摘要失败: %w", err)
	}
	return ConvertStructToDigest(&s), nil
}

// LeaderboardJSON 以JSON数组输出房间排行榜
func LeaderboardJSON(digests []models.PlayerDigest) ([]byte, error) {
	values := make([]interface{}, 0, len(digests))
	for i := range digests {
		s, err := ConvertDigestToStruct(&digests[i])
		if err != nil {
			return nil, err
		}
		values = append(values, s.AsMap())
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, fmt.Errorf("构建排行榜失败: %w", err)
	}
	return protojson.Marshal(list)
}
