package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/event"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
)

func TestSnapshotFrame(t *testing.T) {
	snap := models.PlayerSnapshot{
		SessionID: "s-1",
		HP:        72.5,
		MaxHP:     120,
		Level:     4,
		Wave:      3,
		Weapons:   []models.WeaponState{{ID: "magic_bolt", Level: 2}},
		Quiz:      models.QuizStats{Answered: 3, Correct: 2},
	}

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap.HP, got.HP)
	assert.Equal(t, snap.Level, got.Level)
	assert.Equal(t, snap.Quiz, got.Quiz)
	require.Len(t, got.Weapons, 1)
	assert.Equal(t, "magic_bolt", got.Weapons[0].ID)
}

func TestDecodeSnapshotRejectsOtherFrames(t *testing.T) {
	data, err := EncodeEvent(event.Event{Type: event.WaveChanged, Payload: event.WaveChangedPayload{Wave: 2}})
	require.NoError(t, err)

	_, err = DecodeSnapshot(data)
	assert.True(t, errors.Is(err, ErrUnexpectedFrame))
}

func TestLevelUpFrameHidesAnswer(t *testing.T) {
	quiz := &models.Quiz{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3, Explanation: "secret"}
	data, err := EncodeEvent(event.Event{Type: event.LevelUp, Payload: event.LevelUpPayload{
		Proposal: models.LevelUpProposal{Level: 2, HasQuiz: true},
		Quiz:     quiz,
	}})
	require.NoError(t, err)

	var frame struct {
		Type    string                 `msgpack:"type"`
		Payload map[string]interface{} `msgpack:"payload"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &frame))
	assert.Equal(t, string(event.LevelUp), frame.Type)

	q, ok := frame.Payload["quiz"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "q", q["question"])
	assert.NotContains(t, q, "CorrectIndex")
	assert.NotContains(t, q, "correct_index")
	assert.NotContains(t, q, "Explanation")
}

func TestDecodeCommandText(t *testing.T) {
	ev, err := DecodeCommand([]byte(`{"type":"quiz-result","payload":{"answer":1}}`), true)
	require.NoError(t, err)
	assert.Equal(t, event.QuizResult, ev.Type)
	assert.Equal(t, event.QuizResultPayload{Answer: 1}, ev.Payload)

	ev, err = DecodeCommand([]byte(`{"type":"quiz-result","payload":{"correct":true}}`), true)
	require.NoError(t, err)
	assert.Equal(t, event.QuizResultPayload{Answer: -1}, ev.Payload)

	ev, err = DecodeCommand([]byte(`{"type":"pause-game"}`), true)
	require.NoError(t, err)
	assert.Equal(t, event.PauseGame, ev.Type)
	assert.Nil(t, ev.Payload)
}

func TestDecodeCommandBinary(t *testing.T) {
	data, err := msgpack.Marshal(map[string]interface{}{
		"type":    string(event.JoystickMove),
		"payload": map[string]interface{}{"x": 0.5, "y": -1.0},
	})
	require.NoError(t, err)

	ev, err := DecodeCommand(data, false)
	require.NoError(t, err)
	assert.Equal(t, event.MovePayload{X: 0.5, Y: -1}, ev.Payload)
}

func TestDecodeCommandErrors(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"type":"game-over"}`), true)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = DecodeCommand([]byte(`{"type":"upgrade-selected"}`), true)
	assert.Error(t, err)

	_, err = DecodeCommand([]byte(`not json`), true)
	assert.Error(t, err)
}

func TestDigestEncoding(t *testing.T) {
	d := models.PlayerDigest{
		RoomID:       "room-1",
		PlayerID:     42,
		Username:     "alice",
		HP:           80,
		Level:        7,
		XP:           3,
		Score:        1200,
		SurvivalTime: 95.5,
		Wave:         4,
		Kills:        130,
		Finished:     true,
		UpdatedAt:    time.UnixMilli(1700000000123),
	}

	data, err := EncodeDigest(d)
	require.NoError(t, err)

	got, err := DecodeDigest(data)
	require.NoError(t, err)
	assert.Equal(t, d.PlayerID, got.PlayerID)
	assert.Equal(t, d.Username, got.Username)
	assert.Equal(t, d.Score, got.Score)
	assert.Equal(t, d.SurvivalTime, got.SurvivalTime)
	assert.True(t, got.Finished)
	assert.True(t, d.UpdatedAt.Equal(got.UpdatedAt))

	_, err = DecodeDigest([]byte{0xff, 0xff})
	assert.Error(t, err)
}

func TestLeaderboardJSON(t *testing.T) {
	out, err := LeaderboardJSON([]models.PlayerDigest{
		{Username: "a", Score: 10},
		{Username: "b", Score: 5},
	})
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["username"])
	assert.Equal(t, 10.0, rows[0]["score"])
}
