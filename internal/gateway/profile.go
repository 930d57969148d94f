package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// ProfileHandler 玩家资料处理器
type ProfileHandler struct {
	leaderboard *models.RedisLeaderboard
}

// NewProfileHandler 创建玩家资料处理器
func NewProfileHandler() *ProfileHandler {
	h := &ProfileHandler{}
	if db.RedisClient != nil {
		h.leaderboard = models.NewRedisLeaderboard(db.RedisClient, db.DB)
	}
	return h
}

// RegisterHandlers 注册HTTP处理器
func (h *ProfileHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/players/", h.handlePlayerProfile)
}

// PlayerProfileInfo 玩家资料
type PlayerProfileInfo struct {
	*models.Player
	Accuracy float64                        `json:"accuracy"`
	Ranks    map[models.LeaderboardType]int `json:"ranks,omitempty"`
}

// handlePlayerProfile 处理 GET /players/{id}/profile
func (h *ProfileHandler) handlePlayerProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/players/"), "/")
	if len(parts) != 2 || parts[1] != "profile" {
		sendError(w, "未知的请求路径", http.StatusNotFound)
		return
	}

	playerID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || playerID <= 0 {
		sendError(w, "无效的玩家ID", http.StatusBadRequest)
		return
	}

	player, err := getPlayerByID(r.Context(), playerID)
	if errors.Is(err, sql.ErrNoRows) {
		sendError(w, "玩家不存在", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("查询玩家信息失败: %v", err)
		sendError(w, "查询玩家信息失败", http.StatusInternalServerError)
		return
	}

	info := &PlayerProfileInfo{
		Player:   player,
		Accuracy: models.QuizStats{Answered: player.TotalAnswered, Correct: player.TotalCorrect}.Accuracy(),
	}

	// 排名查询失败不影响基本信息返回
	if h.leaderboard != nil {
		info.Ranks = make(map[models.LeaderboardType]int)
		for _, t := range []models.LeaderboardType{models.LeaderboardScore, models.LeaderboardSurvival, models.LeaderboardKills} {
			if rank, err := h.leaderboard.GetPlayerRank(r.Context(), playerID, t); err == nil && rank > 0 {
				info.Ranks[t] = rank
			}
		}
	}

	sendSuccess(w, "查询成功", info)
}

// getPlayerByID 根据ID获取玩家信息
func getPlayerByID(ctx context.Context, playerID int64) (*models.Player, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}

	var p models.Player
	err := db.DB.QueryRowContext(ctx, `
		SELECT id, username, email, created_at, updated_at,
		       best_score, best_survival, total_kills, total_runs, total_answered, total_correct
		FROM players
		WHERE id = $1`, playerID,
	).Scan(
		&p.ID, &p.Username, &p.Email, &p.CreatedAt, &p.UpdatedAt,
		&p.BestScore, &p.BestSurvival, &p.TotalKills, &p.TotalRuns, &p.TotalAnswered, &p.TotalCorrect,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
