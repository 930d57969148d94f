// stats.go

package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// StatsHandler 战绩处理器：排行榜和对局记录
type StatsHandler struct {
	redisLeaderboard *models.RedisLeaderboard
	cache            *ResponseCache
	recentRuns       func(ctx context.Context, playerID int64, limit int) ([]models.RunRecord, error)
}

// NewStatsHandler 创建战绩处理器
func NewStatsHandler(cache *ResponseCache) *StatsHandler {
	h := &StatsHandler{cache: cache, recentRuns: db.RecentRuns}
	if db.RedisClient != nil {
		h.redisLeaderboard = models.NewRedisLeaderboard(db.RedisClient, db.DB)
	}
	return h
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/runs/", h.handlePlayerRuns)
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/leaderboard/refresh", h.handleRefreshLeaderboard)
}

// RunsData 对局记录响应数据
type RunsData struct {
	Runs  []RunView `json:"runs"`
	Limit int       `json:"limit"`
}

// RunView 对局记录及其答题正确率
type RunView struct {
	models.RunRecord
	Accuracy float64 `json:"accuracy"`
}

// handlePlayerRuns 查询玩家最近的对局
func (h *StatsHandler) handlePlayerRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	playerID, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/stats/runs/"), 10, 64)
	if err != nil || playerID <= 0 {
		sendError(w, "无效的玩家ID", http.StatusBadRequest)
		return
	}

	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	runs, err := h.recentRuns(r.Context(), playerID, limit)
	if err != nil {
		log.Printf("查询玩家 %d 对局记录失败: %v", playerID, err)
		sendError(w, "查询对局记录失败", http.StatusInternalServerError)
		return
	}

	views := make([]RunView, 0, len(runs))
	for i := range runs {
		views = append(views, RunView{RunRecord: runs[i], Accuracy: runs[i].Accuracy()})
	}
	sendSuccess(w, "查询成功", RunsData{Runs: views, Limit: limit})
}

// handleLeaderboard 处理排行榜查询，type为 score/survival/kills
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	boardType := models.LeaderboardType(query.Get("type"))
	if boardType == "" {
		boardType = models.LeaderboardScore
	}
	switch boardType {
	case models.LeaderboardScore, models.LeaderboardSurvival, models.LeaderboardKills:
	default:
		sendError(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}

	limit := 50
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	board, err := h.getLeaderboard(r.Context(), boardType, limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		sendError(w, "查询排行榜失败", http.StatusServiceUnavailable)
		return
	}

	sendSuccess(w, "查询成功", board)
}

// handleRefreshLeaderboard 从数据库重建Redis排行榜
func (h *StatsHandler) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	if h.redisLeaderboard == nil {
		sendError(w, "Redis未启用，无需刷新", http.StatusBadRequest)
		return
	}

	if err := h.redisLeaderboard.RefreshLeaderboard(r.Context()); err != nil {
		log.Printf("刷新排行榜失败: %v", err)
		sendError(w, "刷新排行榜失败", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate("/stats/leaderboard")
	}

	sendSuccess(w, "排行榜刷新成功", nil)
}

// getLeaderboard 优先从Redis读取，失败时查询数据库视图
func (h *StatsHandler) getLeaderboard(ctx context.Context, boardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if h.redisLeaderboard != nil {
		board, err := h.redisLeaderboard.GetLeaderboard(ctx, boardType, limit)
		if err == nil && len(board) > 0 {
			return board, nil
		}
		if err != nil {
			log.Printf("Redis排行榜不可用，回退到数据库: %v", err)
		}
	}
	return getLeaderboardFromDB(ctx, boardType, limit)
}

// leaderboardOrder 各榜单在数据库视图中的排序列
var leaderboardOrder = map[models.LeaderboardType]string{
	models.LeaderboardScore:    "best_score",
	models.LeaderboardSurvival: "best_survival",
	models.LeaderboardKills:    "total_kills",
}

// getLeaderboardFromDB 从数据库视图查询排行榜
func getLeaderboardFromDB(ctx context.Context, boardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("数据库未初始化")
	}

	column := leaderboardOrder[boardType]
	rows, err := db.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT player_id, username, best_score, best_survival, total_kills, accuracy, %s
		FROM leaderboard
		ORDER BY %s DESC
		LIMIT $1`, column, column), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.BestScore, &e.BestSurvival,
			&e.TotalKills, &e.Accuracy, &e.Score); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
