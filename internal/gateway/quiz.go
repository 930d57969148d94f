// quiz.go

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// 上传题库的请求体上限
const maxQuizSetBytes = 1 << 20

// QuizHandler 题库处理器，接收外部生成好的题库
type QuizHandler struct {
	auth  *AuthHandler
	cache *ResponseCache

	save func(ctx context.Context, set *models.QuizSet) error
	load func(ctx context.Context, id string) (*models.QuizSet, error)
	list func(ctx context.Context, ownerID int64, limit int) ([]models.QuizSet, error)
}

// NewQuizHandler 创建题库处理器
func NewQuizHandler(auth *AuthHandler, cache *ResponseCache) *QuizHandler {
	return &QuizHandler{
		auth:  auth,
		cache: cache,
		save:  db.SaveQuizSet,
		load:  db.LoadQuizSet,
		list:  db.ListQuizSets,
	}
}

// UploadQuizSetRequest 上传题库请求
type UploadQuizSetRequest struct {
	Title   string        `json:"title"`
	Quizzes []models.Quiz `json:"quizzes"`
}

// QuizSetSummary 题库列表项
type QuizSetSummary struct {
	ID      string `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`
}

// RegisterHandlers 注册HTTP处理器
func (h *QuizHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/quiz/sets", h.handleSets)
	mux.HandleFunc("/quiz/sets/", h.auth.RequireAuth(h.handleGetSet))
}

// handleSets GET列出题库，POST上传题库
func (h *QuizHandler) handleSets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListSets(w, r)
	case http.MethodPost:
		h.auth.RequireAuth(h.handleUpload)(w, r)
	default:
		sendError(w, "仅支持GET和POST方法", http.StatusMethodNotAllowed)
	}
}

// handleUpload 校验并保存题库
func (h *QuizHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req UploadQuizSetRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuizSetBytes)).Decode(&req); err != nil {
		sendError(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	set := &models.QuizSet{
		OwnerID: claims.PlayerID,
		Title:   req.Title,
		Quizzes: req.Quizzes,
	}
	if err := set.Validate(); err != nil {
		sendError(w, "题库无效: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.save(r.Context(), set); err != nil {
		log.Printf("保存题库失败: %v", err)
		sendError(w, "保存题库失败", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate("/quiz/sets")
	}

	log.Printf("玩家 %d 上传题库 %s，共 %d 题", claims.PlayerID, set.ID, len(set.Quizzes))
	sendSuccess(w, "上传成功", QuizSetSummary{ID: set.ID, OwnerID: set.OwnerID, Title: set.Title})
}

// handleListSets 列出题库，owner参数筛选上传者
func (h *QuizHandler) handleListSets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var ownerID int64
	if s := query.Get("owner"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			sendError(w, "无效的玩家ID", http.StatusBadRequest)
			return
		}
		ownerID = id
	}
	limit, _ := strconv.Atoi(query.Get("limit"))

	sets, err := h.list(r.Context(), ownerID, limit)
	if err != nil {
		log.Printf("查询题库列表失败: %v", err)
		sendError(w, "查询题库列表失败", http.StatusInternalServerError)
		return
	}

	out := make([]QuizSetSummary, 0, len(sets))
	for _, s := range sets {
		out = append(out, QuizSetSummary{ID: s.ID, OwnerID: s.OwnerID, Title: s.Title})
	}
	sendSuccess(w, "查询成功", out)
}

// handleGetSet 查看完整题库（含答案），仅限上传者
func (h *QuizHandler) handleGetSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/quiz/sets/")
	if id == "" || strings.Contains(id, "/") {
		sendError(w, "无效的题库ID", http.StatusBadRequest)
		return
	}

	set, err := h.load(r.Context(), id)
	if errors.Is(err, db.ErrQuizSetNotFound) {
		sendError(w, "题库不存在", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("查询题库 %s 失败: %v", id, err)
		sendError(w, "查询题库失败", http.StatusInternalServerError)
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	if set.OwnerID != claims.PlayerID {
		sendError(w, "无权查看该题库", http.StatusForbidden)
		return
	}

	sendSuccess(w, "查询成功", set)
}
