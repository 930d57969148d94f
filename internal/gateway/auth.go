package gateway

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// 令牌签发者
const tokenIssuer = "pixelstorm-quiz"

var (
	errInvalidCredentials = errors.New("用户名或密码错误")
	errTokenRevoked       = errors.New("令牌已注销")
)

// Claims 令牌声明
type Claims struct {
	PlayerID int64  `json:"pid"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// AuthHandler 认证处理器，签发HS256令牌，注销的令牌记录在Redis(不可用时在内存)
type AuthHandler struct {
	secret   []byte
	tokenTTL time.Duration

	revoked    map[string]time.Time
	revokedMux sync.Mutex
	useRedis   bool
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	PlayerID int64  `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{
		secret:   []byte(secret),
		tokenTTL: ttl,
		revoked:  make(map[string]time.Time),
		useRedis: db.RedisClient != nil,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/validate", h.handleValidate)
	mux.HandleFunc("/auth/logout", h.handleLogout)
}

// handleLogin 处理登录请求
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	playerID, err := h.validateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Message: errInvalidCredentials.Error()})
		return
	}

	h.issue(w, playerID, req.Username, "登录成功")
}

// handleRegister 处理注册请求
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}

	playerID, err := h.createUser(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeJSON(w, http.StatusConflict, AuthResponse{Message: fmt.Sprintf("注册失败: %v", err)})
		return
	}

	h.issue(w, playerID, req.Username, "注册成功")
}

// issue 签发令牌并写入响应
func (h *AuthHandler) issue(w http.ResponseWriter, playerID int64, username, message string) {
	token, err := h.GenerateToken(playerID, username)
	if err != nil {
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success:  true,
		Message:  message,
		Token:    token,
		PlayerID: playerID,
		Username: username,
	})
}

// handleValidate 处理令牌验证请求
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	token := tokenFromRequest(r)
	if token == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	claims, err := h.ParseToken(token)
	if err != nil {
		http.Error(w, "无效或已过期的令牌", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success:  true,
		Message:  "令牌有效",
		PlayerID: claims.PlayerID,
		Username: claims.Username,
	})
}

// handleLogout 注销令牌，直到令牌自然过期前都不再接受
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	claims, err := h.ParseToken(tokenFromRequest(r))
	if err != nil {
		http.Error(w, "无效或已过期的令牌", http.StatusUnauthorized)
		return
	}

	h.revoke(r.Context(), claims)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "登出成功"})
}

// GenerateToken 签发令牌
func (h *AuthHandler) GenerateToken(playerID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", playerID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// ParseToken 校验签名、签发者、有效期和注销状态
func (h *AuthHandler) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if h.isRevoked(context.Background(), claims.ID) {
		return nil, errTokenRevoked
	}
	return claims, nil
}

// ValidateToken 验证令牌（供游戏服务器使用）
func (h *AuthHandler) ValidateToken(token string) (int64, string, bool) {
	claims, err := h.ParseToken(token)
	if err != nil {
		return 0, "", false
	}
	return claims.PlayerID, claims.Username, true
}

// revoke 记录注销的令牌ID，保存到令牌过期为止
func (h *AuthHandler) revoke(ctx context.Context, claims *Claims) {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}

	if h.useRedis {
		if err := db.RedisClient.Set(ctx, "revoked:"+claims.ID, 1, ttl).Err(); err == nil {
			return
		}
	}

	h.revokedMux.Lock()
	defer h.revokedMux.Unlock()
	now := time.Now()
	for id, exp := range h.revoked {
		if now.After(exp) {
			delete(h.revoked, id)
		}
	}
	h.revoked[claims.ID] = claims.ExpiresAt.Time
}

// isRevoked 查询令牌是否已注销
func (h *AuthHandler) isRevoked(ctx context.Context, id string) bool {
	if h.useRedis {
		n, err := db.RedisClient.Exists(ctx, "revoked:"+id).Result()
		if err == nil && n > 0 {
			return true
		}
	}

	h.revokedMux.Lock()
	defer h.revokedMux.Unlock()
	_, ok := h.revoked[id]
	return ok
}

// validateCredentials 验证用户凭据
func (h *AuthHandler) validateCredentials(ctx context.Context, username, password string) (int64, error) {
	if db.DB == nil {
		return 0, fmt.Errorf("数据库未初始化")
	}

	var playerID int64
	err := db.DB.QueryRowContext(ctx,
		"SELECT id FROM players WHERE username = $1 AND password = $2", username, hashPassword(password),
	).Scan(&playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, errInvalidCredentials
		}
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}

	return playerID, nil
}

// createUser 创建用户
func (h *AuthHandler) createUser(ctx context.Context, username, password, email string) (int64, error) {
	if db.DB == nil {
		return 0, fmt.Errorf("数据库未初始化")
	}

	var count int
	err := db.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players WHERE username = $1 OR email = $2", username, email,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("用户名或邮箱已存在")
	}

	var playerID int64
	err = db.DB.QueryRowContext(ctx,
		"INSERT INTO players (username, password, email, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id",
		username, hashPassword(password), email,
	).Scan(&playerID)
	if err != nil {
		return 0, fmt.Errorf("创建用户失败: %w", err)
	}

	return playerID, nil
}

// hashPassword 计算密码哈希
func hashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}

// tokenFromRequest 从Authorization头或查询参数读取令牌
func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
