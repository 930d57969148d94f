package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PixelStorm-Quiz/internal/models"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

func newTestAuth() *AuthHandler {
	return NewAuthHandler("test-secret", time.Hour)
}

func validQuiz() models.Quiz {
	return models.Quiz{
		Question:     "2+2?",
		Options:      []string{"1", "2", "3", "4"},
		CorrectIndex: 3,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth()

	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.PlayerID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	id, name, ok := auth.ValidateToken(token)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", name)
}

func TestTokenRejected(t *testing.T) {
	auth := newTestAuth()
	token, err := auth.GenerateToken(1, "bob")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewAuthHandler("other", time.Hour).ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewAuthHandler("test-secret", -time.Minute).GenerateToken(1, "bob")
		require.NoError(t, err)
		_, err = auth.ParseToken(expired)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, ok := auth.ValidateToken("not-a-token")
		assert.False(t, ok)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	auth := newTestAuth()
	mux := http.NewServeMux()
	auth.RegisterHandlers(mux)

	token, err := auth.GenerateToken(7, "carol")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, errTokenRevoked)

	// 再次登出同一令牌
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	auth := newTestAuth()
	mux := http.NewServeMux()
	auth.RegisterHandlers(mux)

	token, err := auth.GenerateToken(3, "dave")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/validate?token="+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.PlayerID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/validate", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	auth := newTestAuth()
	handler := auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		sendSuccess(w, "ok", claims.PlayerID)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.GenerateToken(9, "erin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 9, decodeResponse(t, rec).Data)
}

type quizStore struct {
	saved []*models.QuizSet
	sets  map[string]*models.QuizSet
}

func newQuizTestHandler(auth *AuthHandler, cache *ResponseCache, store *quizStore) *QuizHandler {
	return &QuizHandler{
		auth:  auth,
		cache: cache,
		save: func(ctx context.Context, set *models.QuizSet) error {
			set.ID = "set-new"
			store.saved = append(store.saved, set)
			return nil
		},
		load: func(ctx context.Context, id string) (*models.QuizSet, error) {
			if s, ok := store.sets[id]; ok {
				return s, nil
			}
			return nil, db.ErrQuizSetNotFound
		},
		list: func(ctx context.Context, ownerID int64, limit int) ([]models.QuizSet, error) {
			var out []models.QuizSet
			for _, s := range store.sets {
				if ownerID == 0 || s.OwnerID == ownerID {
					out = append(out, *s)
				}
			}
			return out, nil
		},
	}
}

func TestQuizUpload(t *testing.T) {
	auth := newTestAuth()
	cache := NewResponseCache()
	store := &quizStore{}
	mux := http.NewServeMux()
	newQuizTestHandler(auth, cache, store).RegisterHandlers(mux)

	token, err := auth.GenerateToken(5, "frank")
	require.NoError(t, err)

	post := func(body interface{}, withToken bool) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/quiz/sets", bytes.NewReader(data))
		if withToken {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires auth", func(t *testing.T) {
		rec := post(UploadQuizSetRequest{Title: "math", Quizzes: []models.Quiz{validQuiz()}}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects invalid quiz", func(t *testing.T) {
		bad := validQuiz()
		bad.Options = bad.Options[:3]
		rec := post(UploadQuizSetRequest{Title: "math", Quizzes: []models.Quiz{validQuiz(), bad}}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeResponse(t, rec).Message, "第 2 题")
	})

	t.Run("rejects empty set", func(t *testing.T) {
		rec := post(UploadQuizSetRequest{Title: "math"}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("saves and invalidates list cache", func(t *testing.T) {
		cache.Set("/quiz/sets?owner=5", &CacheEntry{Data: []byte("{}"), ExpiresAt: time.Now().Add(time.Minute)})

		rec := post(UploadQuizSetRequest{Title: "math", Quizzes: []models.Quiz{validQuiz()}}, true)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, store.saved, 1)
		assert.Equal(t, int64(5), store.saved[0].OwnerID)
		assert.Nil(t, cache.Get("/quiz/sets?owner=5", time.Now()))
	})
}

func TestQuizGetSetOwnerOnly(t *testing.T) {
	auth := newTestAuth()
	store := &quizStore{sets: map[string]*models.QuizSet{
		"abc": {ID: "abc", OwnerID: 1, Title: "history", Quizzes: []models.Quiz{validQuiz()}},
	}}
	mux := http.NewServeMux()
	newQuizTestHandler(auth, nil, store).RegisterHandlers(mux)

	get := func(path string, playerID int64) int {
		token, err := auth.GenerateToken(playerID, "p")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/quiz/sets/abc", 1))
	assert.Equal(t, http.StatusForbidden, get("/quiz/sets/abc", 2))
	assert.Equal(t, http.StatusNotFound, get("/quiz/sets/missing", 1))
}

func TestQuizListHidesAnswers(t *testing.T) {
	store := &quizStore{sets: map[string]*models.QuizSet{
		"abc": {ID: "abc", OwnerID: 1, Title: "history", Quizzes: []models.Quiz{validQuiz()}},
	}}
	mux := http.NewServeMux()
	newQuizTestHandler(newTestAuth(), nil, store).RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/sets?owner=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct_index")
	assert.Contains(t, rec.Body.String(), "history")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/sets?owner=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsValidation(t *testing.T) {
	h := &StatsHandler{recentRuns: func(ctx context.Context, playerID int64, limit int) ([]models.RunRecord, error) {
		run := models.RunRecord{PlayerID: playerID}
		run.Score = 120
		run.Quiz = models.QuizStats{Answered: 4, Correct: 3}
		return []models.RunRecord{run}, nil
	}}
	mux := http.NewServeMux()
	h.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/leaderboard?type=coins", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/runs/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/runs/12?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.EqualValues(t, 5, data["limit"])
	runs := data["runs"].([]interface{})
	require.Len(t, runs, 1)
	assert.EqualValues(t, 75, runs[0].(map[string]interface{})["accuracy"])

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats/leaderboard/refresh", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(5, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allowRequest("1.2.3.4", now))
	}
	assert.False(t, rl.allowRequest("1.2.3.4", now), "超出突发上限")
	assert.True(t, rl.allowRequest("5.6.7.8", now), "其他客户端不受影响")

	later := now.Add(2 * time.Second)
	assert.True(t, rl.allowRequest("1.2.3.4", later))
	assert.True(t, rl.allowRequest("1.2.3.4", later))
	assert.False(t, rl.allowRequest("1.2.3.4", later), "超出每分钟上限")

	assert.True(t, rl.allowRequest("1.2.3.4", now.Add(61*time.Second)))

	rl.cleanup(now.Add(20 * time.Minute))
	assert.Empty(t, rl.clients)
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(100, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := securityHeaders(cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/quiz/sets", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestResponseCache(t *testing.T) {
	cache := NewResponseCache()
	hits := 0
	handler := cache.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		sendSuccess(w, "ok", []int{1, 2, 3})
	}))

	serve := func(path string, header map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for k, v := range header {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := serve("/stats/leaderboard?type=score", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve("/stats/leaderboard?type=score", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	etag := second.Header().Get("ETag")
	require.NotEmpty(t, etag)

	notModified := serve("/stats/leaderboard?type=score", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Equal(t, 1, hits)

	// 不同查询参数分别缓存
	serve("/stats/leaderboard?type=kills", nil)
	assert.Equal(t, 2, hits)

	// 带令牌的请求不走缓存
	serve("/stats/leaderboard?type=score", map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, 3, hits)

	// 未配置的路径不缓存
	serve("/players/1/profile", nil)
	serve("/players/1/profile", nil)
	assert.Equal(t, 5, hits)

	cache.Invalidate("/stats/leaderboard")
	serve("/stats/leaderboard?type=score", nil)
	assert.Equal(t, 6, hits)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewResponseCache()
	now := time.Now()
	cache.Set("k", &CacheEntry{Data: []byte("x"), ExpiresAt: now.Add(time.Second)})

	assert.NotNil(t, cache.Get("k", now))
	assert.Nil(t, cache.Get("k", now.Add(2*time.Second)))
}

func TestGatewayHandler(t *testing.T) {
	gw := &Gateway{
		auth:    newTestAuth(),
		cache:   NewResponseCache(),
		limiter: NewRateLimiter(100, 50),
	}
	handler := gw.createHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	// 未注册游戏服务
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game/rooms", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGatewayProxiesGameRequests(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	}))
	defer backend.Close()

	gw := &Gateway{
		auth:    newTestAuth(),
		cache:   NewResponseCache(),
		limiter: NewRateLimiter(100, 50),
	}
	require.NoError(t, gw.RegisterGameService(backend.URL))
	handler := gw.createHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game/rooms", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/rooms", rec.Body.String())

	gw.checkGameHealth(&http.Client{Timeout: time.Second})
	assert.True(t, gw.game.Health)

	backend.Close()
	gw.checkGameHealth(&http.Client{Timeout: time.Second})
	assert.False(t, gw.game.Health)
}
