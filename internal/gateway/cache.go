package gateway

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CacheEntry 缓存条目
type CacheEntry struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
	ETag        string
}

// ResponseCache 只读接口的响应缓存，写操作后按前缀失效
type ResponseCache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex

	// 路径前缀 -> 缓存时间
	ttl        map[string]time.Duration
	maxEntries int
}

// NewResponseCache 创建响应缓存
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]*CacheEntry),
		ttl: map[string]time.Duration{
			"/stats/leaderboard": 30 * time.Second,
			"/quiz/sets":         time.Minute,
		},
		maxEntries: 500,
	}
}

// Middleware 缓存GET请求的成功响应，带Authorization头的请求不缓存
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttl, ok := c.ttlFor(r.URL.Path)
		if r.Method != http.MethodGet || !ok || r.Header.Get("Authorization") != "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if entry := c.Get(key, time.Now()); entry != nil {
			if r.Header.Get("If-None-Match") == entry.ETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("Content-Type", entry.ContentType)
			w.Header().Set("ETag", entry.ETag)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(entry.Data)
			return
		}

		rec := &cacheRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.statusCode == http.StatusOK && rec.body.Len() > 0 {
			data := rec.body.Bytes()
			c.Set(key, &CacheEntry{
				Data:        data,
				ContentType: rec.Header().Get("Content-Type"),
				ExpiresAt:   time.Now().Add(ttl),
				ETag:        fmt.Sprintf(`"%x"`, md5.Sum(data)),
			})
		}
	})
}

// ttlFor 查找路径对应的缓存时间
func (c *ResponseCache) ttlFor(path string) (time.Duration, bool) {
	for prefix, ttl := range c.ttl {
		if strings.HasPrefix(path, prefix) {
			return ttl, true
		}
	}
	return 0, false
}

// Get 获取未过期的缓存
func (c *ResponseCache) Get(key string, now time.Time) *CacheEntry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || now.After(entry.ExpiresAt) {
		return nil
	}
	return entry
}

// Set 写入缓存，超过容量时先清理过期条目，仍然超出则整体清空
func (c *ResponseCache) Set(key string, entry *CacheEntry) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.entries) >= c.maxEntries {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.ExpiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			c.entries = make(map[string]*CacheEntry)
		}
	}
	c.entries[key] = entry
}

// Invalidate 删除指定前缀的缓存
func (c *ResponseCache) Invalidate(prefix string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// cacheRecorder 同时写出和记录响应体
type cacheRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *cacheRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *cacheRecorder) Write(data []byte) (int, error) {
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
