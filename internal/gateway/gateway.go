package gateway

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
)

// ServiceInstance 后端服务实例
type ServiceInstance struct {
	URL       *url.URL
	Health    bool
	LastCheck time.Time
}

// Gateway API网关：认证、题库、战绩接口，并把 /game/ 转发到游戏服务器
type Gateway struct {
	config  *config.Config
	auth    *AuthHandler
	cache   *ResponseCache
	limiter *RateLimiter

	game      *ServiceInstance
	gameProxy *httputil.ReverseProxy
	mutex     sync.RWMutex

	httpServer *http.Server
	isRunning  bool
	shutdown   chan struct{}
}

// NewGateway 创建新的网关
func NewGateway(cfg *config.Config) *Gateway {
	return &Gateway{
		config:   cfg,
		auth:     NewAuthHandler(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		cache:    NewResponseCache(),
		limiter:  NewRateLimiter(120, 20),
		shutdown: make(chan struct{}),
	}
}

// Auth 认证处理器，游戏服务器用它校验WebSocket令牌
func (g *Gateway) Auth() *AuthHandler {
	return g.auth
}

// Start 启动网关
func (g *Gateway) Start() error {
	if g.isRunning {
		return fmt.Errorf("网关已经在运行")
	}

	if err := g.RegisterGameService(fmt.Sprintf("http://localhost:%d", g.config.Server.GamePort)); err != nil {
		return err
	}

	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler: g.createHandler(),
	}

	go g.limiter.Run(g.shutdown)
	go g.healthCheck()

	go func() {
		log.Printf("API网关启动，监听端口: %d", g.config.Server.GatewayPort)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	g.isRunning = true
	return nil
}

// Stop 停止网关
func (g *Gateway) Stop() error {
	if !g.isRunning {
		return nil
	}

	close(g.shutdown)
	if err := g.httpServer.Close(); err != nil {
		return fmt.Errorf("关闭网关失败: %w", err)
	}
	g.isRunning = false
	log.Println("API网关已停止")
	return nil
}

// RegisterGameService 注册游戏服务器地址
func (g *Gateway) RegisterGameService(serviceURL string) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("无效的服务URL: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(parsed)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/game")
		r.Header.Set("X-Forwarded-Host", r.Host)
		r.Host = parsed.Host
	}

	g.mutex.Lock()
	g.game = &ServiceInstance{URL: parsed, Health: true, LastCheck: time.Now()}
	g.gameProxy = proxy
	g.mutex.Unlock()

	log.Printf("注册游戏服务: %s", serviceURL)
	return nil
}

// createHandler 创建HTTP处理器
func (g *Gateway) createHandler() http.Handler {
	mux := http.NewServeMux()

	g.auth.RegisterHandlers(mux)
	NewQuizHandler(g.auth, g.cache).RegisterHandlers(mux)
	NewStatsHandler(g.cache).RegisterHandlers(mux)
	NewProfileHandler().RegisterHandlers(mux)

	// 游戏服务器的只读接口
	mux.HandleFunc("/game/", g.handleGameRequest)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return g.applyMiddleware(mux)
}

// applyMiddleware 应用中间件（从外到内）
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	handler = g.cache.Middleware(handler)
	handler = g.limiter.Middleware(handler)
	handler = cors(handler)
	handler = securityHeaders(handler)
	handler = logging(handler)
	return handler
}

// handleGameRequest 转发到游戏服务器
func (g *Gateway) handleGameRequest(w http.ResponseWriter, r *http.Request) {
	g.mutex.RLock()
	instance, proxy := g.game, g.gameProxy
	g.mutex.RUnlock()

	if instance == nil || !instance.Health {
		sendError(w, "服务不可用", http.StatusServiceUnavailable)
		return
	}
	proxy.ServeHTTP(w, r)
}

// healthCheck 健康检查
func (g *Gateway) healthCheck() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	client := http.Client{Timeout: 2 * time.Second}
	for {
		select {
		case <-ticker.C:
			g.checkGameHealth(&client)
		case <-g.shutdown:
			return
		}
	}
}

// checkGameHealth 检查游戏服务器健康状态
func (g *Gateway) checkGameHealth(client *http.Client) {
	g.mutex.RLock()
	instance := g.game
	g.mutex.RUnlock()
	if instance == nil {
		return
	}

	healthURL := *instance.URL
	healthURL.Path = "/health"
	resp, err := client.Get(healthURL.String())
	healthy := err == nil && resp.StatusCode == http.StatusOK
	if resp != nil {
		resp.Body.Close()
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()
	instance.LastCheck = time.Now()
	if healthy != instance.Health {
		if healthy {
			log.Printf("游戏服务恢复健康")
		} else {
			log.Printf("游戏服务不健康: %v", err)
		}
		instance.Health = healthy
	}
}
