// main.go

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/game"
	"github.com/jacl-coder/PixelStorm-Quiz/internal/gateway"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

type stopper interface {
	Stop() error
}

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (game, gateway, all)")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	// 初始化数据库连接
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	if err := db.InitAllTables(); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}

	// Redis用于排行榜、房间广播和令牌注销，不可用时降级为单机模式
	if err := db.InitRedis(); err != nil {
		log.Printf("初始化Redis失败，以单机模式运行: %v", err)
	} else {
		defer db.CloseRedis()
	}

	var services []stopper
	switch *serviceType {
	case "game":
		services = append(services, startGameServer(cfg, gateway.NewAuthHandler(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())))
	case "gateway":
		services = append(services, startGateway(cfg))
	case "all":
		gw := startGateway(cfg)
		services = append(services, startGameServer(cfg, gw.Auth()), gw)
	default:
		log.Fatalf("未知的服务类型: %s", *serviceType)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")
	for _, s := range services {
		if err := s.Stop(); err != nil {
			log.Printf("关闭服务失败: %v", err)
		}
	}
	log.Println("服务器已安全关闭")
}

// startGameServer 启动游戏服务器
func startGameServer(cfg *config.Config, auth game.TokenValidator) *game.GameServer {
	server := game.NewGameServer(cfg, auth)
	if err := server.Start(); err != nil {
		log.Fatalf("启动游戏服务器失败: %v", err)
	}
	log.Println("游戏服务器已启动")
	return server
}

// startGateway 启动网关
func startGateway(cfg *config.Config) *gateway.Gateway {
	gw := gateway.NewGateway(cfg)
	if err := gw.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}
	log.Println("网关服务已启动")
	return gw
}
