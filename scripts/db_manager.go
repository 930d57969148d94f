//go:build ignore

// db_manager.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jacl-coder/PixelStorm-Quiz/config"
	"github.com/jacl-coder/PixelStorm-Quiz/pkg/db"
)

// action 一个维护操作
type action struct {
	usage string
	run   func() error
}

var actions = map[string]action{
	"init":   {"创建玩家、题库和战绩表以及排行榜视图", db.InitAllTables},
	"reset":  {"删除全部表，题库和战绩不可恢复", db.DropAllTables},
	"setup":  {"reset 后再 init，用于本地开发环境", setup},
	"status": {"输出各表行数", status},
}

var order = []string{"init", "reset", "setup", "status"}

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	name := flag.String("action", "help", "操作: init, reset, setup, status, help")
	flag.Parse()

	act, ok := actions[*name]
	if !ok {
		usage()
		if *name != "help" {
			os.Exit(2)
		}
		return
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	if err := act.run(); err != nil {
		log.Fatalf("%s 失败: %v", *name, err)
	}
	log.Printf("%s 完成", *name)
}

func usage() {
	fmt.Println("用法: go run scripts/db_manager.go -action=<操作> [-config=<配置文件>]")
	for _, name := range order {
		fmt.Printf("  %-7s %s\n", name, actions[name].usage)
	}
	fmt.Println("初始化后可用 go run scripts/init_data.go 写入测试账号和示例题库")
}

func setup() error {
	if err := db.DropAllTables(); err != nil {
		return err
	}
	return db.InitAllTables()
}

func status() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := db.TableCounts(ctx)
	if err != nil {
		return err
	}
	for _, table := range db.Tables {
		log.Printf("%-15s %d", table, counts[table])
	}
	return nil
}
