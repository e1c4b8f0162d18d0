package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/matting/cutout/rembg"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP 监听地址")
	rembgURL := flag.String("rembg", os.Getenv("REMBG_URL"), "远端 AI 抠图服务地址，空则用透传占位实现")
	sessionTTL := flag.Duration("session-ttl", 30*time.Minute, "空闲会话回收时间")
	debug := flag.Bool("debug", false, "打开调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var remover rembg.Remover = rembg.NewDefaultRemBG()
	if *rembgURL != "" {
		remover = rembg.NewServiceRemBG(*rembgURL)
		slog.Info("using remote rembg service", "url", *rembgURL)
	}

	srv := newServer(remover, *sessionTTL)

	// 定期回收空闲会话
	reaper := cron.New()
	if _, err := reaper.AddFunc("@every 10m", srv.reapSessions); err != nil {
		log.Fatal("failed to schedule session reaper:", err)
	}
	reaper.Start()
	defer reaper.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	srv.register(r)

	slog.Info("matting server listening", "addr", *addr)
	if err := r.Run(*addr); err != nil {
		log.Fatal("server exited:", err)
	}
}
