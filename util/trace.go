package util

import (
	"log/slog"
	"time"
)

// Trace 计时辅助：defer util.Trace("xxx")() 打印一段操作的耗时
func Trace(name string) func() {
	start := time.Now()
	return func() {
		slog.Info("trace", "name", name, "cost", time.Since(start))
	}
}
