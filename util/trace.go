package util

import (
	"log/slog"
	"time"
)

// Trace 记录耗时，用法: defer util.Trace("msg")()
func Trace(msg string) func() {
	start := time.Now()
	slog.Info("start", "msg", msg)
	return func() {
		slog.Info("done", "msg", msg, "elapsed", time.Since(start))
	}
}
