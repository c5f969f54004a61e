package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every emitted log line so it can be forwarded to a
// secondary sink, for example an OTLP log exporter.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirror atomic.Pointer[MirrorFunc]

// SetMirror installs the process-wide log mirror. Passing nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func mirrorEmit(ctx context.Context, level Level, msg string, args []any) {
	fn := mirror.Load()
	if fn == nil {
		return
	}
	(*fn)(ctx, level, msg, args...)
}
