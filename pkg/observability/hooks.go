// Package observability lets the command layer watch pipeline stages and
// cache traffic without the libraries depending on a logging or metrics
// backend.
//
// Hooks are process-wide. The CLI installs its implementations once before
// running a command; libraries only ever read them:
//
//	observability.SetPipelineHooks(myHooks)
//
//	err := observability.Stage(ctx, "parse-def", path, func() error {
//	    design, err = lefdef.ParseDEF(path, r, logger)
//	    return err
//	})
//
// Until something is installed every hook is a no-op.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from pipeline stages. Subject names what the
// stage works on, usually a file or struct name.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage, subject string)
	OnStageComplete(ctx context.Context, stage, subject string, duration time.Duration, err error)
}

// CacheHooks receives cache events. KeyType names the kind of cached value,
// e.g. "lef".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks ignores every event. Embed it to implement only part of
// PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
}

var hooks = registry{pipeline: NoopPipelineHooks{}, cache: NoopCacheHooks{}}

// SetPipelineHooks installs h. A nil h keeps the current hooks.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.pipeline = h
	hooks.mu.Unlock()
}

// SetCacheHooks installs h. A nil h keeps the current hooks.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.cache = h
	hooks.mu.Unlock()
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// Reset reinstalls the no-op hooks.
func Reset() {
	hooks.mu.Lock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.mu.Unlock()
}

// Stage runs fn between OnStageStart and OnStageComplete and returns its
// error.
func Stage(ctx context.Context, stage, subject string, fn func() error) error {
	h := Pipeline()
	h.OnStageStart(ctx, stage, subject)
	start := time.Now()
	err := fn()
	h.OnStageComplete(ctx, stage, subject, time.Since(start), err)
	return err
}
