package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingHooks struct {
	events []string
	errs   []error
}

func (r *recordingHooks) OnStageStart(_ context.Context, stage, subject string) {
	r.events = append(r.events, "start "+stage+" "+subject)
}

func (r *recordingHooks) OnStageComplete(_ context.Context, stage, subject string, _ time.Duration, err error) {
	r.events = append(r.events, "done "+stage+" "+subject)
	r.errs = append(r.errs, err)
}

type countingCache struct{ hits, misses, sets int }

func (c *countingCache) OnCacheHit(context.Context, string)      { c.hits++ }
func (c *countingCache) OnCacheMiss(context.Context, string)     { c.misses++ }
func (c *countingCache) OnCacheSet(context.Context, string, int) { c.sets++ }

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "parse-def", "top.def")
	p.OnStageComplete(ctx, "parse-def", "top.def", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "lef")
	c.OnCacheMiss(ctx, "lef")
	c.OnCacheSet(ctx, "lef", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	rec := &recordingHooks{}
	SetPipelineHooks(rec)
	if Pipeline() != rec {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	cc := &countingCache{}
	SetCacheHooks(cc)
	if Cache() != cc {
		t.Error("SetCacheHooks should set custom hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != rec {
		t.Error("SetPipelineHooks(nil) should keep the current hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset should restore NoopPipelineHooks")
	}
}

func TestStage(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	rec := &recordingHooks{}
	SetPipelineHooks(rec)

	boom := errors.New("boom")
	ctx := context.Background()
	if err := Stage(ctx, "export", "TOP", func() error { return nil }); err != nil {
		t.Fatalf("Stage() error: %v", err)
	}
	if err := Stage(ctx, "write", "out.gds", func() error { return boom }); err != boom {
		t.Fatalf("Stage() error = %v, want boom", err)
	}

	want := []string{"start export TOP", "done export TOP", "start write out.gds", "done write out.gds"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, rec.events[i], want[i])
		}
	}
	if rec.errs[0] != nil || rec.errs[1] != boom {
		t.Errorf("completion errors = %v", rec.errs)
	}
}
