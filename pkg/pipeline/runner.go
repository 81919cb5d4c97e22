package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cloudcalvin/gdsutil/pkg/cache"
	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/lefdef"
	"github.com/cloudcalvin/gdsutil/pkg/observability"
)

// Runner executes commands with a shared cache and logger.
//
// The Runner holds no per-command state, so one Runner can serve several
// commands in sequence.
type Runner struct {
	Cache    cache.Cache
	Logger   *log.Logger
	CacheTTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// selects log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger, CacheTTL: DefaultCacheTTL}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// stage runs fn as a named stage once ctx is still live, recording its
// duration in stats when stats is not nil.
func (r *Runner) stage(ctx context.Context, name, subject string, stats map[string]time.Duration, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := observability.Stage(ctx, name, subject, fn)
	if stats != nil {
		stats[name] += time.Since(start)
	}
	return err
}

// LoadTech parses a LEF file, consulting the cache first unless refresh is
// set. It reports whether the result came from the cache.
func (r *Runner) LoadTech(ctx context.Context, path string, refresh bool) (*lefdef.Tech, bool, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, false, err
	}
	key := cache.TechKey(data)

	if !refresh {
		cached, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Debug("cache read failed", "file", path, "error", err)
		}
		if hit {
			var tech lefdef.Tech
			if err := json.Unmarshal(cached, &tech); err == nil {
				observability.Cache().OnCacheHit(ctx, "lef")
				return &tech, true, nil
			}
			r.Logger.Debug("discarding undecodable cache entry", "file", path)
		}
		observability.Cache().OnCacheMiss(ctx, "lef")
	}

	tech, err := lefdef.ParseLEF(path, bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}

	if enc, err := json.Marshal(tech); err == nil {
		if err := r.Cache.Set(ctx, key, enc, r.CacheTTL); err != nil {
			r.Logger.Debug("cache write failed", "file", path, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "lef", len(enc))
		}
	}
	return tech, false, nil
}

// load reads a stream file as the load stage.
func (r *Runner) load(ctx context.Context, path string) (*gds.Library, error) {
	var lib *gds.Library
	err := r.stage(ctx, StageLoad, path, nil, func() error {
		var err error
		lib, err = gds.Load(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded library", "file", path, "structs", len(lib.Structs))
	return lib, nil
}

// save writes a stream file as the save stage.
func (r *Runner) save(ctx context.Context, path string, lib *gds.Library) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	return r.stage(ctx, StageSave, path, nil, func() error {
		return gds.Save(path, lib)
	})
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path).For(path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
