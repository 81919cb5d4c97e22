package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/lefdef"
)

// defaultDepth is the number of reference levels snap, extract and replace
// descend when neither a flag nor the config file says otherwise. Zero
// edits the root structs only.
const defaultDepth = 0

// Config is the content of the optional config file:
//
//	outline_layer = "OUTLINE"
//	grid = 5
//	depth = 2
//	patterns = ["^CELL_"]
//	cache_ttl = "72h"
//
//	[layers.metal1]
//	index = 31
//	datatype = 0
//
// Flags override config values.
type Config struct {
	OutlineLayer string                      `toml:"outline_layer"`
	OutlineIndex int16                       `toml:"outline_index" validate:"gte=0"`
	Grid         int32                       `toml:"grid" validate:"gte=0"`
	Depth        *int                        `toml:"depth" validate:"omitempty,gte=0"`
	Patterns     []string                    `toml:"patterns" validate:"dive,required"`
	CacheTTL     duration                    `toml:"cache_ttl"`
	Layers       map[string]lefdef.LayerSpec `toml:"layers" validate:"dive"`
}

// duration decodes TOML strings such as "36h" or "90m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("duration %s is negative", text)
	}
	d.Duration = v
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadConfig reads the config file at path. An empty path selects the
// default location, where a missing file yields the zero Config; an explicit
// path must exist.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path).For(path)
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeParse, err, "decode config %s", path).For(path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s",
			path, strings.Join(keys, ", ")).For(keys[0])
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig checks the struct tags of cfg and reports the first
// failure by its TOML key.
func validateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	e := verrs[0]
	key := configKey(e.Namespace())
	switch e.Tag() {
	case "required":
		return errors.New(errors.ErrCodeInvalidInput, "%s: value is required", key).For(key)
	case "gte":
		return errors.New(errors.ErrCodeInvalidInput, "%s: must be at least %s", key, e.Param()).For(key)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: validation failed (%s)", key, e.Tag()).For(key)
	}
}

// configKey turns a validator namespace like "Config.Layers[metal1].Index"
// into the TOML key "layers.metal1.index".
func configKey(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	r := strings.NewReplacer("[", ".", "]", "")
	parts := strings.Split(r.Replace(ns), ".")
	for i, p := range parts {
		if f, ok := configFields[p]; ok {
			parts[i] = f
		}
	}
	return strings.Join(parts, ".")
}

var configFields = map[string]string{
	"OutlineLayer": "outline_layer",
	"OutlineIndex": "outline_index",
	"Grid":         "grid",
	"Depth":        "depth",
	"Patterns":     "patterns",
	"CacheTTL":     "cache_ttl",
	"Layers":       "layers",
	"Index":        "index",
	"Datatype":     "datatype",
}
