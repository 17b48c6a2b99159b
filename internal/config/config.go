// Package config loads the optional rewatch settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when --config is not given.
const DefaultPath = ".rewatch.yaml"

// File mirrors the command line flags. Zero values mean "not set".
type File struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	Async        bool          `mapstructure:"async"`
	Verbatim     bool          `mapstructure:"verbatim"`
	RunOnStart   bool          `mapstructure:"do_while"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	HistoryRedis string        `mapstructure:"history_redis"`
	HistorySize  int           `mapstructure:"history_size"`
	LogFormat    string        `mapstructure:"log_format"`
	Debug        bool          `mapstructure:"debug"`
}

// Load reads path as YAML or JSON depending on its extension.
// A missing file yields an empty File when optional is true.
func Load(path string, optional bool) (File, error) {
	var cfg File

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Debounce < 0 {
		return cfg, fmt.Errorf("config %s: debounce must not be negative", path)
	}
	if cfg.HistorySize < 0 {
		return cfg, fmt.Errorf("config %s: history_size must not be negative", path)
	}
	return cfg, nil
}

func decode(raw map[string]any, out *File) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
