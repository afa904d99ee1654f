package launch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sjy-dv/scpool/scpool/core"
)

// fileOptions mirrors core.Options for YAML, with durations as strings
// and pointer fields so an absent key keeps the default.
type fileOptions struct {
	MinSize           *uint32 `yaml:"min_size"`
	MaxSize           *uint32 `yaml:"max_size"`
	AcquireTimeout    *string `yaml:"acquire_timeout"`
	IdleTimeout       *string `yaml:"idle_timeout"`
	MaxLifetime       *string `yaml:"max_lifetime"`
	ValidateOnAcquire *bool   `yaml:"validate_on_acquire"`
	ValidateOnRelease *bool   `yaml:"validate_on_release"`
	ValidationTimeout *string `yaml:"validation_timeout"`
	ReapInterval      *string `yaml:"reap_interval"`
	WatchQueueSize    *uint64 `yaml:"watch_queue_size"`
}

// LoadFile builds core.Options from a YAML file, for example:
//
//	min_size: 2
//	max_size: 32
//	acquire_timeout: 3s
//	idle_timeout: 1m
//	validate_on_acquire: true
func LoadFile(path string) (core.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return core.Options{}, fmt.Errorf("launch:%w", err)
	}
	var fo fileOptions
	if err := yaml.Unmarshal(raw, &fo); err != nil {
		return core.Options{}, fmt.Errorf("launch: parse %s:%w", path, err)
	}

	opts := core.DefaultOptions
	if fo.MinSize != nil {
		opts.MinSize = *fo.MinSize
	}
	if fo.MaxSize != nil {
		opts.MaxSize = *fo.MaxSize
	}
	if err := setDuration(&opts.AcquireTimeout, fo.AcquireTimeout); err != nil {
		return core.Options{}, err
	}
	if err := setDuration(&opts.IdleTimeout, fo.IdleTimeout); err != nil {
		return core.Options{}, err
	}
	if err := setDuration(&opts.MaxLifetime, fo.MaxLifetime); err != nil {
		return core.Options{}, err
	}
	if fo.ValidateOnAcquire != nil {
		opts.ValidateOnAcquire = *fo.ValidateOnAcquire
	}
	if fo.ValidateOnRelease != nil {
		opts.ValidateOnRelease = *fo.ValidateOnRelease
	}
	if err := setDuration(&opts.ValidationTimeout, fo.ValidationTimeout); err != nil {
		return core.Options{}, err
	}
	if err := setDuration(&opts.ReapInterval, fo.ReapInterval); err != nil {
		return core.Options{}, err
	}
	if fo.WatchQueueSize != nil {
		opts.WatchQueueSize = *fo.WatchQueueSize
	}

	if err := opts.Validate(); err != nil {
		return core.Options{}, err
	}
	return opts, nil
}

func setDuration(dst *time.Duration, raw *string) error {
	if raw == nil {
		return nil
	}
	if *raw == "none" {
		*dst = core.NoTimeout
		return nil
	}
	v, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("launch: duration %q:%w", *raw, err)
	}
	*dst = v
	return nil
}
