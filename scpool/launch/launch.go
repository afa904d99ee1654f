// Package launch resolves pool options from the process environment or
// a YAML file, so integrators can tune a pool without recompiling.
package launch

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sjy-dv/scpool/scpool/core"
	"github.com/sjy-dv/scpool/scpool/pkg/log"
)

// LoadEnv builds core.Options from SCPOOL_* environment variables,
// loading a .env file first when one is present. Unset or unparsable
// variables keep the core defaults; every resolved value is logged.
//
//	SCPOOL_LOG_LEVEL           debug|info|warn|error
//	SCPOOL_MIN_SIZE            integer
//	SCPOOL_MAX_SIZE            integer
//	SCPOOL_ACQUIRE_TIMEOUT     duration ("3s"), "none" blocks forever
//	SCPOOL_IDLE_TIMEOUT        duration
//	SCPOOL_MAX_LIFETIME        duration
//	SCPOOL_VALIDATE_ON_ACQUIRE 1|0
//	SCPOOL_VALIDATE_ON_RELEASE 1|0
//	SCPOOL_VALIDATION_TIMEOUT  duration
//	SCPOOL_REAP_INTERVAL       duration
//	SCPOOL_WATCH_QUEUE_SIZE    integer
func LoadEnv() (core.Options, error) {
	godotenv.Load()
	if lv := os.Getenv("SCPOOL_LOG_LEVEL"); lv != "" {
		log.SetLevel(lv)
	}

	opts := core.DefaultOptions
	opts.MinSize = envUint32("SCPOOL_MIN_SIZE", opts.MinSize)
	opts.MaxSize = envUint32("SCPOOL_MAX_SIZE", opts.MaxSize)
	opts.AcquireTimeout = envDuration("SCPOOL_ACQUIRE_TIMEOUT", opts.AcquireTimeout)
	opts.IdleTimeout = envDuration("SCPOOL_IDLE_TIMEOUT", opts.IdleTimeout)
	opts.MaxLifetime = envDuration("SCPOOL_MAX_LIFETIME", opts.MaxLifetime)
	opts.ValidateOnAcquire = envBool("SCPOOL_VALIDATE_ON_ACQUIRE", opts.ValidateOnAcquire)
	opts.ValidateOnRelease = envBool("SCPOOL_VALIDATE_ON_RELEASE", opts.ValidateOnRelease)
	opts.ValidationTimeout = envDuration("SCPOOL_VALIDATION_TIMEOUT", opts.ValidationTimeout)
	opts.ReapInterval = envDuration("SCPOOL_REAP_INTERVAL", opts.ReapInterval)
	opts.WatchQueueSize = envUint64("SCPOOL_WATCH_QUEUE_SIZE", opts.WatchQueueSize)

	if err := opts.Validate(); err != nil {
		return core.Options{}, err
	}
	log.Info(fmt.Sprintf("scpool configured size %d..%d acquire %s idle %s",
		opts.MinSize, opts.MaxSize, timeoutString(opts.AcquireTimeout), opts.IdleTimeout))
	return opts, nil
}

func envUint32(name string, def uint32) uint32 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		log.Warn("failed to configure ", name, ". keep default ", def)
		return def
	}
	return uint32(v)
}

func envUint64(name string, def uint64) uint64 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Warn("failed to configure ", name, ". keep default ", def)
		return def
	}
	return v
}

func envDuration(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	if raw == "none" {
		return core.NoTimeout
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("failed to configure ", name, ". keep default ", def)
		return def
	}
	return v
}

func envBool(name string, def bool) bool {
	switch os.Getenv(name) {
	case "":
		return def
	case "1", "true":
		return true
	default:
		return false
	}
}

func timeoutString(d time.Duration) string {
	if d == core.NoTimeout {
		return "none"
	}
	return d.String()
}
