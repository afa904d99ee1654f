// Package log is a thin leveled front over kataras/pio shared by every
// scpool component.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kataras/pio"
)

type Level = byte

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	mu      sync.Mutex
	level   = InfoLevel
	printer = pio.NewPrinter("scpool", os.Stdout).EnableDirectOutput().SetSync(true)
)

// SetLevel sets the minimum level that will be printed.
// Accepts "debug", "info", "warn", "error". Unknown values keep the
// current level.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(name) {
	case "debug":
		level = DebugLevel
	case "info":
		level = InfoLevel
	case "warn", "warning":
		level = WarnLevel
	case "error":
		level = ErrorLevel
	}
}

// SetOutput redirects all levels to w.
func SetOutput(w *os.File) {
	mu.Lock()
	defer mu.Unlock()
	printer = pio.NewPrinter("scpool", w).EnableDirectOutput().SetSync(true)
}

func Debug(v ...interface{}) { print(DebugLevel, "DEBUG", v...) }
func Info(v ...interface{})  { print(InfoLevel, "INFO", v...) }
func Warn(v ...interface{})  { print(WarnLevel, "WARN", v...) }
func Error(v ...interface{}) { print(ErrorLevel, "ERROR", v...) }

func print(lv Level, tag string, v ...interface{}) {
	mu.Lock()
	min := level
	p := printer
	mu.Unlock()
	if lv < min {
		return
	}
	p.Println(fmt.Sprintf("%s [%s] %s",
		time.Now().Format("2006/01/02 15:04:05"), tag, fmt.Sprint(v...)))
}
