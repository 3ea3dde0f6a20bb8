package main

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// colorEnabled caches whether diagnostics should be ANSI-colored: a
// terminal stderr, no NO_COLOR, and TERM != "dumb". Mirrors the
// teacher's own NO_COLOR/isatty/TERM detection in
// internal/evaluator/builtins_term.go, trimmed to the single on/off
// decision this CLI needs (no 256-color or truecolor tiers).
var (
	colorOnce    sync.Once
	colorEnabled bool
)

func useColor() bool {
	colorOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return
		}
		if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			return
		}
		if strings.EqualFold(os.Getenv("TERM"), "dumb") {
			return
		}
		colorEnabled = true
	})
	return colorEnabled
}

func colorize(code, s string) string {
	if !useColor() {
		return s
	}
	return code + s + "\033[0m"
}

func red(s string) string    { return colorize("\033[31m", s) }
func yellow(s string) string { return colorize("\033[33m", s) }
