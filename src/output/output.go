// Package output renders sync and verification reports for terminals and CI logs.
package output

import (
	"fmt"
	"io"
	"os"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[90m"
	ansiBold   = "\033[1m"
	ansiHeader = "\033[2;36m"
)

// UseColor reports whether stdout should get ANSI colors. NO_COLOR and
// TERM=dumb turn colors off; a terminal or a CI log turns them on.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if IsCI() {
		return true
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func paint(code, text string, color bool) string {
	if !color {
		return text
	}
	return code + text + ansiReset
}

// StatusIcon renders a step status: "success", "failed", anything else is skipped.
func StatusIcon(status string, color bool) string {
	switch status {
	case "success":
		return paint(ansiGreen, "✓", color)
	case "failed":
		return paint(ansiRed, "✗", color)
	}
	return paint(ansiYellow, "⊘", color)
}

// Dimmed greys out secondary text.
func Dimmed(text string, color bool) string { return paint(ansiDim, text, color) }

// Bold emphasises text.
func Bold(text string, color bool) string { return paint(ansiBold, text, color) }

// KV is one entry of a context block.
type KV struct {
	Key   string
	Value string
}

// ContextBlock prints key-value pairs in two aligned columns.
func ContextBlock(w io.Writer, kv []KV) {
	if len(kv) == 0 {
		return
	}
	fmt.Fprintln(w)
	for len(kv) >= 2 {
		fmt.Fprintf(w, "    %-12s%-24s%-12s%s\n", kv[0].Key, kv[0].Value, kv[1].Key, kv[1].Value)
		kv = kv[2:]
	}
	if len(kv) == 1 {
		fmt.Fprintf(w, "    %-12s%s\n", kv[0].Key, kv[0].Value)
	}
}
