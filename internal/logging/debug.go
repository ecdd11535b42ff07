package logging

import (
	"fmt"
	"os"
)

// DebugEnabled returns true if debug mode is enabled via the DW_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("DW_DEBUG") != ""
}

// Debugf prints a formatted trace line to stderr only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Debugln prints a trace line to stderr only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(os.Stderr, args...)
	}
}
