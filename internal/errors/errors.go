// Package errors renders command failures for the terminal.
package errors

import (
	"fmt"
	"os"
	"strings"

	crdb "github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/logger"
)

// Format renders err with an "Error: " prefix followed by any hints attached
// with errors.WithHint, one per line.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %v", err)
	for _, hint := range crdb.GetAllHints(err) {
		fmt.Fprintf(&sb, "\nHint: %s", hint)
	}
	return sb.String()
}

// Formatf formats a message with the "Error: " prefix.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs err and exits with status 1. A nil err is ignored.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(1)
	}
}

// Fatalf logs the formatted message and exits with status 1.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
