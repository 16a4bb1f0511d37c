// Package log is a thin leveled wrapper over the standard library logger,
// in keeping with the teacher corpus, which never pulls in a structured
// logging library anywhere across its several hundred Go files.
package log

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// Info logs an informational message, mirroring the original's info! calls
// around connection setup and stream handling.
func Info(format string, args ...any) {
	std.Printf("INFO "+format, args...)
}

// Error logs an error message, mirroring the original's error! calls.
func Error(format string, args ...any) {
	std.Printf("ERROR "+format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	std.Printf("WARN "+format, args...)
}
