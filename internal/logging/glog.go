// Package logging adapts glog to the wapi.Logger interface.
package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// DebugLevel is the glog verbosity at which Debug messages are written.
const DebugLevel glog.Level = 2

// Logger writes structured messages through glog. The zero value is ready
// to use.
type Logger struct {
	// Prefix is prepended to every message, e.g. "[wapi]".
	Prefix string
	// Verbose writes Debug messages regardless of -v.
	Verbose bool
}

// New returns a glog-backed logger.
func New(prefix string, verbose bool) *Logger {
	return &Logger{Prefix: prefix, Verbose: verbose}
}

// Debug implements wapi.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	if l.Verbose {
		glog.InfoDepth(1, l.line(msg, fields))

		return
	}

	if glog.V(DebugLevel) {
		glog.InfoDepth(1, l.line(msg, fields))
	}
}

// Info implements wapi.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	glog.InfoDepth(1, l.line(msg, fields))
}

// Warn implements wapi.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	glog.WarningDepth(1, l.line(msg, fields))
}

// Error implements wapi.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	glog.ErrorDepth(1, l.line(msg, fields))
}

// Flush writes any buffered log entries.
func (l *Logger) Flush() {
	glog.Flush()
}

func (l *Logger) line(msg string, fields map[string]interface{}) string {
	var b strings.Builder

	if l.Prefix != "" {
		b.WriteString(l.Prefix)
		b.WriteByte(' ')
	}

	b.WriteString(msg)

	if f := FormatFields(fields); f != "" {
		b.WriteByte(' ')
		b.WriteString(f)
	}

	return b.String()
}

// FormatFields renders fields as space-separated key=value pairs in key
// order. Values containing spaces or quotes are quoted.
func FormatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))

	for _, k := range keys {
		value := fmt.Sprintf("%v", fields[k])
		if value == "" || strings.ContainsAny(value, " \t\n\"=") {
			value = fmt.Sprintf("%q", value)
		}

		parts = append(parts, k+"="+value)
	}

	return strings.Join(parts, " ")
}
