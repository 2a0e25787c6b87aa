// Package logger provides the ports.Logger implementation shared by the
// pipeline and the CLI.
package logger

import "log"

// StdLogger writes leveled messages through the standard log package.
// Debug, Info and Warn are gated behind verbose so evaluations stay quiet
// on stderr; Error always reports.
type StdLogger struct {
	verbose bool
}

// NewStd builds a logger. Verbose enables the non-error levels.
func NewStd(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[DEBUG]", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[INFO]", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[WARN]", msg, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	log.Println("[ERROR]", msg, err, fields)
}
