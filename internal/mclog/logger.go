// Package mclog provides the process-wide logging facility used by the
// command-line entry point, the MC driver, and the replica-exchange
// coordinator.
package mclog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the capability set every component logs through. Concrete
// moves and energy terms never log directly; only cmd/mcrun, the driver,
// and the replica-exchange coordinator do (config only hands its logger on
// to the driver).
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// WithPrefix returns a Logger that appends tag to the current prefix
	// chain, e.g. a replex.Coordinator tagging every line with its
	// ReplicaID without each call site having to splice the tag into its
	// own format string.
	WithPrefix(tag string) Logger
}

// DefaultLogger writes DEBUG/INFO to stdout and WARN/ERROR to stderr, each
// line prefixed with an optional run tag. Two DefaultLogger values created
// via WithPrefix share the same underlying *log.Logger writers and the
// same debug flag (guarded by the same mutex), so toggling SetDebug on a
// parent logger affects every prefix derived from it.
type DefaultLogger struct {
	mu     *sync.Mutex
	debug  *bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		mu:     &sync.Mutex{},
		debug:  &debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

// WithPrefix returns a derived logger that chains tag onto this logger's
// prefix (e.g. "mcrun" + "replica-2" -> "mcrun/replica-2") while still
// writing through the same streams and debug flag.
func (l *DefaultLogger) WithPrefix(tag string) Logger {
	prefix := tag
	if l.prefix != "" {
		prefix = l.prefix + "/" + tag
	}
	return &DefaultLogger{
		mu:     l.mu,
		debug:  l.debug,
		prefix: prefix,
		out:    l.out,
		err:    l.err,
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	*l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.mu.Lock()
	dbg := *l.debug
	l.mu.Unlock()
	if !dbg {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything; useful in tests that
// don't care about log output.
func NewNop() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool               { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
func (n *nopLogger) WithPrefix(tag string) Logger      { return n }
