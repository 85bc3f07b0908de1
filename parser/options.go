package parser

import (
	"fmt"
	"io"
)

// Option configures a single Parse call. The zero value of Config leaves
// Parse behaving exactly as spec.md describes: no trace output, no capture
// depth limit.
type Option func(*Config)

// Config holds parser configuration, modeled on the teacher's ParserConfig.
type Config struct {
	trace           io.Writer
	maxCaptureDepth int // 0 means unbounded
}

// WithTrace enables production-entry tracing: one line is written to w on
// each entry to declarationOrRuleset and on each ruleset attempt (including
// the retry after a failed declaration). Production exits and capture
// push/pop are not traced.
func WithTrace(w io.Writer) Option {
	return func(c *Config) {
		c.trace = w
	}
}

// WithMaxCaptureDepth caps how deeply capture() regions may nest. Exceeding
// it raises a SyntaxError rather than growing the capture stack without
// bound; 0 (the default) leaves nesting unbounded.
func WithMaxCaptureDepth(n int) Option {
	return func(c *Config) {
		c.maxCaptureDepth = n
	}
}

// TraceEvent is one entry in the production trace, modeled on the teacher's
// DebugEvent.
type TraceEvent struct {
	Rule string
	Line int
	Pos  int
}

func (c *Config) traceEvent(rule string, line, pos int) {
	if c.trace == nil {
		return
	}
	fmt.Fprintf(c.trace, "%s at %d:%d\n", rule, line, pos)
}
