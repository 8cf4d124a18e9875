// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package composite

import (
	"fmt"
	"io"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration
	LogLast LogLevel = 0
	// LogEval print also the objective every `level` iterations for any (0 < level < 99)
	LogEval LogLevel = 1
	// LogTrace print details of every iteration including each backtracking step
	LogTrace LogLevel = 99
	// LogVerbose print details of every iteration including the iterates (level > 99)
	LogVerbose LogLevel = 100
)

// Logger handles logging output for the solvers.
// Note the writers must be thread-safe.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
	Out   io.Writer // Writer for output data.
}

// Noop is a logger which discards everything.
var Noop = &Logger{Level: LogNoop}

// Enable reports whether messages at level are written.
// A nil logger is disabled.
func (l *Logger) Enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

// Logf writes a message to Msg.
func (l *Logger) Logf(format string, a ...any) {
	if l == nil || l.Msg == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

// Outf writes output data to Out.
func (l *Logger) Outf(format string, a ...any) {
	if l == nil || l.Out == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}

// Vector writes v to Out six entries per line, prefixed by name.
func (l *Logger) Vector(name string, v []float64) {
	l.Outf("\n %s =", name)
	for i, x := range v {
		l.Outf(" %.2e", x)
		if (i+1)%6 == 0 {
			l.Outf("\n     ")
		}
	}
	l.Outf("\n")
}
