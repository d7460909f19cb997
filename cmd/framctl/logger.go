package main

import (
	"fmt"
	"log"
	"strings"
)

// stdLogger adapts the standard log package to fram.Logger.
type stdLogger struct {
	logger *log.Logger
	debug  bool
}

func (l *stdLogger) Debug(msg string, kv ...interface{}) {
	if l.debug {
		l.logger.Println("DEBUG:", msg, formatKV(kv))
	}
}

func (l *stdLogger) Info(msg string, kv ...interface{}) {
	l.logger.Println("INFO:", msg, formatKV(kv))
}

func (l *stdLogger) Error(msg string, kv ...interface{}) {
	l.logger.Println("ERROR:", msg, formatKV(kv))
}

func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v", kv[i])
		}
	}
	return b.String()
}
