package httpapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

// ParseLogLevel maps a level name to a LogLevel; unknown names mean info.
func ParseLogLevel(s string) LogLevel {
	return parseLevel(strings.ToLower(strings.TrimSpace(s)))
}

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// requestLogLevel applies per-request overrides (?log=, X-Log-Level) on top of def.
func requestLogLevel(r *http.Request, def LogLevel) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return def
}

// loggingLineWriter logs complete response lines at debug level.
type loggingLineWriter struct {
	log zerolog.Logger
	buf []byte
}

func (lw *loggingLineWriter) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(lw.buf[:idx]), "\r")
		if len(line) > 0 {
			lw.log.Debug().Msg("proxy> " + line)
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

// bodyLogWriter tees the response body into a loggingLineWriter.
type bodyLogWriter struct {
	http.ResponseWriter
	lw *loggingLineWriter
}

func (b *bodyLogWriter) Write(p []byte) (int, error) {
	_, _ = b.lw.Write(p)
	return b.ResponseWriter.Write(p)
}

func (b *bodyLogWriter) Flush() {
	if f, ok := b.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (b *bodyLogWriter) Unwrap() http.ResponseWriter { return b.ResponseWriter }
