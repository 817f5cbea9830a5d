package llamaserver

import (
	"bytes"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer { return &tailBuffer{max: max} }

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-t.max:]...)
	}
	t.mu.Unlock()
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(bytes.TrimSpace(t.buf))
}

// lineLogger logs complete output lines of a runtime at debug level.
type lineLogger struct {
	log    zerolog.Logger
	stream string
	buf    []byte
}

func (lw *lineLogger) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(lw.buf[:idx], "\r")
		if len(line) > 0 {
			lw.log.Debug().Str("stream", lw.stream).Msg(string(line))
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

// teeWriter writes to both a and b, reporting a's result.
type teeWriter struct {
	a, b io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	_, _ = t.b.Write(p)
	return t.a.Write(p)
}
