package httpapi

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"sync"
	"time"
)

// pingWriter writes SSE comment pings into event-stream responses that have
// been idle for interval. Pings are only written between events, never in
// the middle of one.
type pingWriter struct {
	http.ResponseWriter
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	wroteHeader bool
	boundary    bool
	tail        [4]byte
	lastWrite   time.Time
	stop        chan struct{}
	done        chan struct{}
}

func newPingWriter(w http.ResponseWriter, interval time.Duration) *pingWriter {
	return &pingWriter{ResponseWriter: w, interval: interval, now: time.Now, boundary: true}
}

func (pw *pingWriter) WriteHeader(code int) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.writeHeaderLocked(code)
}

func (pw *pingWriter) writeHeaderLocked(code int) {
	if pw.wroteHeader {
		return
	}
	pw.wroteHeader = true
	pw.ResponseWriter.WriteHeader(code)
	if code == http.StatusOK && isEventStream(pw.Header().Get("Content-Type")) {
		pw.lastWrite = pw.now()
		pw.stop = make(chan struct{})
		pw.done = make(chan struct{})
		go pw.loop()
	}
}

func (pw *pingWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if !pw.wroteHeader {
		pw.writeHeaderLocked(http.StatusOK)
	}
	n, err := pw.ResponseWriter.Write(p)
	if n > 0 {
		pw.track(p[:n])
		pw.lastWrite = pw.now()
	}
	return n, err
}

// track records whether the bytes written so far end on an event boundary.
func (pw *pingWriter) track(p []byte) {
	for _, b := range p[max(0, len(p)-len(pw.tail)):] {
		copy(pw.tail[:], pw.tail[1:])
		pw.tail[len(pw.tail)-1] = b
	}
	t := pw.tail[:]
	pw.boundary = bytes.HasSuffix(t, []byte("\n\n")) || bytes.HasSuffix(t, []byte("\r\n\r\n"))
}

func (pw *pingWriter) Flush() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.flushLocked()
}

func (pw *pingWriter) flushLocked() {
	if f, ok := pw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (pw *pingWriter) Unwrap() http.ResponseWriter { return pw.ResponseWriter }

func (pw *pingWriter) loop() {
	defer close(pw.done)
	t := time.NewTicker(pw.interval)
	defer t.Stop()
	for {
		select {
		case <-pw.stop:
			return
		case <-t.C:
			pw.ping()
		}
	}
}

func (pw *pingWriter) ping() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	now := pw.now()
	if !pw.boundary || now.Sub(pw.lastWrite) < pw.interval {
		return
	}
	if _, err := fmt.Fprintf(pw.ResponseWriter, ": ping - %s\n\n", now.UTC().Format(time.RFC3339Nano)); err != nil {
		return
	}
	pw.lastWrite = now
	pw.flushLocked()
	pingsTotal.Inc()
}

// Close stops the ping loop. It must be called before the handler returns.
func (pw *pingWriter) Close() {
	pw.mu.Lock()
	stop, done := pw.stop, pw.done
	pw.stop = nil
	pw.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func isEventStream(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/event-stream"
}
