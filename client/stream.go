package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// readSize is the size of a single body read.
const readSize = 4096

// ErrIdleTimeout is returned when no bytes arrived within the idle timeout.
var ErrIdleTimeout = errors.New("stream idle")

// Stream is the body of one chat response, read as a sequence of Events.
//
// Next pulls from the underlying body only when no decoded line is queued.
// A Stream is owned by a single reader; Close may be called from any
// goroutine and more than once.
type Stream struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	watch   *idleWatch
	parser  FrameParser
	buf     []byte
	lines   []string
	eof     bool
	dropped int

	closeOnce sync.Once
	closeErr  error
}

func newStream(body io.ReadCloser, cancel context.CancelFunc, watch *idleWatch) *Stream {
	if watch == nil {
		watch = &idleWatch{}
	}
	return &Stream{
		body:   body,
		cancel: cancel,
		watch:  watch,
		buf:    make([]byte, readSize),
	}
}

// Next returns the next decoded Event. It returns io.EOF once the body has
// ended and every complete line has been consumed; a trailing partial line
// is discarded at that point. Any other error is a transport failure.
func (s *Stream) Next() (Event, error) {
	for {
		for len(s.lines) > 0 {
			line := s.lines[0]
			s.lines = s.lines[1:]
			if ev, ok := DecodeLine(line); ok {
				return ev, nil
			}
			if isDataLine(line) {
				s.dropped++
			}
		}
		if s.eof {
			return nil, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.watch.touch()
			s.lines = append(s.lines, s.parser.Feed(s.buf[:n])...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				s.parser.Reset()
				continue
			}
			if s.watch.timedOut() {
				return nil, s.watch.err()
			}
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
}

// Dropped returns how many data lines were discarded as malformed or of an
// unknown type so far.
func (s *Stream) Dropped() int {
	return s.dropped
}

// Close releases the response body and the request context.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.watch.stop()
		s.closeErr = s.body.Close()
		if s.cancel != nil {
			s.cancel()
		}
	})
	return s.closeErr
}

// idleWatch cancels a request once no progress was made for d.
// The zero value never fires.
type idleWatch struct {
	d     time.Duration
	t     *time.Timer
	fired atomic.Bool
}

func newIdleWatch(d time.Duration, cancel context.CancelFunc) *idleWatch {
	w := &idleWatch{d: d}
	if d > 0 {
		w.t = time.AfterFunc(d, func() {
			w.fired.Store(true)
			cancel()
		})
	}
	return w
}

func (w *idleWatch) touch() {
	if w.t != nil {
		w.t.Reset(w.d)
	}
}

func (w *idleWatch) stop() {
	if w.t != nil {
		w.t.Stop()
	}
}

func (w *idleWatch) timedOut() bool {
	return w.fired.Load()
}

func (w *idleWatch) err() error {
	return fmt.Errorf("%w for %s", ErrIdleTimeout, w.d)
}
