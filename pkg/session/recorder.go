package session

import (
	"fmt"
	"sync"

	"github.com/strideworks/go-stride/internal/log"
	"github.com/strideworks/go-stride/pkg/protocol"
)

// defaultFlushFrames batches one second of frames at the default rate.
const defaultFlushFrames = 30

// Recorder is a scene listener that batches frames into the store.
type Recorder struct {
	mu      sync.Mutex
	store   *Store
	session Session
	buf     []protocol.FrameData
	flushN  int
	closed  bool
}

// NewRecorder creates a session row and returns a recorder feeding it.
func NewRecorder(store *Store, label string, rateHz float64) (*Recorder, error) {
	sess, err := store.CreateSession(label, rateHz)
	if err != nil {
		return nil, fmt.Errorf("starting recorder: %w", err)
	}
	return &Recorder{
		store:   store,
		session: sess,
		buf:     make([]protocol.FrameData, 0, defaultFlushFrames),
		flushN:  defaultFlushFrames,
	}, nil
}

// Session returns the session being recorded.
func (r *Recorder) Session() Session {
	return r.session
}

// Listen buffers one frame, flushing a batch when the buffer fills.
// Attach it to the scene with AddListener.
func (r *Recorder) Listen(f protocol.FrameData) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.buf = append(r.buf, f)
	var flush []protocol.FrameData
	if len(r.buf) >= r.flushN {
		flush = r.buf
		r.buf = make([]protocol.FrameData, 0, r.flushN)
	}
	r.mu.Unlock()

	if flush != nil {
		if err := r.store.InsertFrames(r.session.ID, flush); err != nil {
			log.Error("dropping recorded frame batch", "session", r.session.ID, "error", err)
		}
	}
}

// Close flushes any buffered frames. The recorder ignores frames
// after Close.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	flush := r.buf
	r.buf = nil
	r.mu.Unlock()

	if len(flush) == 0 {
		return nil
	}
	if err := r.store.InsertFrames(r.session.ID, flush); err != nil {
		return fmt.Errorf("flushing recorder for %s: %w", r.session.ID, err)
	}
	return nil
}
