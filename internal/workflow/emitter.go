package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrStreamClosed is returned for any event emitted after a terminal one
var ErrStreamClosed = errors.New("progress stream already terminated")

// Emitter accepts progress events in generation order
type Emitter interface {
	Emit(ev Event) error
}

// NDJSONEmitter writes each event as one JSON line and flushes it
type NDJSONEmitter struct {
	enc     *json.Encoder
	flusher http.Flusher
}

// NewNDJSONEmitter writes to w, flushing after every line when w supports it
func NewNDJSONEmitter(w io.Writer) *NDJSONEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	e := &NDJSONEmitter{enc: enc}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

func (e *NDJSONEmitter) Emit(ev Event) error {
	if err := e.enc.Encode(ev); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// GuardedEmitter forwards events until the first terminal one and rejects
// everything after it.
type GuardedEmitter struct {
	mu     sync.Mutex
	next   Emitter
	closed bool
}

// Guard wraps next so at most one terminal event reaches it
func Guard(next Emitter) *GuardedEmitter {
	if g, ok := next.(*GuardedEmitter); ok {
		return g
	}
	return &GuardedEmitter{next: next}
}

func (g *GuardedEmitter) Emit(ev Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrStreamClosed
	}
	if ev.IsTerminal() {
		g.closed = true
	}
	return g.next.Emit(ev)
}

// Terminated reports whether a terminal event has been emitted
func (g *GuardedEmitter) Terminated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Recorder keeps emitted events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event, or the zero Event
func (r *Recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}
