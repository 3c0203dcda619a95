package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/codeclean/pkg/utils"
)

// Stage names the pipeline step an event belongs to
type Stage string

const (
	StageScan         Stage = "scan"
	StageAssess       Stage = "assess"
	StageSafety       Stage = "safety"
	StageBackup       Stage = "backup"
	StageFiles        Stage = "files"
	StageDirectories  Stage = "directories"
	StageDependencies Stage = "dependencies"
)

// Kind says what happened within a stage
type Kind string

const (
	KindStart    Kind = "start"
	KindProgress Kind = "progress"
	KindFinish   Kind = "finish"
	KindWarning  Kind = "warning"
	KindError    Kind = "error"
)

// Event is a single progress notification emitted by the pipeline
type Event struct {
	Stage   Stage
	Kind    Kind
	Path    string
	Done    int
	Total   int
	Bytes   int64
	Message string
	Time    time.Time
}

// Sink receives pipeline events. Implementations must not block for long;
// the pipeline calls Emit synchronously.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(Event)

// Emit calls f(e)
func (f SinkFunc) Emit(e Event) { f(e) }

// Nop returns a sink that drops every event
func Nop() Sink { return SinkFunc(func(Event) {}) }

// Multi fans an event out to every non-nil sink in order
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(e Event) {
		for _, s := range live {
			s.Emit(e)
		}
	})
}

// Emit stamps e with the current time when unset and forwards it to sink.
// A nil sink is allowed.
func Emit(sink Sink, e Event) {
	if sink == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	sink.Emit(e)
}

// Reporter provides thread-safe fan-out of events to channel subscribers,
// remembering the latest event per stage.
type Reporter struct {
	mu        sync.RWMutex
	latest    map[Stage]Event
	listeners []chan Event
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		latest: make(map[Stage]Event),
	}
}

// Subscribe returns a channel that receives progress updates
func (r *Reporter) Subscribe() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, 32)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (r *Reporter) Unsubscribe(ch <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Emit records the event and notifies listeners without blocking; a
// subscriber whose buffer is full misses the update.
func (r *Reporter) Emit(e Event) {
	r.mu.Lock()
	r.latest[e.Stage] = e
	listeners := make([]chan Event, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- e:
		default:
		}
	}
}

// Latest returns the most recent event for a stage
func (r *Reporter) Latest(stage Stage) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.latest[stage]
	return e, ok
}

// FormatEvent returns a one-line human-readable description of an event
func FormatEvent(e Event) string {
	switch e.Kind {
	case KindStart:
		if e.Total > 0 {
			return fmt.Sprintf("%s: starting (%d items)", e.Stage, e.Total)
		}
		return fmt.Sprintf("%s: starting", e.Stage)
	case KindProgress:
		if e.Total > 0 {
			return fmt.Sprintf("%s: %d/%d %s", e.Stage, e.Done, e.Total, e.Path)
		}
		return fmt.Sprintf("%s: %d processed %s", e.Stage, e.Done, e.Path)
	case KindFinish:
		msg := fmt.Sprintf("%s: done (%d items", e.Stage, e.Done)
		if e.Bytes > 0 {
			msg += ", " + utils.FormatBytes(e.Bytes)
		}
		return msg + ")"
	case KindWarning, KindError:
		if e.Path != "" {
			return fmt.Sprintf("%s: %s (%s)", e.Stage, e.Message, e.Path)
		}
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
}

// FormatDuration formats a duration as human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
