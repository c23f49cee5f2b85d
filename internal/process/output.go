package process

import (
	"iter"
	"strings"
	"sync"
)

// Lazily consumed sequence of events from a relayed process.
//
// An output has a single consumer. Each call to [Output.Next] blocks until
// the next event is available and reports false once the sequence is
// exhausted or abandoned. The sequence cannot be restarted.
type Output struct {
	events    chan Event    // Receiving end shared by the relay producers.
	abandoned chan struct{} // Closed by [Output.Close].
	done      chan struct{} // Closed after every producer has exited.
	closeOnce sync.Once     // Guards abandoned.
}

// Creates an output with the given channel capacity.
func newOutput(buffer int) *Output {
	return &Output{
		events:    make(chan Event, buffer),
		abandoned: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Returns the next event.
//
// Blocks until an event arrives. Returns false when no further events will
// be produced, including after [Output.Close].
func (o *Output) Next() (Event, bool) {
	select {
	case <-o.abandoned:
		return Event{}, false
	default:
	}

	select {
	case ev, ok := <-o.events:
		return ev, ok
	case <-o.abandoned:
		return Event{}, false
	}
}

// Returns an iterator over the remaining events.
//
// Breaking out of the loop does not abandon the sequence; call
// [Output.Close] to release the producers.
func (o *Output) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, ok := o.Next()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Abandons the sequence.
//
// Remaining events are discarded. The pipe readers stop at their next send
// attempt and close their pipes; the exit waiter still reaps the child.
// Safe to call more than once.
func (o *Output) Close() {
	o.closeOnce.Do(func() { close(o.abandoned) })
}

// Delivers ev to the consumer. Returns false if the sequence was abandoned.
func (o *Output) send(ev Event) bool {
	select {
	case o.events <- ev:
		return true
	case <-o.abandoned:
		return false
	}
}

// Returns a channel that is closed once the child has been reaped and every
// relay goroutine has exited.
func (o *Output) Done() <-chan struct{} {
	return o.done
}

// Collected output of a fully drained process.
type Result struct {
	Stdout string     // Standard output lines, each terminated by a newline.
	Stderr string     // Standard error lines, each terminated by a newline.
	Status ExitStatus // Exit status. Code is -1 if no terminal event arrived.
}

// Consumes the remaining events and collects them.
func (o *Output) Drain() Result {
	var stdout, stderr strings.Builder
	status := ExitStatus{Code: -1}

	for ev := range o.All() {
		switch ev.Kind {
		case Stdout:
			stdout.WriteString(ev.Line)
			stdout.WriteByte('\n')
		case Stderr:
			stderr.WriteString(ev.Line)
			stderr.WriteByte('\n')
		case Terminal:
			status = ev.Status
		}
	}

	return Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Status: status,
	}
}
