// Package sse pushes engine notifications to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	clientBuffer  = 64
	publishBuffer = 256
	retryHint     = 2 * time.Second
	keepAlive     = 25 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broker fans engine events out to connected pages.
//
// A single loop goroutine owns the client set and the replay state (the last
// frame of every replayed type, in first-seen order). Public methods talk to
// the loop over channels.
type Broker struct {
	replay map[string]bool

	join    chan chan []byte
	leave   chan chan []byte
	publish chan Event
	count   chan chan int

	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. The latest event of each replayed type is sent
// to a client as soon as it subscribes, so a fresh page draws the current
// preview, view and styles without waiting for the next edit.
func NewBroker(replayed ...string) *Broker {
	b := &Broker{
		replay:  make(map[string]bool, len(replayed)),
		join:    make(chan chan []byte),
		leave:   make(chan chan []byte),
		publish: make(chan Event, publishBuffer),
		count:   make(chan chan int),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, t := range replayed {
		b.replay[t] = true
	}
	go b.run()
	return b
}

// state is owned by the loop.
type state struct {
	clients map[chan []byte]struct{}
	latest  map[string][]byte
	order   []string
	seq     uint64
}

func (b *Broker) run() {
	defer close(b.stopped)

	st := &state{
		clients: make(map[chan []byte]struct{}),
		latest:  make(map[string][]byte),
	}
	for {
		select {
		case <-b.done:
			for ch := range st.clients {
				close(ch)
			}
			return
		case ch := <-b.join:
			st.clients[ch] = struct{}{}
			for _, t := range st.order {
				offer(ch, st.latest[t])
			}
		case ch := <-b.leave:
			if _, ok := st.clients[ch]; ok {
				delete(st.clients, ch)
				close(ch)
			}
		case ev := <-b.publish:
			st.seq++
			frame, err := encode(st.seq, ev)
			if err != nil {
				continue
			}
			if b.replay[ev.Type] {
				if _, seen := st.latest[ev.Type]; !seen {
					st.order = append(st.order, ev.Type)
				}
				st.latest[ev.Type] = frame
			}
			for ch := range st.clients {
				offer(ch, frame)
			}
		case resp := <-b.count:
			resp <- len(st.clients)
		}
	}
}

// offer never blocks the loop: a slow page misses frames, and the next
// preview frame carries the full document anyway.
func offer(ch chan []byte, frame []byte) {
	select {
	case ch <- frame:
	default:
	}
}

func encode(id uint64, ev Event) ([]byte, error) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("sse: encode %s: %w", ev.Type, err)
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, ev.Type, data)), nil
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or
// Close; after Close it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for every client. It is a no-op after Close.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publish <- event:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one page (GET /api/events) until the request
// ends or the broker closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", retryHint.Milliseconds()); err != nil {
		return
	}
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		var frame []byte
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			frame = []byte(": keepalive\n\n")
		case msg, ok := <-ch:
			if !ok {
				return
			}
			frame = msg
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		flusher.Flush()
	}
}
