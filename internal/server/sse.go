package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// sseReplaySize is the number of recent events kept for Last-Event-ID
	// reconnection.
	sseReplaySize = 256

	// sseClientBuffer is the per-client queue length. Events are dropped for
	// clients that fall further behind.
	sseClientBuffer = 64

	sseKeepaliveInterval = 15 * time.Second
	sseRetry             = 3 * time.Second
)

// sseEvent is a single event sent to SSE clients.
type sseEvent struct {
	ID    uint64 // monotonically increasing sequence number
	Topic string
	Data  []byte // JSON-encoded payload
}

// sseHub fans out route events to connected SSE clients and keeps the most
// recent ones for replay.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	closed  bool
	lastID  uint64

	replay []sseEvent // ring of the last sseReplaySize events
	next   int        // next write position in replay
}

// sseClient represents a single connected SSE consumer.
type sseClient struct {
	topics []string // topic patterns to match (empty = all)
	ch     chan *sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
		replay:  make([]sseEvent, 0, sseReplaySize),
	}
}

// broadcast assigns the next ID to an event, stores it for replay and
// delivers it to matching clients without blocking.
func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.lastID++
	evt := sseEvent{ID: h.lastID, Topic: topic, Data: payload}
	if len(h.replay) < sseReplaySize {
		h.replay = append(h.replay, evt)
	} else {
		h.replay[h.next] = evt
	}
	h.next = (h.next + 1) % sseReplaySize

	for c := range h.clients {
		if !c.matchesTopic(topic) {
			continue
		}
		select {
		case c.ch <- &evt:
		default:
		}
	}
}

// subscribe registers a client. It returns nil once the hub is closed.
func (h *sseHub) subscribe(topics []string) *sseClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &sseClient{topics: topics, ch: make(chan *sseEvent, sseClientBuffer)}
	h.clients[c] = struct{}{}
	return c
}

// unsubscribe removes a client from the hub.
func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.ch)
	}
}

// close disconnects every client and rejects new subscriptions.
func (h *sseHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.ch)
	}
}

// eventsSince returns buffered events with ID > lastID, oldest first.
func (h *sseHub) eventsSince(lastID uint64) []sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []sseEvent
	n := len(h.replay)
	start := 0
	if n == sseReplaySize {
		start = h.next
	}
	for i := range n {
		evt := h.replay[(start+i)%n]
		if evt.ID > lastID {
			out = append(out, evt)
		}
	}
	return out
}

// matchesTopic checks whether the client's topic filters match the given topic.
// An empty filter list matches all topics.
func (c *sseClient) matchesTopic(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, pattern := range c.topics {
		if matchTopicPattern(pattern, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" matches one segment and a trailing ">" matches the rest, so
// "trackline.route.*" and "trackline.>" both match "trackline.route.created".
func matchTopicPattern(pattern, topic string) bool {
	patParts := strings.Split(pattern, ".")
	topParts := strings.Split(topic, ".")

	for i, pp := range patParts {
		if pp == ">" {
			return i < len(topParts)
		}
		if i >= len(topParts) {
			return false
		}
		if pp != "*" && pp != topParts[i] {
			return false
		}
	}
	return len(patParts) == len(topParts)
}

// lastEventID reads the replay position from the Last-Event-ID header or,
// for clients that cannot set headers, the lastEventId query parameter.
func lastEventID(r *http.Request) (uint64, bool) {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		raw = r.URL.Query().Get("lastEventId")
	}
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil
}

// handleEventStream handles GET /v1/events/stream?topics=.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var topics []string
	for _, t := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	client := s.sseHub.subscribe(topics)
	if client == nil {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry:%d\n\n", sseRetry.Milliseconds())

	if lastID, ok := lastEventID(r); ok {
		for _, evt := range s.sseHub.eventsSince(lastID) {
			if client.matchesTopic(evt.Topic) {
				writeSSEEvent(w, &evt)
			}
		}
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-client.ch:
			if !ok {
				return
			}
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single SSE event to the writer.
func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}

// broadcastEvent fans an event out to SSE clients.
func (s *Server) broadcastEvent(topic string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}

// Close disconnects SSE clients so that HTTP shutdown does not wait on them.
func (s *Server) Close() {
	s.sseHub.close()
}
